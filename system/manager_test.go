package system

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/stage/device"
)

// stub implements a configurable subset of the hooks.
type stub struct {
	name    string
	journal *[]string
}

func (p *stub) Init(opts any) {
	entry := "init:" + p.name
	if s, ok := opts.(string); ok {
		entry += "=" + s
	}
	*p.journal = append(*p.journal, entry)
}

func (p *stub) Destroy(opts *DestroyOptions) {
	entry := "destroy:" + p.name
	if opts != nil {
		entry += "+opts"
	}
	*p.journal = append(*p.journal, entry)
}

// initOnly implements Initializer only.
type initOnly struct{ stub }

func (*initOnly) Destroy() {} // wrong signature, must not be wired

// contextOnly implements ContextChanger only.
type contextOnly struct {
	name    string
	journal *[]string
}

func (c *contextOnly) ContextChange(ctx *device.Context) {
	*c.journal = append(*c.journal, "context:"+c.name)
}

func entry(name string, s any) Entry {
	return Entry{Name: name, New: func() any { return s }}
}

func TestManagerSetupWiresByCapability(t *testing.T) {
	var journal []string
	rs := NewRunners()
	m := NewManager(nil)
	err := m.Setup(Config{
		Runners: rs.Binders(),
		Systems: []Entry{
			entry("s1", &stub{name: "s1", journal: &journal}),
			entry("s2", &contextOnly{name: "s2", journal: &journal}),
			entry("s3", &stub{name: "s3", journal: &journal}),
			entry("s4", &initOnly{stub{name: "s4", journal: &journal}}),
		},
	})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if got, want := rs.Init.Names(), []string{"s1", "s3", "s4"}; !slices.Equal(got, want) {
		t.Errorf("init subscribers = %v, want %v", got, want)
	}
	if got, want := rs.Destroy.Names(), []string{"s1", "s3"}; !slices.Equal(got, want) {
		t.Errorf("destroy subscribers = %v, want %v", got, want)
	}
	if got, want := rs.ContextChange.Names(), []string{"s2"}; !slices.Equal(got, want) {
		t.Errorf("contextChange subscribers = %v, want %v", got, want)
	}
	if !rs.Resize.Empty() {
		t.Errorf("resize subscribers = %v, want none", rs.Resize.Names())
	}

	rs.Init.EmitWithCustomOptions(Options{"s3": "bag"})
	rs.Destroy.Reverse()
	rs.Destroy.Emit(nil)
	want := []string{"init:s1", "init:s3=bag", "init:s4", "destroy:s3", "destroy:s1"}
	if !slices.Equal(journal, want) {
		t.Errorf("journal = %v, want %v", journal, want)
	}
}

func TestManagerLookup(t *testing.T) {
	var journal []string
	p := &stub{name: "p", journal: &journal}
	m := NewManager(nil)
	if err := m.Setup(Config{Runners: NewRunners().Binders(), Systems: []Entry{entry("p", p)}}); err != nil {
		t.Fatal(err)
	}
	got, ok := Lookup[*stub](m, "p")
	if !ok || got != p {
		t.Errorf("Lookup[*stub]() = %v, %v", got, ok)
	}
	if _, ok := Lookup[*contextOnly](m, "p"); ok {
		t.Error("Lookup with wrong type should fail")
	}
	if _, ok := Lookup[*stub](m, "missing"); ok {
		t.Error("Lookup of missing name should fail")
	}
	if r, ok := m.Runner(HookInit); !ok || r.Len() != 1 {
		t.Errorf("Runner(init) = %v, %v", r, ok)
	}
	if got := m.RunnerNames(); !slices.Equal(got, HookNames) {
		t.Errorf("RunnerNames() = %v, want %v", got, HookNames)
	}
}

func TestManagerSetupErrors(t *testing.T) {
	shared := &stub{}
	rs := NewRunners()
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"duplicate name", Config{Systems: []Entry{entry("a", &stub{}), entry("a", &stub{})}}, ErrDuplicateName},
		{"same system twice", Config{Systems: []Entry{entry("a", shared), entry("b", shared)}}, ErrDuplicateSystem},
		{"nil system", Config{Systems: []Entry{entry("a", nil)}}, ErrNilSystem},
		{"duplicate runner", Config{Runners: []Binder{rs.Init, rs.Init}}, ErrDuplicateRunner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(nil)
			err := m.Setup(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Setup() error = %v, want %v", err, tt.wantErr)
			}
			if m.Len() != 0 {
				t.Errorf("Len() = %d after failed Setup, want 0", m.Len())
			}
		})
	}
}

func TestManagerSetupOnce(t *testing.T) {
	m := NewManager(nil)
	if err := m.Setup(Config{}); err != nil {
		t.Fatal(err)
	}
	if err := m.Setup(Config{}); !errors.Is(err, ErrAlreadySetup) {
		t.Errorf("second Setup() = %v, want ErrAlreadySetup", err)
	}
}

func TestManagerDestroy(t *testing.T) {
	var journal []string
	rs := NewRunners()
	m := NewManager(nil)
	if err := m.Setup(Config{
		Runners: rs.Binders(),
		Systems: []Entry{entry("a", &stub{name: "a", journal: &journal})},
	}); err != nil {
		t.Fatal(err)
	}
	m.Destroy()
	if m.Len() != 0 || len(m.Names()) != 0 || len(m.RunnerNames()) != 0 {
		t.Errorf("registries not empty after Destroy: %d systems, %v runners", m.Len(), m.RunnerNames())
	}
	if !rs.Init.Empty() {
		t.Error("runners should be cleared by Destroy")
	}
	if _, ok := m.System("a"); ok {
		t.Error("System() should fail after Destroy")
	}
}
