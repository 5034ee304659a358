package system

import (
	"slices"
	"testing"
)

// recorder logs hook calls into a shared journal.
type recorder struct {
	name    string
	journal *[]string
	onReset func()
}

func (r *recorder) Reset() {
	*r.journal = append(*r.journal, r.name)
	if r.onReset != nil {
		r.onReset()
	}
}

func (r *recorder) Destroy(opts *DestroyOptions) {
	entry := r.name
	if opts != nil {
		entry += "+opts"
		if opts.RemoveView {
			entry += ":remove"
		}
	}
	*r.journal = append(*r.journal, entry)
}

func newResetRunner() *Runner[Resetter, struct{}] {
	return NewRunners().Reset
}

func TestRunnerSubscribeOnce(t *testing.T) {
	var journal []string
	a := &recorder{name: "a", journal: &journal}
	r := newResetRunner()
	r.Subscribe("a", a)
	r.Subscribe("a", a)
	r.Subscribe("again", a)
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	r.Emit(struct{}{})
	if want := []string{"a"}; !slices.Equal(journal, want) {
		t.Errorf("journal = %v, want %v", journal, want)
	}
}

func TestRunnerUnsubscribe(t *testing.T) {
	var journal []string
	a := &recorder{name: "a", journal: &journal}
	b := &recorder{name: "b", journal: &journal}
	r := newResetRunner()
	r.Subscribe("a", a)
	r.Subscribe("b", b)

	r.Unsubscribe(a)
	r.Unsubscribe(a)
	if r.Contains(a) || !r.Contains(b) {
		t.Fatalf("Contains after Unsubscribe: a=%v b=%v", r.Contains(a), r.Contains(b))
	}
	r.Emit(struct{}{})
	if want := []string{"b"}; !slices.Equal(journal, want) {
		t.Errorf("journal = %v, want %v", journal, want)
	}
}

func TestRunnerEmitIteratesSnapshot(t *testing.T) {
	var journal []string
	r := newResetRunner()
	a := &recorder{name: "a", journal: &journal}
	b := &recorder{name: "b", journal: &journal}
	c := &recorder{name: "c", journal: &journal}
	late := &recorder{name: "late", journal: &journal}
	a.onReset = func() {
		r.Unsubscribe(b)
		r.Subscribe("late", late)
	}
	r.Subscribe("a", a)
	r.Subscribe("b", b)
	r.Subscribe("c", c)

	r.Emit(struct{}{})
	if want := []string{"a", "b", "c"}; !slices.Equal(journal, want) {
		t.Errorf("first emit journal = %v, want %v", journal, want)
	}

	journal = nil
	a.onReset = nil
	r.Emit(struct{}{})
	if want := []string{"a", "c", "late"}; !slices.Equal(journal, want) {
		t.Errorf("second emit journal = %v, want %v", journal, want)
	}
}

func TestRunnerEmitWithCustomOptions(t *testing.T) {
	var journal []string
	r := NewRunners().Destroy
	for _, n := range []string{"a", "view", "c"} {
		r.Subscribe(n, &recorder{name: n, journal: &journal})
	}
	r.EmitWithCustomOptions(map[string]*DestroyOptions{
		"view": {RemoveView: true},
	})
	want := []string{"a", "view+opts:remove", "c"}
	if !slices.Equal(journal, want) {
		t.Errorf("journal = %v, want %v", journal, want)
	}
}

func TestRunnerReverse(t *testing.T) {
	var journal []string
	r := newResetRunner()
	for _, n := range []string{"a", "b", "c"} {
		r.Subscribe(n, &recorder{name: n, journal: &journal})
	}
	r.Reverse()
	r.Emit(struct{}{})
	if want := []string{"c", "b", "a"}; !slices.Equal(journal, want) {
		t.Errorf("journal = %v, want %v", journal, want)
	}
	if want := []string{"c", "b", "a"}; !slices.Equal(r.Names(), want) {
		t.Errorf("Names() = %v, want %v", r.Names(), want)
	}
}

func TestRunnerBind(t *testing.T) {
	var journal []string
	r := newResetRunner()
	if !r.Bind("rec", &recorder{journal: &journal}) {
		t.Error("Bind() = false for a Resetter")
	}
	if r.Bind("str", "not a system") {
		t.Error("Bind() = true for a non-Resetter")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	r.Clear()
	if !r.Empty() {
		t.Error("Empty() = false after Clear")
	}
}

type funcResetter func()

func (f funcResetter) Reset() { f() }

func TestRunnerIncomparableSubscriber(t *testing.T) {
	calls := 0
	f := funcResetter(func() { calls++ })
	r := newResetRunner()
	r.Subscribe("f", f)
	r.Unsubscribe(f)
	r.Emit(struct{}{})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

type frameRecorder struct{ journal []string }

func (f *frameRecorder) Reset()      { f.journal = append(f.journal, "reset") }
func (f *frameRecorder) Update()     { f.journal = append(f.journal, "update") }
func (f *frameRecorder) Prerender()  { f.journal = append(f.journal, "prerender") }
func (f *frameRecorder) Postrender() { f.journal = append(f.journal, "postrender") }

func TestRunnersDispatchArglessHooks(t *testing.T) {
	rs := NewRunners()
	f := &frameRecorder{}
	rs.Prerender.Subscribe("f", f)
	rs.Update.Subscribe("f", f)
	rs.Postrender.Subscribe("f", f)
	rs.Reset.Subscribe("f", f)

	rs.Prerender.Emit(struct{}{})
	rs.Update.Emit(struct{}{})
	rs.Postrender.Emit(struct{}{})
	rs.Reset.Emit(struct{}{})

	if want := []string{"prerender", "update", "postrender", "reset"}; !slices.Equal(f.journal, want) {
		t.Errorf("journal = %v, want %v", f.journal, want)
	}
}
