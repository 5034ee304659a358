package device

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gpucontext"
)

func failing(err error) func() Acquirer {
	return func() Acquirer {
		return AcquirerFunc(func(Attributes) (gpucontext.DeviceProvider, error) { return nil, err })
	}
}

func succeeding(p gpucontext.DeviceProvider, calls *[]string, name string) func() Acquirer {
	return func() Acquirer {
		return AcquirerFunc(func(Attributes) (gpucontext.DeviceProvider, error) {
			*calls = append(*calls, name)
			return p, nil
		})
	}
}

func TestRegistryNamesOrder(t *testing.T) {
	r := NewRegistry("b", "a")
	r.Register("z", failing(errors.New("z")))
	r.Register("a", failing(errors.New("a")))
	r.Register("b", failing(errors.New("b")))
	r.Register("c", failing(errors.New("c")))

	want := []string{"b", "a", "c", "z"}
	if got := r.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	r.Unregister("a")
	if got := r.Names(); slices.Contains(got, "a") {
		t.Errorf("Names() after Unregister = %v", got)
	}
}

func TestRegistryAcquirePriority(t *testing.T) {
	var calls []string
	good := &fakeProvider{device: 1}
	r := NewRegistry("first", "second")
	r.Register("second", succeeding(good, &calls, "second"))
	r.Register("first", succeeding(&fakeProvider{}, &calls, "first"))

	p, err := r.Acquire(Attributes{})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if p != good {
		t.Error("Acquire() should skip providers that fail validation")
	}
	if want := []string{"first", "second"}; !slices.Equal(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestRegistryAcquireFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *Registry)
	}{
		{"empty", func(*Registry) {}},
		{"all failing", func(r *Registry) {
			r.Register("x", failing(errors.New("boom")))
			r.Register("y", failing(ErrNoDevice))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			tt.setup(r)
			_, err := r.Acquire(Attributes{})
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("Acquire() error = %v, want ErrUnsupported", err)
			}
		})
	}
}

func TestRegistryNoopAcquirer(t *testing.T) {
	r := NewRegistry()
	r.Register("noop", NoopAcquirer)
	p, err := r.Acquire(Attributes{})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	p.(Releaser).Release()
}
