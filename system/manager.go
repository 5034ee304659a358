package system

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

var (
	// ErrAlreadySetup is returned by a second call to Manager.Setup.
	ErrAlreadySetup = errors.New("system: manager already set up")

	// ErrDuplicateName is returned when two systems share a name.
	ErrDuplicateName = errors.New("system: duplicate system name")

	// ErrDuplicateSystem is returned when one instance is registered twice.
	ErrDuplicateSystem = errors.New("system: system registered under more than one name")

	// ErrNilSystem is returned when a constructor returns nil.
	ErrNilSystem = errors.New("system: constructor returned nil")

	// ErrDuplicateRunner is returned when two runners share a name.
	ErrDuplicateRunner = errors.New("system: duplicate runner name")
)

// Entry names a system constructor.
type Entry struct {
	Name string
	New  func() any
}

// Config lists the runners and systems wired by Setup. Order matters for
// both: systems are subscribed to each runner in Systems order.
type Config struct {
	Runners []Binder
	Systems []Entry
}

// Manager owns named systems and the runners they are wired to.
type Manager struct {
	log *slog.Logger

	names   []string
	systems map[string]any

	runnerNames []string
	runners     map[string]Binder

	setup bool
}

// NewManager creates an empty manager. A nil logger discards output.
func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Manager{log: log}
}

// Setup instantiates every system in order, then subscribes each one to
// every runner whose hook it implements. Wiring happens exactly once; on
// error the manager is left empty.
func (m *Manager) Setup(cfg Config) error {
	if m.setup {
		return ErrAlreadySetup
	}

	runners := make(map[string]Binder, len(cfg.Runners))
	runnerNames := make([]string, 0, len(cfg.Runners))
	for _, r := range cfg.Runners {
		if _, dup := runners[r.Name()]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateRunner, r.Name())
		}
		runners[r.Name()] = r
		runnerNames = append(runnerNames, r.Name())
	}

	systems := make(map[string]any, len(cfg.Systems))
	names := make([]string, 0, len(cfg.Systems))
	for _, e := range cfg.Systems {
		if _, dup := systems[e.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateName, e.Name)
		}
		sys := e.New()
		if sys == nil {
			return fmt.Errorf("%w: %q", ErrNilSystem, e.Name)
		}
		if isComparable(sys) {
			for _, other := range names {
				if systems[other] == sys {
					return fmt.Errorf("%w: %q and %q", ErrDuplicateSystem, other, e.Name)
				}
			}
		}
		systems[e.Name] = sys
		names = append(names, e.Name)
	}

	for _, rn := range runnerNames {
		r := runners[rn]
		for _, name := range names {
			r.Bind(name, systems[name])
		}
		m.log.Debug("system: runner wired", "runner", rn, "subscribers", r.Len())
	}

	m.systems, m.names = systems, names
	m.runners, m.runnerNames = runners, runnerNames
	m.setup = true
	return nil
}

// System returns the system registered under name.
func (m *Manager) System(name string) (any, bool) {
	s, ok := m.systems[name]
	return s, ok
}

// Lookup returns the system registered under name as T.
func Lookup[T any](m *Manager, name string) (T, bool) {
	s, ok := m.systems[name]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := s.(T)
	return t, ok
}

// Names returns the system names in registration order.
func (m *Manager) Names() []string {
	return slices.Clone(m.names)
}

// Len returns the number of registered systems.
func (m *Manager) Len() int {
	return len(m.systems)
}

// Runner returns the runner registered under name.
func (m *Manager) Runner(name string) (Binder, bool) {
	r, ok := m.runners[name]
	return r, ok
}

// RunnerNames returns the runner names in wiring order.
func (m *Manager) RunnerNames() []string {
	return slices.Clone(m.runnerNames)
}

// Destroy clears every runner and releases both registries. It must only be
// called after the destroy runner has been emitted.
func (m *Manager) Destroy() {
	for _, r := range m.runners {
		r.Clear()
	}
	m.runners, m.runnerNames = nil, nil
	m.systems, m.names = nil, nil
}
