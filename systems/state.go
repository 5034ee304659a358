package systems

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/system"
)

// BlendMode selects how drawn pixels combine with the destination.
type BlendMode int

// Blend modes.
const (
	BlendNormal BlendMode = iota
	BlendAdd
	BlendMultiply
	BlendScreen
	BlendNone
)

// String returns the blend mode name.
func (b BlendMode) String() string {
	switch b {
	case BlendNormal:
		return "normal"
	case BlendAdd:
		return "add"
	case BlendMultiply:
		return "multiply"
	case BlendScreen:
		return "screen"
	case BlendNone:
		return "none"
	default:
		return "unknown"
	}
}

// State is the fixed-function pipeline state.
type State struct {
	Blend     bool
	DepthTest bool
	Culling   bool
	Clockwise bool
	DepthMask bool
	BlendMode BlendMode
}

// DefaultState is the state applied on reset.
func DefaultState() State {
	return State{Blend: true, BlendMode: BlendNormal}
}

// StateSystem tracks pipeline state and maps blend modes to GPU blend states.
type StateSystem struct {
	h Host

	current       State
	premultiplied bool
	changes       int
}

var (
	_ system.ContextChanger = (*StateSystem)(nil)
	_ system.Resetter       = (*StateSystem)(nil)
)

// NewStateSystem creates the state system.
func NewStateSystem(h Host) *StateSystem {
	return &StateSystem{h: h, current: DefaultState()}
}

// ContextChange records whether the new context uses premultiplied alpha and
// restores the default state.
func (s *StateSystem) ContextChange(ctx *device.Context) {
	s.premultiplied = ctx != nil && ctx.Attributes.PremultipliedAlpha
	s.current = DefaultState()
}

// Set applies st, counting the state changes it causes.
func (s *StateSystem) Set(st State) {
	if st != s.current {
		s.changes++
		s.current = st
	}
}

// SetBlendMode changes only the blend mode.
func (s *StateSystem) SetBlendMode(mode BlendMode) {
	st := s.current
	st.BlendMode = mode
	st.Blend = mode != BlendNone
	s.Set(st)
}

// Current returns the active state.
func (s *StateSystem) Current() State { return s.current }

// Changes returns the number of state changes since creation.
func (s *StateSystem) Changes() int { return s.changes }

// Premultiplied reports whether the context blends premultiplied colors.
func (s *StateSystem) Premultiplied() bool { return s.premultiplied }

// BlendState returns the GPU blend state for the current blend mode, or nil
// when blending is disabled.
func (s *StateSystem) BlendState() *gputypes.BlendState {
	if !s.current.Blend {
		return nil
	}
	return BlendStateFor(s.current.BlendMode, s.premultiplied)
}

// BlendStateFor maps a blend mode to a GPU blend state.
func BlendStateFor(mode BlendMode, premultiplied bool) *gputypes.BlendState {
	src := gputypes.BlendFactorSrcAlpha
	if premultiplied {
		src = gputypes.BlendFactorOne
	}
	switch mode {
	case BlendNone:
		bs := gputypes.BlendStateReplace()
		return &bs
	case BlendAdd:
		return blend(src, gputypes.BlendFactorOne)
	case BlendMultiply:
		return blend(gputypes.BlendFactorDst, gputypes.BlendFactorOneMinusSrcAlpha)
	case BlendScreen:
		return blend(gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrc)
	default:
		if premultiplied {
			bs := gputypes.BlendStatePremultiplied()
			return &bs
		}
		bs := gputypes.BlendStateAlpha()
		return &bs
	}
}

func blend(src, dst gputypes.BlendFactor) *gputypes.BlendState {
	c := gputypes.BlendComponent{SrcFactor: src, DstFactor: dst, Operation: gputypes.BlendOperationAdd}
	return &gputypes.BlendState{Color: c, Alpha: c}
}

// Reset restores the default state.
func (s *StateSystem) Reset() {
	s.current = DefaultState()
}
