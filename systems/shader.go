package systems

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/system"
)

// Program is WGSL source shared by any number of shaders.
type Program struct {
	Name   string
	Source string

	compiled bool
	spirv    []uint32
	err      error
	modules  map[uint64]hal.ShaderModule
}

// NewProgram creates a program from WGSL source.
func NewProgram(name, source string) *Program {
	return &Program{Name: name, Source: source}
}

// SPIRV returns the compiled words, compiling on first use. A failed
// compilation is remembered and returned on every later call.
func (p *Program) SPIRV() ([]uint32, error) {
	if !p.compiled {
		p.spirv, p.err = compileSPIRV(p.Source)
		p.compiled = true
		if p.err != nil {
			p.err = fmt.Errorf("systems: compile program %q: %w", p.Name, p.err)
		}
	}
	return p.spirv, p.err
}

// compileSPIRV compiles WGSL to little-endian SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// Shader pairs a program with its own uniforms.
type Shader struct {
	Program  *Program
	Uniforms *UniformGroup

	buffer *Buffer
	synced map[uint64]int
}

// NewShader creates a shader with a copy of uniforms.
func NewShader(p *Program, uniforms map[string]any) *Shader {
	return &Shader{Program: p, Uniforms: NewUniformGroup(uniforms)}
}

// UniformBuffer returns the buffer the shader uniforms are packed into.
func (s *Shader) UniformBuffer() *Buffer { return s.buffer }

// ShaderSystem compiles programs and keeps shader uniforms in sync.
type ShaderSystem struct {
	h Host

	uid      uint64
	bound    *Shader
	programs map[*Program]struct{}
	global   *Buffer
	globalID int
	syncs    int
}

var (
	_ system.ContextChanger = (*ShaderSystem)(nil)
	_ system.Resetter       = (*ShaderSystem)(nil)
	_ system.Destroyer      = (*ShaderSystem)(nil)
)

// NewShaderSystem creates the shader system.
func NewShaderSystem(h Host) *ShaderSystem {
	return &ShaderSystem{
		h:        h,
		programs: make(map[*Program]struct{}),
		globalID: -1,
	}
}

// ContextChange forgets modules created on older contexts.
func (s *ShaderSystem) ContextChange(ctx *device.Context) {
	s.bound = nil
	s.globalID = -1
	if ctx == nil {
		return
	}
	s.uid = ctx.UID
	for p := range s.programs {
		for uid := range p.modules {
			if uid != s.uid {
				delete(p.modules, uid)
			}
		}
	}
}

// Bind makes sh current and synchronizes the shared and per-shader uniforms
// unless dontSync is set. Compilation errors are logged once per program and
// returned.
func (s *ShaderSystem) Bind(sh *Shader, dontSync bool) error {
	if err := s.ensureModule(sh.Program); err != nil {
		return err
	}
	s.bound = sh
	if dontSync {
		return nil
	}
	return s.SyncUniforms(sh)
}

// Bound returns the current shader.
func (s *ShaderSystem) Bound() *Shader { return s.bound }

// SyncUniforms uploads uniform groups whose dirty counter moved.
func (s *ShaderSystem) SyncUniforms(sh *Shader) error {
	buffers := s.h.Systems().Buffer

	global := s.h.Uniforms()
	if global != nil && global.DirtyID() != s.globalID {
		if s.global == nil {
			s.global = NewBuffer("globals", gputypes.BufferUsageUniform, nil)
		}
		s.global.SetData(global.Bytes())
		if err := buffers.Update(s.global); err != nil {
			return err
		}
		s.globalID = global.DirtyID()
		s.syncs++
	}

	if sh.Uniforms == nil {
		return nil
	}
	if sh.synced == nil {
		sh.synced = make(map[uint64]int)
	}
	if id, ok := sh.synced[s.uid]; ok && id == sh.Uniforms.DirtyID() {
		if !sh.Uniforms.Static || sh.buffer != nil {
			return nil
		}
	}
	if sh.buffer == nil {
		sh.buffer = NewBuffer(sh.Program.Name+"_uniforms", gputypes.BufferUsageUniform, nil)
	}
	sh.buffer.SetData(sh.Uniforms.Bytes())
	if err := buffers.Update(sh.buffer); err != nil {
		return err
	}
	sh.synced[s.uid] = sh.Uniforms.DirtyID()
	s.syncs++
	return nil
}

// Syncs returns the number of uniform group uploads.
func (s *ShaderSystem) Syncs() int { return s.syncs }

// GlobalBuffer returns the buffer holding the shared uniforms.
func (s *ShaderSystem) GlobalBuffer() *Buffer { return s.global }

// Module returns the shader module of p on the active context.
func (s *ShaderSystem) Module(p *Program) hal.ShaderModule {
	return p.modules[s.uid]
}

func (s *ShaderSystem) ensureModule(p *Program) error {
	s.programs[p] = struct{}{}
	first := !p.compiled
	words, err := p.SPIRV()
	if err != nil {
		if first {
			s.h.Logger().Error("stage: shader compilation failed", "program", p.Name, "err", err)
		}
		return err
	}
	if _, ok := p.modules[s.uid]; ok {
		return nil
	}
	dev, ok := s.h.GPU().HalDevice()
	if !ok {
		return nil
	}
	mod, err := dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.Name,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return fmt.Errorf("systems: create shader module %q: %w", p.Name, err)
	}
	if p.modules == nil {
		p.modules = make(map[uint64]hal.ShaderModule)
	}
	p.modules[s.uid] = mod
	return nil
}

// Reset unbinds the current shader.
func (s *ShaderSystem) Reset() {
	s.bound = nil
}

// Destroy releases every shader module on the active context.
func (s *ShaderSystem) Destroy(*system.DestroyOptions) {
	dev, ok := s.h.GPU().HalDevice()
	for p := range s.programs {
		if mod := p.modules[s.uid]; ok && mod != nil {
			dev.DestroyShaderModule(mod)
		}
		p.modules = nil
	}
	clear(s.programs)
	if s.global != nil && s.h.Systems().Buffer != nil {
		s.h.Systems().Buffer.DestroyBuffer(s.global)
	}
	s.global = nil
	s.bound = nil
}
