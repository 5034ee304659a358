// Package config loads renderer options from TOML, YAML or JSON files and
// from STAGE_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bytedance/sonic"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/stage"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "STAGE_"

// Format is a config file format.
type Format string

// Supported formats.
const (
	TOML Format = "toml"
	YAML Format = "yaml"
	JSON Format = "json"
)

// ErrUnknownFormat is returned for unsupported file extensions.
var ErrUnknownFormat = errors.New("config: unknown format")

// jsonAPI rejects unknown keys like the TOML and YAML decoders.
var jsonAPI = sonic.Config{DisallowUnknownFields: true}.Froze()

// settings is the file and environment schema of stage.Options.
type settings struct {
	Width                  int     `toml:"width" yaml:"width" json:"width" env:"WIDTH"`
	Height                 int     `toml:"height" yaml:"height" json:"height" env:"HEIGHT"`
	Resolution             float64 `toml:"resolution" yaml:"resolution" json:"resolution" env:"RESOLUTION"`
	AutoDensity            bool    `toml:"auto_density" yaml:"auto_density" json:"auto_density" env:"AUTO_DENSITY"`
	Antialias              bool    `toml:"antialias" yaml:"antialias" json:"antialias" env:"ANTIALIAS"`
	UseContextAlpha        bool    `toml:"use_context_alpha" yaml:"use_context_alpha" json:"use_context_alpha" env:"USE_CONTEXT_ALPHA"`
	PremultipliedAlpha     bool    `toml:"premultiplied_alpha" yaml:"premultiplied_alpha" json:"premultiplied_alpha" env:"PREMULTIPLIED_ALPHA"`
	ClearBeforeRender      bool    `toml:"clear_before_render" yaml:"clear_before_render" json:"clear_before_render" env:"CLEAR_BEFORE_RENDER"`
	PreserveDrawingBuffer  bool    `toml:"preserve_drawing_buffer" yaml:"preserve_drawing_buffer" json:"preserve_drawing_buffer" env:"PRESERVE_DRAWING_BUFFER"`
	BackgroundColor        uint32  `toml:"background_color" yaml:"background_color" json:"background_color" env:"BACKGROUND_COLOR"`
	BackgroundAlpha        float64 `toml:"background_alpha" yaml:"background_alpha" json:"background_alpha" env:"BACKGROUND_ALPHA"`
	PowerPreference        string  `toml:"power_preference" yaml:"power_preference" json:"power_preference" env:"POWER_PREFERENCE"`
	Hello                  bool    `toml:"hello" yaml:"hello" json:"hello" env:"HELLO"`
	TextureGCMode          string  `toml:"texture_gc_mode" yaml:"texture_gc_mode" json:"texture_gc_mode" env:"TEXTURE_GC_MODE"`
	TextureGCMaxIdle       int     `toml:"texture_gc_max_idle" yaml:"texture_gc_max_idle" json:"texture_gc_max_idle" env:"TEXTURE_GC_MAX_IDLE"`
	TextureGCCheckCountMax int     `toml:"texture_gc_check_count_max" yaml:"texture_gc_check_count_max" json:"texture_gc_check_count_max" env:"TEXTURE_GC_CHECK_COUNT_MAX"`
}

func fromOptions(o stage.Options) settings {
	return settings{
		Width:                  o.Width,
		Height:                 o.Height,
		Resolution:             o.Resolution,
		AutoDensity:            o.AutoDensity,
		Antialias:              o.Antialias,
		UseContextAlpha:        o.UseContextAlpha,
		PremultipliedAlpha:     o.PremultipliedAlpha,
		ClearBeforeRender:      o.ClearBeforeRender,
		PreserveDrawingBuffer:  o.PreserveDrawingBuffer,
		BackgroundColor:        o.BackgroundColor,
		BackgroundAlpha:        o.BackgroundAlpha,
		PowerPreference:        o.PowerPreference,
		Hello:                  o.Hello,
		TextureGCMode:          o.TextureGCMode,
		TextureGCMaxIdle:       o.TextureGCMaxIdle,
		TextureGCCheckCountMax: o.TextureGCCheckCountMax,
	}
}

func (s settings) apply(o *stage.Options) {
	o.Width = s.Width
	o.Height = s.Height
	o.Resolution = s.Resolution
	o.AutoDensity = s.AutoDensity
	o.Antialias = s.Antialias
	o.UseContextAlpha = s.UseContextAlpha
	o.PremultipliedAlpha = s.PremultipliedAlpha
	o.ClearBeforeRender = s.ClearBeforeRender
	o.PreserveDrawingBuffer = s.PreserveDrawingBuffer
	o.BackgroundColor = s.BackgroundColor
	o.BackgroundAlpha = s.BackgroundAlpha
	o.PowerPreference = s.PowerPreference
	o.Hello = s.Hello
	o.TextureGCMode = s.TextureGCMode
	o.TextureGCMaxIdle = s.TextureGCMaxIdle
	o.TextureGCCheckCountMax = s.TextureGCCheckCountMax
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Load reads path over stage.DefaultOptions. Keys missing from the file keep
// their defaults.
func Load(path string) (stage.Options, error) {
	format, err := FormatOf(path)
	if err != nil {
		return stage.Options{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return stage.Options{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	o, err := Decode(f, format, stage.DefaultOptions())
	if err != nil {
		return stage.Options{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return o, nil
}

// Decode reads r in format over base. Unknown keys are an error.
func Decode(r io.Reader, format Format, base stage.Options) (stage.Options, error) {
	s := fromOptions(base)
	switch format {
	case TOML:
		meta, err := toml.NewDecoder(r).Decode(&s)
		if err != nil {
			return stage.Options{}, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			slices.Sort(keys)
			return stage.Options{}, fmt.Errorf("unknown keys %v", keys)
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return stage.Options{}, err
		}
	case JSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return stage.Options{}, err
		}
		if len(bytes.TrimSpace(data)) > 0 {
			if err := jsonAPI.Unmarshal(data, &s); err != nil {
				return stage.Options{}, err
			}
		}
	default:
		return stage.Options{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	out := base
	s.apply(&out)
	return out, nil
}

// Encode writes the scalar fields of o to w in format.
func Encode(w io.Writer, format Format, o stage.Options) error {
	s := fromOptions(o)
	switch format {
	case TOML:
		return toml.NewEncoder(w).Encode(s)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case JSON:
		data, err := jsonAPI.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ApplyEnv overrides o with the STAGE_* variables that are set.
func ApplyEnv(o *stage.Options) error {
	return applyEnv(o, env.Options{Prefix: EnvPrefix})
}

func applyEnv(o *stage.Options, opts env.Options) error {
	s := fromOptions(*o)
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	s.apply(o)
	return nil
}

// LoadWithEnv loads path, when not empty, then applies the environment and
// validates the result.
func LoadWithEnv(path string) (stage.Options, error) {
	o := stage.DefaultOptions()
	if path != "" {
		var err error
		if o, err = Load(path); err != nil {
			return stage.Options{}, err
		}
	}
	if err := ApplyEnv(&o); err != nil {
		return stage.Options{}, err
	}
	if err := o.Validate(); err != nil {
		return stage.Options{}, err
	}
	return o, nil
}
