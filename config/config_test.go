package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caarlos0/env/v11"

	"github.com/gogpu/stage"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"stage.toml", TOML, false},
		{"a/b/STAGE.YML", YAML, false},
		{"stage.yaml", YAML, false},
		{"stage.json", JSON, false},
		{"stage.ini", "", true},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if (err != nil) != tt.err {
			t.Errorf("FormatOf(%q) error = %v, want error %v", tt.path, err, tt.err)
		}
		if got != tt.want {
			t.Errorf("FormatOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"toml", TOML, "width = 320\nbackground_color = 0x1099bb\npower_preference = \"low-power\"\n"},
		{"yaml", YAML, "width: 320\nbackground_color: 0x1099bb\npower_preference: low-power\n"},
		{"json", JSON, `{"width": 320, "background_color": 1087931, "power_preference": "low-power"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := Decode(strings.NewReader(tt.input), tt.format, stage.DefaultOptions())
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if o.Width != 320 {
				t.Errorf("Width = %d, want 320", o.Width)
			}
			if o.Height != 600 {
				t.Errorf("Height = %d, want default 600", o.Height)
			}
			if o.BackgroundColor != 0x1099bb {
				t.Errorf("BackgroundColor = %#x, want 0x1099bb", o.BackgroundColor)
			}
			if o.PowerPreference != stage.PowerLowPower {
				t.Errorf("PowerPreference = %q", o.PowerPreference)
			}
			if !o.ClearBeforeRender {
				t.Error("ClearBeforeRender default lost")
			}
		})
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"toml", TOML, "widht = 1\n"},
		{"yaml", YAML, "widht: 1\n"},
		{"json", JSON, `{"widht": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.input), tt.format, stage.DefaultOptions()); err == nil {
				t.Error("Decode() error = nil, want unknown key error")
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := stage.DefaultOptions()
	in.Width, in.Antialias, in.BackgroundColor = 1024, true, 0xff00ff

	for _, format := range []Format{TOML, YAML, JSON} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, format, in); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			out, err := Decode(&buf, format, stage.Options{})
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if fromOptions(out) != fromOptions(in) {
				t.Errorf("round trip = %+v, want %+v", fromOptions(out), fromOptions(in))
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.toml")
	if err := os.WriteFile(path, []byte("height = 480\nantialias = true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	o, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if o.Height != 480 || !o.Antialias || o.Width != 800 {
		t.Errorf("Load() = %dx%d antialias=%v", o.Width, o.Height, o.Antialias)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load(missing) error = nil")
	}
	if _, err := Load("stage.ini"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Load(ini) error = %v, want ErrUnknownFormat", err)
	}
}

func TestApplyEnv(t *testing.T) {
	o := stage.DefaultOptions()
	err := applyEnv(&o, env.Options{
		Prefix: EnvPrefix,
		Environment: map[string]string{
			"STAGE_WIDTH":               "64",
			"STAGE_RESOLUTION":          "1.5",
			"STAGE_CLEAR_BEFORE_RENDER": "false",
			"STAGE_TEXTURE_GC_MODE":     "manual",
			"STAGE_TEXTURE_GC_MAX_IDLE": "120",
		},
	})
	if err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}
	if o.Width != 64 || o.Resolution != 1.5 || o.ClearBeforeRender {
		t.Errorf("applyEnv() = %+v", fromOptions(o))
	}
	if o.TextureGCMode != stage.GCModeManual || o.TextureGCMaxIdle != 120 {
		t.Errorf("texture gc = %q/%d, want manual/120", o.TextureGCMode, o.TextureGCMaxIdle)
	}
	if o.Height != 600 {
		t.Errorf("Height = %d, want untouched 600", o.Height)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	o := stage.DefaultOptions()
	err := applyEnv(&o, env.Options{
		Prefix:      EnvPrefix,
		Environment: map[string]string{"STAGE_WIDTH": "wide"},
	})
	if err == nil {
		t.Error("applyEnv() error = nil, want parse error")
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("STAGE_HEIGHT", "32")
	o, err := LoadWithEnv("")
	if err != nil {
		t.Fatalf("LoadWithEnv() error = %v", err)
	}
	if o.Height != 32 {
		t.Errorf("Height = %d, want 32", o.Height)
	}

	t.Setenv("STAGE_RESOLUTION", "0")
	if _, err := LoadWithEnv(""); !errors.Is(err, stage.ErrInvalidOptions) {
		t.Errorf("LoadWithEnv() error = %v, want ErrInvalidOptions", err)
	}
}
