// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestContainerEngineIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		engine ContainerEngine
		valid  bool
	}{
		{engine: ContainerEngineAuto, valid: true},
		{engine: ContainerEngineDocker, valid: true},
		{engine: ContainerEnginePodman, valid: true},
		{engine: "lxc", valid: false},
		{engine: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.engine), func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.engine.IsValid()
			if valid != tt.valid {
				t.Errorf("IsValid() = %v, want %v", valid, tt.valid)
			}
			if !tt.valid && !errors.Is(errs[0], ErrInvalidContainerEngine) {
				t.Errorf("error should wrap ErrInvalidContainerEngine, got %v", errs[0])
			}
		})
	}
}

func TestColorSchemeIsValid(t *testing.T) {
	t.Parallel()

	for _, cs := range []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight} {
		if valid, _ := cs.IsValid(); !valid {
			t.Errorf("%q should be valid", cs)
		}
	}
	if valid, errs := ColorScheme("neon").IsValid(); valid || !errors.Is(errs[0], ErrInvalidColorScheme) {
		t.Error("unknown color scheme should fail with ErrInvalidColorScheme")
	}
}

func TestCacheDirPathIsValid(t *testing.T) {
	t.Parallel()

	if valid, _ := CacheDirPath("").IsValid(); !valid {
		t.Error("empty cache dir is the default and must be valid")
	}
	if valid, _ := CacheDirPath("/var/cache/authprov").IsValid(); !valid {
		t.Error("real path should be valid")
	}
	if valid, errs := CacheDirPath("   ").IsValid(); valid || !errors.Is(errs[0], ErrInvalidCacheDirPath) {
		t.Error("whitespace-only cache dir should fail with ErrInvalidCacheDirPath")
	}
}

func TestConfigIsValid(t *testing.T) {
	t.Parallel()

	if valid, errs := DefaultConfig().IsValid(); !valid {
		t.Fatalf("default config must be valid, got %v", errs)
	}

	bad := DefaultConfig()
	bad.ContainerEngine = "lxc"
	bad.UI.ColorScheme = "neon"

	valid, errs := bad.IsValid()
	if valid {
		t.Fatal("config with bad fields should be invalid")
	}
	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) {
		t.Fatalf("expected InvalidConfigError, got %T", errs[0])
	}
	if len(cfgErr.FieldErrors) != 2 {
		t.Errorf("expected 2 field errors, got %d", len(cfgErr.FieldErrors))
	}
}
