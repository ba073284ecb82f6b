// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

const (
	// ModePinned installs one exact published version of the tool from the
	// package index. Reproducible; no build-time dependency on the tool's
	// source repository.
	ModePinned AcquisitionMode = "pinned"
	// ModeSource clones the tool's repository at its default-branch head and
	// installs the dependency set declared by the checked-out manifest.
	// Always-latest; explicitly not reproducible across builds.
	ModeSource AcquisitionMode = "source"

	// DefaultPackage is the auth tool's package index name.
	DefaultPackage = "spotizerr-auth"
	// DefaultOrigin is the auth tool's source repository.
	DefaultOrigin = "https://github.com/spotizerr-music/spotizerr-auth.git"
	// DefaultManifest is the dependency manifest inside the source tree.
	DefaultManifest = "requirements.txt"
	// DefaultWorkDir is where the tool's source or artifacts live in the image.
	DefaultWorkDir = "/app"
)

var (
	// ErrInvalidAcquisitionMode is the sentinel error wrapped by InvalidAcquisitionModeError.
	ErrInvalidAcquisitionMode = errors.New("invalid acquisition mode")

	// ErrInvalidBaseRuntime is the sentinel error wrapped by InvalidBaseRuntimeError.
	ErrInvalidBaseRuntime = errors.New("invalid base runtime")

	// ErrInvalidPinnedVersion is the sentinel error wrapped by InvalidPinnedVersionError.
	ErrInvalidPinnedVersion = errors.New("invalid pinned version")

	// ErrInvalidSourceOrigin is the sentinel error wrapped by InvalidSourceOriginError.
	ErrInvalidSourceOrigin = errors.New("invalid source origin")

	// ErrInvalidSpec is the sentinel error wrapped by InvalidSpecError.
	ErrInvalidSpec = errors.New("invalid build spec")

	// versionPattern accepts dotted numeric versions with an optional
	// pre-release/build suffix, e.g. "1.1.1" or "2.0.0rc1".
	versionPattern = regexp.MustCompile(`^\d+(\.\d+)*([.-]?[0-9A-Za-z]+)*$`)
)

type (
	// AcquisitionMode selects how the auth tool is obtained at build time.
	// Exactly one mode is active per build.
	AcquisitionMode string

	// InvalidAcquisitionModeError is returned when an AcquisitionMode is not recognized.
	InvalidAcquisitionModeError struct {
		Value AcquisitionMode
	}

	// BaseRuntime identifies the minimal execution environment the image is
	// built from. Fixed at build start; immutable thereafter.
	BaseRuntime struct {
		// Name is the runtime image name (e.g., "python")
		Name string
		// Tag is the version tag (e.g., "3.12")
		Tag string
		// Slim selects the minimized image variant
		Slim bool
	}

	// InvalidBaseRuntimeError is returned when a BaseRuntime has empty fields.
	InvalidBaseRuntimeError struct {
		Value BaseRuntime
	}

	// InvalidPinnedVersionError is returned when a pinned version string does
	// not look like a published release version.
	InvalidPinnedVersionError struct {
		Value string
	}

	// InvalidSourceOriginError is returned when a source origin URL is empty
	// or uses an unsupported scheme.
	InvalidSourceOriginError struct {
		Value string
	}

	// InvalidSpecError is returned when a Spec fails validation. It wraps the
	// individual field errors for inspection.
	InvalidSpecError struct {
		FieldErrs []error
	}

	// Spec describes one provisioning build. All values are fixed before the
	// build starts; the build stages run strictly sequentially over them.
	Spec struct {
		// Base is the base runtime the image is built from.
		Base BaseRuntime

		// Mode selects the acquisition strategy. Exactly one of
		// PinnedVersion/SourceOrigin must be set, matching the mode.
		Mode AcquisitionMode

		// Package is the tool's package index name (pinned mode).
		Package string

		// PinnedVersion is the exact version to install (pinned mode only).
		PinnedVersion string

		// SourceOrigin is the tool's repository URL (source mode only).
		SourceOrigin string

		// Manifest is the dependency manifest path inside the source tree,
		// relative to the working directory (source mode only).
		Manifest string

		// WorkDir is the working directory inside the image. Created before
		// dependency installation and before entrypoint invocation.
		WorkDir string

		// Entrypoint is the argument vector executed when the container
		// starts. Its process becomes the container's primary process.
		Entrypoint []string

		// SystemPackages are OS-level tools installed before acquisition
		// (currently a version-control client for source checkouts).
		SystemPackages []string

		// NonInteractive suppresses package-manager prompts during the build.
		// Threaded explicitly into rendering rather than mutated into the
		// process environment.
		NonInteractive bool
	}
)

// Error implements the error interface.
func (e *InvalidAcquisitionModeError) Error() string {
	return fmt.Sprintf("invalid acquisition mode %q (valid: pinned, source)", e.Value)
}

// Unwrap returns ErrInvalidAcquisitionMode so callers can use errors.Is.
func (e *InvalidAcquisitionModeError) Unwrap() error { return ErrInvalidAcquisitionMode }

// Validate returns an error if the AcquisitionMode is not one of the defined modes.
func (m AcquisitionMode) Validate() error {
	switch m {
	case ModePinned, ModeSource:
		return nil
	default:
		return &InvalidAcquisitionModeError{Value: m}
	}
}

// String returns the string representation of the AcquisitionMode.
func (m AcquisitionMode) String() string { return string(m) }

// Error implements the error interface.
func (e *InvalidBaseRuntimeError) Error() string {
	return fmt.Sprintf("invalid base runtime %q: name and tag must be non-empty", e.Value.Reference())
}

// Unwrap returns ErrInvalidBaseRuntime so callers can use errors.Is.
func (e *InvalidBaseRuntimeError) Unwrap() error { return ErrInvalidBaseRuntime }

// Reference returns the image reference for the base runtime,
// e.g. "python:3.12-slim".
func (b BaseRuntime) Reference() string {
	tag := b.Tag
	if b.Slim {
		tag += "-slim"
	}
	return b.Name + ":" + tag
}

// Validate returns an error if name or tag is empty.
func (b BaseRuntime) Validate() error {
	if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Tag) == "" {
		return &InvalidBaseRuntimeError{Value: b}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidPinnedVersionError) Error() string {
	return fmt.Sprintf("invalid pinned version %q: must be an exact release version like 1.1.1", e.Value)
}

// Unwrap returns ErrInvalidPinnedVersion so callers can use errors.Is.
func (e *InvalidPinnedVersionError) Unwrap() error { return ErrInvalidPinnedVersion }

// Error implements the error interface.
func (e *InvalidSourceOriginError) Error() string {
	return fmt.Sprintf("invalid source origin %q: must be an http(s) or git URL", e.Value)
}

// Unwrap returns ErrInvalidSourceOrigin so callers can use errors.Is.
func (e *InvalidSourceOriginError) Unwrap() error { return ErrInvalidSourceOrigin }

// Error implements the error interface.
func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid build spec: %d field error(s)", len(e.FieldErrs))
}

// Unwrap returns ErrInvalidSpec so callers can use errors.Is.
func (e *InvalidSpecError) Unwrap() error { return ErrInvalidSpec }

// DefaultBase returns the default base runtime for the auth tool.
func DefaultBase() BaseRuntime {
	return BaseRuntime{Name: "python", Tag: "3.12", Slim: true}
}

// ParseBase parses an image reference like "python:3.12-slim" into a
// BaseRuntime. The "-slim" suffix on the tag selects the slim variant.
func ParseBase(ref string) (BaseRuntime, error) {
	name, tag, found := strings.Cut(ref, ":")
	if !found || strings.TrimSpace(name) == "" || strings.TrimSpace(tag) == "" {
		return BaseRuntime{}, &InvalidBaseRuntimeError{Value: BaseRuntime{Name: name, Tag: tag}}
	}

	slim := strings.HasSuffix(tag, "-slim")
	tag = strings.TrimSuffix(tag, "-slim")

	b := BaseRuntime{Name: name, Tag: tag, Slim: slim}
	if err := b.Validate(); err != nil {
		return BaseRuntime{}, err
	}
	return b, nil
}

// PinnedSpec returns a Spec that installs the given published version of the
// auth tool and runs its installed console command.
func PinnedSpec(version string) *Spec {
	return &Spec{
		Base:           DefaultBase(),
		Mode:           ModePinned,
		Package:        DefaultPackage,
		PinnedVersion:  version,
		WorkDir:        DefaultWorkDir,
		Entrypoint:     []string{DefaultPackage},
		SystemPackages: []string{"git"},
		NonInteractive: true,
	}
}

// SourceSpec returns a Spec that clones the given origin at its default-branch
// head and runs the tool as a script.
func SourceSpec(origin string) *Spec {
	return &Spec{
		Base:           DefaultBase(),
		Mode:           ModeSource,
		Package:        DefaultPackage,
		SourceOrigin:   origin,
		Manifest:       DefaultManifest,
		WorkDir:        DefaultWorkDir,
		Entrypoint:     []string{"python", "spotizerr-auth.py"},
		SystemPackages: []string{"git"},
		NonInteractive: true,
	}
}

// Validate checks the Spec against the provisioning invariants: a valid base
// runtime, exactly one acquisition mode with its required inputs (and without
// the other mode's inputs), a working directory, and an entrypoint.
func (s *Spec) Validate() error {
	var errs []error

	if err := s.Base.Validate(); err != nil {
		errs = append(errs, err)
	}

	if err := s.Mode.Validate(); err != nil {
		errs = append(errs, err)
	} else {
		switch s.Mode {
		case ModePinned:
			if !versionPattern.MatchString(s.PinnedVersion) {
				errs = append(errs, &InvalidPinnedVersionError{Value: s.PinnedVersion})
			}
			if strings.TrimSpace(s.Package) == "" {
				errs = append(errs, fmt.Errorf("pinned mode requires a package name"))
			}
			if s.SourceOrigin != "" {
				errs = append(errs, fmt.Errorf("pinned mode must not set a source origin (modes are mutually exclusive)"))
			}
		case ModeSource:
			if !validOrigin(s.SourceOrigin) {
				errs = append(errs, &InvalidSourceOriginError{Value: s.SourceOrigin})
			}
			if strings.TrimSpace(s.Manifest) == "" || path.IsAbs(s.Manifest) {
				errs = append(errs, fmt.Errorf("source mode requires a manifest path relative to the working directory, got %q", s.Manifest))
			}
			if s.PinnedVersion != "" {
				errs = append(errs, fmt.Errorf("source mode must not pin a version (modes are mutually exclusive)"))
			}
		}
	}

	if !path.IsAbs(s.WorkDir) {
		errs = append(errs, fmt.Errorf("working directory must be an absolute path, got %q", s.WorkDir))
	}

	if len(s.Entrypoint) == 0 {
		errs = append(errs, fmt.Errorf("entrypoint argument vector must not be empty"))
	}
	for _, arg := range s.Entrypoint {
		if strings.TrimSpace(arg) == "" {
			errs = append(errs, fmt.Errorf("entrypoint argument vector contains an empty argument"))
			break
		}
	}

	if len(errs) > 0 {
		return &InvalidSpecError{FieldErrs: errs}
	}
	return nil
}

func validOrigin(origin string) bool {
	if strings.TrimSpace(origin) == "" {
		return false
	}
	for _, scheme := range []string{"https://", "http://", "git://", "ssh://"} {
		if strings.HasPrefix(origin, scheme) {
			return true
		}
	}
	return false
}
