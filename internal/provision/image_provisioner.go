// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"authprov/internal/container"
	"authprov/internal/issue"
)

// Compile-time interface check
var _ Provisioner = (*ImageProvisioner)(nil)

type (
	// Config holds configuration for the image provisioner.
	Config struct {
		// ForceRebuild bypasses cached images and forces a rebuild.
		ForceRebuild bool

		// TagPrefix is the repository part of provisioned image tags.
		// Default: "authprov".
		TagPrefix string

		// TagSuffix is an optional suffix appended to provisioned image
		// tags, used for test isolation. When empty, the standard tag
		// format is used.
		TagSuffix string

		// CacheDir is where lock records for completed builds are written.
		// Default: ~/.cache/authprov.
		CacheDir string

		// BuildOutput receives the engine's build progress. Defaults to
		// stderr so the tool's own stdout stays clean.
		BuildOutput io.Writer
	}

	// Option is a functional option for configuring a Config.
	Option func(*Config)

	// ImageProvisioner builds provisioning images through a container
	// engine. Pinned-mode images are cached by a hash of the rendered
	// Dockerfile and reused; source-mode images are always rebuilt without
	// layer cache so they capture the origin's current head.
	ImageProvisioner struct {
		engine container.Engine
		config *Config
		logger *log.Logger
	}
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	cacheDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".cache", "authprov")
	}

	return &Config{
		TagPrefix:   "authprov",
		TagSuffix:   os.Getenv("AUTHPROV_TAG_SUFFIX"),
		CacheDir:    cacheDir,
		BuildOutput: os.Stderr,
	}
}

// WithForceRebuild returns an Option that sets ForceRebuild on the config.
func WithForceRebuild(force bool) Option {
	return func(c *Config) {
		c.ForceRebuild = force
	}
}

// WithTagPrefix returns an Option that overrides the image tag repository part.
// Empty values are ignored so callers can pass config values through directly.
func WithTagPrefix(prefix string) Option {
	return func(c *Config) {
		if prefix != "" {
			c.TagPrefix = prefix
		}
	}
}

// WithTagSuffix returns an Option that sets TagSuffix on the config.
func WithTagSuffix(suffix string) Option {
	return func(c *Config) {
		c.TagSuffix = suffix
	}
}

// WithCacheDir returns an Option that sets CacheDir on the config.
func WithCacheDir(dir string) Option {
	return func(c *Config) {
		c.CacheDir = dir
	}
}

// WithBuildOutput returns an Option that redirects engine build progress.
func WithBuildOutput(w io.Writer) Option {
	return func(c *Config) {
		c.BuildOutput = w
	}
}

// Apply applies the given options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// NewImageProvisioner creates an ImageProvisioner.
func NewImageProvisioner(engine container.Engine, logger *log.Logger, opts ...Option) *ImageProvisioner {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ImageProvisioner{
		engine: engine,
		config: cfg,
		logger: logger,
	}
}

// Config returns the provisioner's configuration.
func (p *ImageProvisioner) Config() *Config {
	return p.config
}

// Provision renders the Dockerfile for the spec and builds the image.
//
// Pinned-mode builds are keyed on the rendered descriptor: if an image with
// the derived tag already exists, it is reused. Source-mode builds skip the
// cache check and disable the engine's layer cache, because the clone stanza
// must observe the origin's head at this build, not at some earlier one.
func (p *ImageProvisioner) Provision(ctx context.Context, spec *Spec) (*Result, error) {
	dockerfile, err := RenderDockerfile(spec)
	if err != nil {
		return nil, err
	}

	tag := p.imageTag(cacheKey(dockerfile))

	if spec.Mode == ModePinned && !p.config.ForceRebuild {
		exists, _ := p.engine.ImageExists(ctx, tag) //nolint:errcheck // Error treated as "not found"
		if exists {
			p.logger.Debug("reusing cached image", "tag", tag)
			return &Result{ImageTag: tag, CacheHit: true, Dockerfile: dockerfile}, nil
		}
	}

	if err := p.buildImage(ctx, spec, dockerfile, tag); err != nil {
		return nil, err
	}

	return &Result{ImageTag: tag, Dockerfile: dockerfile}, nil
}

// ImageTagFor returns the tag that would be used for a spec without building.
func (p *ImageProvisioner) ImageTagFor(spec *Spec) (string, error) {
	dockerfile, err := RenderDockerfile(spec)
	if err != nil {
		return "", err
	}
	return p.imageTag(cacheKey(dockerfile)), nil
}

// imageTag constructs the image tag with the optional suffix.
func (p *ImageProvisioner) imageTag(hash string) string {
	if p.config.TagSuffix != "" {
		return fmt.Sprintf("%s:%s-%s", p.config.TagPrefix, hash, p.config.TagSuffix)
	}
	return fmt.Sprintf("%s:%s", p.config.TagPrefix, hash)
}

// cacheKey derives the image tag hash from the rendered descriptor. Any
// change to the base runtime, acquisition inputs, or entrypoint changes the
// descriptor and therefore the tag.
func cacheKey(dockerfile string) string {
	sum := sha256.Sum256([]byte(dockerfile))
	return hex.EncodeToString(sum[:])[:12]
}

// buildImage writes the descriptor into a temporary build context and runs
// the engine build. The context directory holds only the Dockerfile: both
// acquisition modes fetch the tool over the network, nothing is copied in.
func (p *ImageProvisioner) buildImage(ctx context.Context, spec *Spec, dockerfile, tag string) error {
	buildCtx, err := os.MkdirTemp("", "authprov-ctx-*")
	if err != nil {
		return fmt.Errorf("failed to create build context: %w", err)
	}
	defer os.RemoveAll(buildCtx)

	dockerfilePath := filepath.Join(buildCtx, "Dockerfile")
	if err := os.WriteFile(dockerfilePath, []byte(dockerfile), 0o644); err != nil {
		return fmt.Errorf("failed to write Dockerfile: %w", err)
	}

	p.logger.Info("building image",
		"tag", tag,
		"mode", spec.Mode,
		"base", spec.Base.Reference())

	buildOpts := container.BuildOptions{
		ContextDir: buildCtx,
		Dockerfile: "Dockerfile",
		Tag:        tag,
		// Source mode must re-run the clone stanza every build.
		NoCache: spec.Mode == ModeSource || p.config.ForceRebuild,
		Pull:    spec.Mode == ModeSource,
		Stdout:  p.config.BuildOutput,
		Stderr:  p.config.BuildOutput,
	}

	if err := p.engine.Build(ctx, buildOpts); err != nil {
		return issue.NewErrorContext().
			WithOperation("provision image").
			WithResource(tag).
			WithSuggestion("Check network access to " + acquisitionEndpoint(spec)).
			WithSuggestion("Verify the base image " + spec.Base.Reference() + " is pullable").
			Wrap(err).
			BuildError()
	}

	return nil
}

// acquisitionEndpoint names the network dependency of the spec's mode,
// for error suggestions.
func acquisitionEndpoint(spec *Spec) string {
	if spec.Mode == ModeSource {
		return spec.SourceOrigin
	}
	return "the package index"
}
