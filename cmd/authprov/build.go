// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"authprov/internal/container"
	"authprov/internal/oci"
	"authprov/internal/provision"
	"authprov/internal/source"
)

var (
	buildFlags struct {
		specFlags
		forceRebuild  bool
		skipPreflight bool
		noLock        bool
	}

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build a provisioned image carrying the auth tool",
		Long: `Build a container image that carries the spotizerr-auth tool.

Pinned builds are cached: if an image for the same descriptor already
exists it is reused. Source builds always rebuild so the image captures
the repository's head at this moment, and the captured revision is
written into the lock record.`,
		Example: `  authprov build --pin 1.1.1
  authprov build --source
  authprov build --source --origin https://github.com/you/spotizerr-auth.git
  authprov build --pin 1.1.1 --base python:3.13-slim`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, _, err := runBuild(cmd.Context(), &buildFlags.specFlags, buildFlags.forceRebuild, buildFlags.skipPreflight, buildFlags.noLock)
			if err != nil {
				return err
			}

			if result.CacheHit {
				fmt.Fprintln(cmd.ErrOrStderr(), SuccessStyle.Render("✓")+" reusing cached image")
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.ImageTag)
			return nil
		},
	}
)

func init() {
	buildFlags.register(buildCmd)
	buildCmd.Flags().BoolVar(&buildFlags.forceRebuild, "force-rebuild", false, "bypass the image cache and rebuild")
	buildCmd.Flags().BoolVar(&buildFlags.skipPreflight, "skip-preflight", false, "skip the registry check of the base image")
	buildCmd.Flags().BoolVar(&buildFlags.noLock, "no-lock", false, "do not write a lock record after the build")
}

// runBuild is the shared build path for `build` and `run`. It resolves the
// engine, checks the base image, provisions, and records the build.
func runBuild(ctx context.Context, flags *specFlags, forceRebuild, skipPreflight, noLock bool) (*provision.Result, container.Engine, error) {
	spec, err := flags.buildSpec(cfg)
	if err != nil {
		return nil, nil, err
	}

	engine, err := resolveEngine(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("using container engine", "engine", engine.Name())

	if !skipPreflight {
		desc, err := oci.NewPreflight().Check(ctx, spec.Base.Reference())
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("base image present in registry", "ref", desc.Reference, "digest", desc.Digest)
	}

	opts := []provision.Option{
		provision.WithForceRebuild(forceRebuild || cfg.Provision.ForceRebuild),
		provision.WithTagPrefix(cfg.Provision.TagPrefix),
		provision.WithBuildOutput(os.Stderr),
	}
	if cfg.Provision.CacheDir != "" {
		opts = append(opts, provision.WithCacheDir(cfg.Provision.CacheDir.String()))
	}

	provisioner := provision.NewImageProvisioner(engine, logger, opts...)
	result, err := provisioner.Provision(ctx, spec)
	if err != nil {
		return nil, nil, err
	}

	if !noLock && !result.CacheHit {
		if err := writeLockRecord(ctx, provisioner, engine, spec, result); err != nil {
			// The image is built; a failed record is a warning, not a failure.
			logger.Warn("could not write lock record", "err", err)
		}
	}

	return result, engine, nil
}

// writeLockRecord captures the build's resolved inputs. Source builds also
// record the revision the built image carries.
func writeLockRecord(ctx context.Context, provisioner *provision.ImageProvisioner, engine container.Engine, spec *provision.Spec, result *provision.Result) error {
	record := &provision.LockRecord{
		Image:   result.ImageTag,
		Mode:    spec.Mode,
		Package: spec.Package,
		Base:    spec.Base.Reference(),
		Engine:  engine.Name(),
		BuiltAt: time.Now().UTC(),
	}

	switch spec.Mode {
	case provision.ModePinned:
		record.PinnedVersion = spec.PinnedVersion
	case provision.ModeSource:
		record.SourceOrigin = spec.SourceOrigin
		// The image itself is the authority on which revision the clone
		// captured; the origin may have moved since the build.
		rev, err := source.NewImageProber(engine).Revision(ctx, result.ImageTag, spec.WorkDir)
		if err != nil {
			logger.Debug("image revision probe failed, falling back to origin listing", "err", err)
			rev, err = source.NewOriginResolver().Head(ctx, spec.SourceOrigin)
			if err != nil {
				logger.Warn("could not resolve a source revision for the lock record", "err", err)
			}
		}
		record.SourceRevision = string(rev)
	}

	path, err := provision.WriteLock(provisioner.Config().CacheDir, record)
	if err != nil {
		return err
	}
	logger.Debug("wrote lock record", "path", path)
	return nil
}
