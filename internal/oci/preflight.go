// SPDX-License-Identifier: MPL-2.0

package oci

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"

	"authprov/internal/issue"
)

type (
	// Descriptor summarizes the remote manifest for a base image reference.
	Descriptor struct {
		Reference string // Fully qualified reference
		Digest    string // Manifest digest, e.g., "sha256:..."
		MediaType string
		Size      int64
	}

	// headFunc fetches the manifest descriptor.
	// Indirection lets tests run without a registry.
	headFunc func(ref name.Reference, opts ...remote.Option) (*Descriptor, error)

	// Preflight verifies base image references exist in their registry.
	Preflight struct {
		head headFunc
	}

	// PreflightOption configures a Preflight during construction.
	PreflightOption func(*Preflight)
)

// NewPreflight creates a registry preflight checker.
func NewPreflight(opts ...PreflightOption) *Preflight {
	p := &Preflight{
		head: remoteHead,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// withHeadFunc overrides the registry call for tests.
func withHeadFunc(fn headFunc) PreflightOption {
	return func(p *Preflight) {
		p.head = fn
	}
}

// Check resolves the reference and asks the registry whether it exists.
func (p *Preflight) Check(ctx context.Context, imageRef string) (*Descriptor, error) {
	ref, err := name.ParseReference(NormalizeReference(imageRef))
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("resolve base image reference").
			WithResource(imageRef).
			WithSuggestion("use a reference of the form python:3.12-slim or registry/repo:tag").
			Wrap(err).
			BuildError()
	}

	desc, err := p.head(ref, remote.WithContext(ctx))
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("check base image in registry").
			WithResource(ref.String()).
			WithSuggestion("verify the tag exists (docker manifest inspect " + ref.String() + ")").
			WithSuggestion("check network access to the registry").
			Wrap(err).
			BuildError()
	}

	desc.Reference = ref.String()
	return desc, nil
}

// NormalizeReference qualifies a bare reference against docker.io.
//   - "python:3.12-slim" becomes "docker.io/library/python:3.12-slim"
//   - "ghcr.io/owner/repo:tag" is left untouched
func NormalizeReference(imageRef string) string {
	if !strings.Contains(imageRef, "/") {
		return "docker.io/library/" + imageRef
	}
	first := strings.Split(imageRef, "/")[0]
	if !strings.Contains(first, ".") && !strings.Contains(first, ":") && first != "localhost" {
		return "docker.io/" + imageRef
	}
	return imageRef
}

// remoteHead performs the actual manifest HEAD request.
func remoteHead(ref name.Reference, opts ...remote.Option) (*Descriptor, error) {
	desc, err := remote.Head(ref, opts...)
	if err != nil {
		return nil, fmt.Errorf("manifest head: %w", err)
	}
	return &Descriptor{
		Digest:    desc.Digest.String(),
		MediaType: string(desc.MediaType),
		Size:      desc.Size,
	}, nil
}
