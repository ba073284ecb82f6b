// SPDX-License-Identifier: MPL-2.0

package source

import (
	"context"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
)

type (
	// Revision is a full git commit hash.
	Revision string

	// OriginResolver answers questions about a remote repository without
	// cloning it. Listing refs over the wire is enough to learn where the
	// default branch currently points.
	OriginResolver struct {
		auth transport.AuthMethod
	}
)

// Short returns the abbreviated form of the revision.
func (r Revision) Short() string {
	if len(r) > 12 {
		return string(r[:12])
	}
	return string(r)
}

// NewOriginResolver creates a resolver. Authentication is picked up from the
// environment when present; public origins need none.
func NewOriginResolver() *OriginResolver {
	return &OriginResolver{auth: authFromEnv()}
}

// Head returns the commit the origin's default branch currently points to.
func (r *OriginResolver) Head(ctx context.Context, originURL string) (Revision, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{originURL},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{
		Auth: r.auth,
	})
	if err != nil {
		return "", fmt.Errorf("failed to list refs of %s: %w", originURL, err)
	}

	rev, err := headFromRefs(refs)
	if err != nil {
		return "", fmt.Errorf("origin %s: %w", originURL, err)
	}
	return rev, nil
}

// headFromRefs resolves the default-branch head from an advertised ref list.
// The HEAD ref is symbolic when the server supports symref advertisement;
// otherwise it already carries the hash directly.
func headFromRefs(refs []*plumbing.Reference) (Revision, error) {
	var symTarget plumbing.ReferenceName

	for _, ref := range refs {
		if ref.Name() != plumbing.HEAD {
			continue
		}
		if ref.Type() == plumbing.HashReference {
			return Revision(ref.Hash().String()), nil
		}
		symTarget = ref.Target()
	}

	if symTarget != "" {
		for _, ref := range refs {
			if ref.Name() == symTarget && ref.Type() == plumbing.HashReference {
				return Revision(ref.Hash().String()), nil
			}
		}
	}

	return "", fmt.Errorf("no resolvable HEAD among %d advertised refs", len(refs))
}

// authFromEnv configures token authentication from the environment.
// Returns nil when nothing is set, which works for public origins.
func authFromEnv() transport.AuthMethod {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return &http.BasicAuth{
			Username: "x-access-token",
			Password: token,
		}
	}
	if token := os.Getenv("GIT_TOKEN"); token != "" {
		return &http.BasicAuth{
			Username: "git",
			Password: token,
		}
	}
	return nil
}
