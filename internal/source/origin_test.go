// SPDX-License-Identifier: MPL-2.0

package source

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
)

func TestHeadFromRefs(t *testing.T) {
	t.Parallel()

	const (
		mainHash = "1111111111111111111111111111111111111111"
		devHash  = "2222222222222222222222222222222222222222"
	)

	tests := []struct {
		name    string
		refs    []*plumbing.Reference
		want    Revision
		wantErr bool
	}{
		{
			name: "symbolic HEAD resolved through default branch",
			refs: []*plumbing.Reference{
				plumbing.NewSymbolicReference(plumbing.HEAD, "refs/heads/main"),
				plumbing.NewReferenceFromStrings("refs/heads/main", mainHash),
				plumbing.NewReferenceFromStrings("refs/heads/dev", devHash),
			},
			want: Revision(mainHash),
		},
		{
			name: "hash HEAD used directly",
			refs: []*plumbing.Reference{
				plumbing.NewReferenceFromStrings("HEAD", mainHash),
				plumbing.NewReferenceFromStrings("refs/heads/main", mainHash),
			},
			want: Revision(mainHash),
		},
		{
			name: "symbolic HEAD to missing branch",
			refs: []*plumbing.Reference{
				plumbing.NewSymbolicReference(plumbing.HEAD, "refs/heads/gone"),
				plumbing.NewReferenceFromStrings("refs/heads/main", mainHash),
			},
			wantErr: true,
		},
		{
			name:    "no refs at all",
			refs:    nil,
			wantErr: true,
		},
		{
			name: "no HEAD advertised",
			refs: []*plumbing.Reference{
				plumbing.NewReferenceFromStrings("refs/heads/main", mainHash),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := headFromRefs(tt.refs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("headFromRefs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("headFromRefs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRevisionShort(t *testing.T) {
	t.Parallel()

	full := Revision("0123456789abcdef0123456789abcdef01234567")
	if got := full.Short(); got != "0123456789ab" {
		t.Errorf("Short() = %q, want 12-char prefix", got)
	}
	if got := Revision("abc123").Short(); got != "abc123" {
		t.Errorf("Short() = %q, short input should pass through", got)
	}
}
