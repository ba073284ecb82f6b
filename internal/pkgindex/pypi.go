// SPDX-License-Identifier: MPL-2.0

package pkgindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// defaultBaseURL is PyPI's JSON API endpoint.
	defaultBaseURL = "https://pypi.org"

	// maxJSONResponseBytes is the upper bound on JSON API response size (10 MB).
	// Prevents unbounded memory consumption from malicious or malformed responses.
	maxJSONResponseBytes = 10 << 20
)

// ErrPackageNotFound is returned when the index has no project by that name.
var ErrPackageNotFound = errors.New("package not found")

type (
	// Project holds the subset of PyPI project metadata the verify path needs.
	Project struct {
		Name          string   // Canonical project name
		LatestVersion string   // Most recent release
		Releases      []string // Installable release versions, unordered
	}

	// pypiProject is the JSON wire format for a PyPI project response.
	pypiProject struct {
		Info struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"info"`
		Releases map[string][]pypiFile `json:"releases"`
	}

	// pypiFile is one published file of a release on the wire.
	pypiFile struct {
		Yanked bool `json:"yanked"`
	}

	// Client queries a Python package index over its JSON API.
	Client struct {
		httpClient *http.Client
		baseURL    string
		userAgent  string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(p *Client) {
		p.httpClient = c
	}
}

// WithBaseURL overrides the index base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(p *Client) {
		p.baseURL = strings.TrimRight(base, "/")
	}
}

// NewClient creates a Client against pypi.org.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
		userAgent:  "authprov/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches project metadata from the index. Releases whose files have
// all been yanked (or that never shipped a file) are excluded: they cannot
// be installed, so a pin against them should not verify clean.
// Returns ErrPackageNotFound when the project does not exist.
func (c *Client) Lookup(ctx context.Context, pkg string) (*Project, error) {
	reqURL := fmt.Sprintf("%s/pypi/%s/json", c.baseURL, pkg)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", pkg, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("looking up %s: %w", pkg, ErrPackageNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("looking up %s: unexpected status %d", pkg, resp.StatusCode)
	}

	var raw pypiProject
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("looking up %s: decoding response: %w", pkg, err)
	}

	proj := &Project{
		Name:          raw.Info.Name,
		LatestVersion: raw.Info.Version,
		Releases:      make([]string, 0, len(raw.Releases)),
	}
	for version, files := range raw.Releases {
		if !installable(files) {
			continue
		}
		proj.Releases = append(proj.Releases, version)
	}
	return proj, nil
}

// installable reports whether a release still has at least one non-yanked file.
func installable(files []pypiFile) bool {
	for _, f := range files {
		if !f.Yanked {
			return true
		}
	}
	return false
}

// HasRelease reports whether the project has published the given version.
func (c *Client) HasRelease(ctx context.Context, pkg, version string) (bool, error) {
	proj, err := c.Lookup(ctx, pkg)
	if err != nil {
		return false, err
	}
	for _, v := range proj.Releases {
		if v == version {
			return true, nil
		}
	}
	return false, nil
}
