// Package ghclient provides a GitHub contents client using go-github
package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/go-github/v67/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"
)

// Client wraps the go-github client
type Client struct {
	gh            *github.Client
	authenticated bool
}

// New creates a client for github.com.
// Token resolution order: GITHUB_TOKEN, GH_TOKEN, gh CLI config, unauthenticated
func New() *Client {
	return newClient("github.com")
}

// NewForHost creates a client for a host; anything other than github.com
// is treated as GitHub Enterprise.
func NewForHost(host string) *Client {
	if host == "" || host == "github.com" || host == "api.github.com" {
		return New()
	}

	c := newClient(host)
	c.gh.BaseURL, _ = url.Parse(fmt.Sprintf("https://%s/api/v3/", host))
	c.gh.UploadURL, _ = url.Parse(fmt.Sprintf("https://%s/api/uploads/", host))
	return c
}

func newClient(host string) *Client {
	var httpClient *http.Client
	token := getToken(host)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	return &Client{
		gh:            github.NewClient(httpClient),
		authenticated: token != "",
	}
}

// IsAuthenticated returns true if the client has a token
func (c *Client) IsAuthenticated() bool {
	return c.authenticated
}

func refOptions(ref string) *github.RepositoryContentGetOptions {
	if ref == "" {
		return nil
	}
	return &github.RepositoryContentGetOptions{Ref: ref}
}

// GetContents fetches a file's decoded content
func (c *Client) GetContents(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	fileContent, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, refOptions(ref))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s", path)
	}
	if fileContent == nil {
		return nil, errors.Errorf("%s is a directory, not a file", path)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	return []byte(content), nil
}

// ListContents lists a directory in a repository
func (c *Client) ListContents(ctx context.Context, owner, repo, path, ref string) ([]*github.RepositoryContent, error) {
	fileContent, dirContents, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, refOptions(ref))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", path)
	}
	if fileContent != nil {
		return nil, errors.Errorf("%s is a file, not a directory", path)
	}
	return dirContents, nil
}

func getToken(host string) string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	// gh CLI compat
	if token := os.Getenv("GH_TOKEN"); token != "" {
		return token
	}
	// Unauthenticated otherwise (60 req/hr)
	return readGhToken(host)
}

// ghHostsConfig is the gh CLI hosts.yml layout
type ghHostsConfig map[string]struct {
	OAuthToken string `yaml:"oauth_token"`
}

// readGhToken reads the token for host from ~/.config/gh/hosts.yml
func readGhToken(host string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	data, err := os.ReadFile(filepath.Join(homeDir, ".config", "gh", "hosts.yml"))
	if err != nil {
		return ""
	}
	var hosts ghHostsConfig
	if err := yaml.Unmarshal(data, &hosts); err != nil {
		return ""
	}
	return hosts[host].OAuthToken
}
