package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"

	"github.com/blackwell-systems/repolens/internal/health"
)

// ErrRepoNotFound is returned when the API reports no such repository.
var ErrRepoNotFound = errors.New("repository not found")

// Fallbacks for optional API fields.
const (
	noDescription = "No description"
	noLanguage    = "Unknown"
)

// Provider looks up repository metadata through the GitHub REST API.
type Provider struct {
	client *gh.Client
}

// ProviderOptions configures NewProvider.
type ProviderOptions struct {
	// Token authenticates requests when non-empty.
	Token string
	// APIURL overrides the API endpoint, e.g. for GitHub Enterprise or tests.
	APIURL string
	// HTTPClient is the transport; nil uses http.DefaultClient.
	HTTPClient *http.Client
}

// NewProvider returns a Provider for opts.
func NewProvider(opts ProviderOptions) (*Provider, error) {
	client := gh.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.APIURL != "" {
		base := opts.APIURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing api url: %w", err)
		}
		client.BaseURL = u
	}
	return &Provider{client: client}, nil
}

// Metadata fetches owner/name and converts it into the engine's record.
func (p *Provider) Metadata(ctx context.Context, owner, name string) (*health.Metadata, error) {
	repo, resp, err := p.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s/%s: %w", owner, name, ErrRepoNotFound)
		}
		return nil, fmt.Errorf("fetching %s/%s: %w", owner, name, err)
	}
	return convertRepository(owner, repo), nil
}

func convertRepository(owner string, repo *gh.Repository) *health.Metadata {
	meta := &health.Metadata{
		Owner:         owner,
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		Language:      repo.GetLanguage(),
		Size:          repo.GetSize(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		CreatedAt:     formatTimestamp(repo.CreatedAt),
		UpdatedAt:     formatTimestamp(repo.UpdatedAt),
		PushedAt:      formatTimestamp(repo.PushedAt),
		CloneURL:      repo.GetCloneURL(),
		DefaultBranch: repo.GetDefaultBranch(),
		Archived:      repo.GetArchived(),
		Disabled:      repo.GetDisabled(),
		Private:       repo.GetPrivate(),
		HasWiki:       repo.GetHasWiki(),
	}
	if meta.Description == "" {
		meta.Description = noDescription
	}
	if meta.Language == "" {
		meta.Language = noLanguage
	}
	return meta
}

func formatTimestamp(ts *gh.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
