package github

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultWikiBase serves raw wiki pages.
const DefaultWikiBase = "https://raw.githubusercontent.com/wiki"

// maxWikiBody caps how much of the home page is read.
const maxWikiBody = 64 << 10

// WikiChecker reports whether a repository wiki has a non-empty home page.
type WikiChecker struct {
	// Base is the raw wiki root; empty means DefaultWikiBase.
	Base   string
	Client *http.Client
}

// NewWikiChecker returns a checker with a short request timeout.
func NewWikiChecker() *WikiChecker {
	return &WikiChecker{Client: &http.Client{Timeout: 10 * time.Second}}
}

// HasWiki fetches <base>/<owner>/<name>/Home.md. Only a 200 with a
// non-blank body counts.
func (w *WikiChecker) HasWiki(ctx context.Context, owner, name string) (bool, error) {
	base := w.Base
	if base == "" {
		base = DefaultWikiBase
	}
	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}

	endpoint := fmt.Sprintf("%s/%s/%s/Home.md", base, url.PathEscape(owner), url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("building wiki request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetching wiki home: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWikiBody))
	if err != nil {
		return false, fmt.Errorf("reading wiki home: %w", err)
	}
	return len(bytes.TrimSpace(body)) > 0, nil
}
