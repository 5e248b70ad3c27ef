package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/blackwell-systems/repolens/internal/health"
)

// DefaultCloneTimeout bounds one clone when the Cloner has none configured.
const DefaultCloneTimeout = 60 * time.Second

var errNoCloneURL = errors.New("metadata has no clone url")

// Cloner fetches repositories with a depth-1 clone of the default branch.
type Cloner struct {
	// Token authenticates HTTPS clones of private repositories.
	Token string
	// Timeout bounds a single clone.
	Timeout time.Duration
	// Progress receives git's sideband output when non-nil.
	Progress io.Writer
}

// Fetch clones meta.CloneURL into dest/<name> and returns that path. A
// failed clone leaves no partial checkout behind.
func (c *Cloner) Fetch(ctx context.Context, meta *health.Metadata, dest string) (string, error) {
	if meta.CloneURL == "" {
		return "", errNoCloneURL
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCloneTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name := meta.Name
	if name == "" {
		name = "repository"
	}
	path := filepath.Join(dest, name)

	opts := &git.CloneOptions{
		URL:          meta.CloneURL,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
		Progress:     c.Progress,
	}
	if meta.DefaultBranch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(meta.DefaultBranch)
	}
	if c.Token != "" {
		opts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: c.Token}
	}

	if _, err := git.PlainCloneContext(ctx, path, false, opts); err != nil {
		_ = os.RemoveAll(path)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("cloning %s: timed out after %s", meta.CloneURL, timeout)
		}
		return "", fmt.Errorf("cloning %s: %w", meta.CloneURL, err)
	}
	return path, nil
}
