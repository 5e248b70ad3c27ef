package engine

import (
	"context"
	"errors"

	"github.com/blackwell-systems/repolens/internal/health"
)

// MetadataProvider looks up hosting metadata for a repository.
type MetadataProvider interface {
	Metadata(ctx context.Context, owner, name string) (*health.Metadata, error)
}

// Fetcher materializes a repository under dest and returns the local path.
// Timeouts and retries are the fetcher's concern.
type Fetcher interface {
	Fetch(ctx context.Context, meta *health.Metadata, dest string) (string, error)
}

var errNoMetadata = errors.New("no metadata returned")

// AnalyzeRepository resolves metadata, fetches the tree into dest and
// analyzes it. Collaborator failures are returned as *CollaboratorError
// before any scanning starts. The fetched tree is left in place.
func (e *Engine) AnalyzeRepository(ctx context.Context, owner, name string, provider MetadataProvider, fetcher Fetcher, dest string) (*Report, error) {
	meta, err := provider.Metadata(ctx, owner, name)
	if err != nil {
		return nil, &CollaboratorError{Collaborator: CollaboratorMetadata, Err: err}
	}
	if meta == nil {
		return nil, &CollaboratorError{Collaborator: CollaboratorMetadata, Err: errNoMetadata}
	}

	path, err := fetcher.Fetch(ctx, meta, dest)
	if err != nil {
		return nil, &CollaboratorError{Collaborator: CollaboratorFetcher, Err: err}
	}

	e.log.Info("repository fetched", "repo", meta.FullName, "path", path)
	return e.Analyze(ctx, path, meta)
}
