package engine

import (
	"github.com/blackwell-systems/repolens/internal/buildsys"
	"github.com/blackwell-systems/repolens/internal/health"
	"github.com/blackwell-systems/repolens/internal/metrics"
	"github.com/blackwell-systems/repolens/internal/quality"
	"github.com/blackwell-systems/repolens/internal/scanner"
	"github.com/blackwell-systems/repolens/internal/security"
)

// Report is the aggregate result of one analysis run. It is handed to the
// caller only after every worker has finished and is not mutated afterwards.
type Report struct {
	// Repository and Health are nil when no metadata was supplied.
	Repository *health.Metadata `json:"repository,omitempty" yaml:"repository,omitempty"`

	CodeMetrics      metrics.Summary    `json:"code_metrics" yaml:"code_metrics"`
	ProjectStructure scanner.Structure  `json:"project_structure" yaml:"project_structure"`
	BuildSystems     buildsys.Summary   `json:"build_systems" yaml:"build_systems"`
	Security         security.Summary   `json:"security" yaml:"security"`
	Health           *health.Indicators `json:"health_indicators,omitempty" yaml:"health_indicators,omitempty"`
	CodeQuality      quality.Summary    `json:"code_quality" yaml:"code_quality"`
}
