package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/repolens/internal/engine"
	"github.com/blackwell-systems/repolens/internal/github"
	"github.com/blackwell-systems/repolens/internal/scanner"
	"github.com/blackwell-systems/repolens/internal/suggest"
)

var (
	remoteKeep   bool
	remoteNoWiki bool
)

var remoteCmd = &cobra.Command{
	Use:   "remote <url | owner/name>",
	Short: "Fetch and analyze a GitHub repository",
	Long: `Look up repository metadata through the GitHub API, shallow-clone the
default branch into a temporary directory and analyze it. The report adds
the repository record and its health indicators (activity, maintenance and
community) to the local analysis.

A token from github.token, REPOLENS_GITHUB_TOKEN or GITHUB_TOKEN is used for
both the API and the clone when set.

Examples:
  repolens remote https://github.com/spf13/cobra
  repolens remote spf13/cobra --format json
  repolens remote spf13/cobra --keep       # leave the checkout in place`,
	Args: cobra.ExactArgs(1),
	RunE: runRemote,
}

func init() {
	remoteCmd.Flags().BoolVar(&remoteKeep, "keep", false, "Keep the cloned checkout and print its path")
	remoteCmd.Flags().BoolVar(&remoteNoWiki, "no-wiki", false, "Skip the wiki probe when checking for documentation")
	remoteCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Do not record this run in the history database")
	remoteCmd.Flags().BoolVar(&analyzeQuiet, "quiet", false, "Hide the progress bar")
	rootCmd.AddCommand(remoteCmd)
}

func runRemote(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}

	owner, name, err := github.ParseRepoURL(args[0])
	if err != nil {
		return err
	}

	provider, err := github.NewProvider(github.ProviderOptions{
		Token:  env.cfg.GitHub.Token,
		APIURL: env.cfg.GitHub.APIURL,
	})
	if err != nil {
		return err
	}
	cloner := &github.Cloner{
		Token:   env.cfg.GitHub.Token,
		Timeout: env.cfg.GitHub.CloneTimeout,
	}

	dest, err := os.MkdirTemp("", "repolens-")
	if err != nil {
		return fmt.Errorf("creating checkout dir: %w", err)
	}
	if !remoteKeep {
		defer func() { _ = os.RemoveAll(dest) }()
	}

	var wiki scanner.WikiChecker
	if !remoteNoWiki {
		wiki = github.NewWikiChecker()
	}

	bar := env.progress("Analyzing "+owner+"/"+name, analyzeQuiet)
	eng := env.newEngine(bar, wiki)
	report, err := eng.AnalyzeRepository(cmd.Context(), owner, name, provider, cloner, dest)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		if errors.Is(err, github.ErrRepoNotFound) {
			return fmt.Errorf("%s/%s: repository not found or not accessible", owner, name)
		}
		var cerr *engine.CollaboratorError
		if errors.As(err, &cerr) && cerr.Collaborator == engine.CollaboratorFetcher {
			return fmt.Errorf("fetching %s/%s: %w", owner, name, cerr.Err)
		}
		return err
	}

	target := owner + "/" + name
	if report.Repository != nil && report.Repository.FullName != "" {
		target = report.Repository.FullName
	}
	suggestions := suggest.NewEngine().Run(report)
	if !analyzeNoSave {
		env.record(target, "remote", report, suggestions)
	}
	if remoteKeep {
		fmt.Fprintf(env.errOut, "Checkout kept at %s\n", dest)
	}
	return env.writeAnalysis(target, report, suggestions)
}
