package preflight

import (
	"context"
	"fmt"
	"strings"

	"reelsmith/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the offline preflight checks for the given config.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckFreeSpace("Work disk space", cfg.Paths.WorkDir, cfg.Workflow.MinFreeGiB),
		CheckPromptFile(cfg.Paths.PromptFile),
		CheckMusicLibrary(cfg),
		CheckCredential("LLM API key", cfg.LLM.APIKey),
		CheckCredential("Pexels API key", cfg.Pexels.APIKey),
	}
	return results
}

// RunBatchChecks runs RunAll plus the external binary checks. It gates every
// batch run.
func RunBatchChecks(ctx context.Context, cfg *config.Config) []Result {
	results := RunAll(ctx, cfg)
	if cfg == nil {
		return results
	}
	for _, status := range CheckSystemDeps(cfg) {
		if status.Optional {
			continue
		}
		detail := status.Command
		if !status.Available {
			detail = status.Detail
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: detail})
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Summarize joins failed results into a single error message.
func Summarize(failed []Result) error {
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
}
