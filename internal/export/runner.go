// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/meshbatch/internal/host"
)

// ErrNoJobs is returned when Run is invoked with an empty batch.
var ErrNoJobs = errors.New("no bodies selected")

// JobError records one failed export.
type JobError struct {
	BodyName string
	Message  string
}

func (e JobError) Error() string {
	return fmt.Sprintf("%s: %s", e.BodyName, e.Message)
}

// WrittenFile records one successful export.
type WrittenFile struct {
	BodyName string
	Path     string
}

// Summary is the consolidated result of one batch.
type Summary struct {
	Exported    int
	Overwritten int
	Written     []WrittenFile
	Errors      []JobError
	Cancelled   bool
	OutputDir   string
	Quality     host.Quality
}

// Format renders the summary as the user-facing message.
func (s Summary) Format() string {
	lines := []string{fmt.Sprintf("Exported: %d", s.Exported)}
	if s.Overwritten > 0 {
		lines = append(lines, fmt.Sprintf("Overwritten: %d", s.Overwritten))
	}
	if len(s.Errors) > 0 {
		lines = append(lines, fmt.Sprintf("Errors:   %d", len(s.Errors)))
		for _, e := range s.Errors {
			lines = append(lines, fmt.Sprintf("  • %s", e.Error()))
		}
	}
	if s.Cancelled {
		lines = append(lines, "", "Export cancelled by user.")
	}
	lines = append(lines, "", fmt.Sprintf("Location: %s", s.OutputDir))
	return strings.Join(lines, "\n")
}

// ProgressFunc is called after each job with the number of jobs finished so
// far (completed or failed) and the batch total.
type ProgressFunc func(done, total int)

// Runner executes batches against a host mesh exporter.
type Runner struct {
	Exporter host.MeshExporter
}

// Run executes the batch.
//
// Phase 1 deletes every destination that already exists as a file, counting
// successful deletions as overwrites. Deletion failures are not fatal: the
// export of that path may still succeed, or fail and be reported as a job
// error - never silently.
//
// Phase 2 exports jobs in order. Cancellation is polled before each job;
// once ctx is done the remaining jobs are skipped with no per-job record
// and no rollback of files already written. A failed export is recorded
// against the body's display name and the batch continues.
func (r Runner) Run(ctx context.Context, jobs []Job, quality host.Quality, progress ProgressFunc) (Summary, error) {
	if len(jobs) == 0 {
		return Summary{}, ErrNoJobs
	}

	summary := Summary{Quality: quality, OutputDir: filepath.Dir(jobs[0].Path)}

	// Phase 1: remove existing files (always overwrite).
	for _, job := range jobs {
		if info, err := os.Stat(job.Path); err == nil && !info.IsDir() {
			if err := os.Remove(job.Path); err == nil {
				summary.Overwritten++
			}
		}
	}

	// Phase 2: export with progress and polled cancellation.
	total := len(jobs)
	for i, job := range jobs {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		if err := r.Exporter.ExportSTL(ctx, job.Body, job.Path, quality); err != nil {
			summary.Errors = append(summary.Errors, JobError{
				BodyName: job.Body.Name(),
				Message:  err.Error(),
			})
		} else {
			summary.Exported++
			summary.Written = append(summary.Written, WrittenFile{
				BodyName: job.Body.Name(),
				Path:     job.Path,
			})
		}

		if progress != nil {
			progress(i+1, total)
		}
	}

	return summary, nil
}
