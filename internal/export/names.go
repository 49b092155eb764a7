// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/meshbatch/internal/host"
)

// Extension is the fixed mesh file extension for every job destination.
const Extension = ".stl"

// FallbackName substitutes for save names that sanitize to nothing.
const FallbackName = "body"

// illegalChars are the characters stripped from save names: illegal in
// common filesystem path segments on Windows and macOS.
const illegalChars = `\/:*?"<>|`

// SanitizeName strips characters that are illegal in file names and trims
// surrounding whitespace. An input that sanitizes to the empty string
// yields FallbackName.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if !strings.ContainsRune(illegalChars, r) {
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return FallbackName
	}
	return out
}

// Job is one unit of the batch: a body and the absolute destination path
// its mesh will be written to.
type Job struct {
	ID   string
	Body host.Body
	Path string
}

// BuildJobs computes the batch's destination paths. names holds the per-body
// save-name field values matched by position; a missing or empty entry falls
// back to the body's display name. Raw names occurring more than once in the
// batch get a 1-based occurrence index appended in parenthesized form, in
// body order, so the returned jobs always have pairwise distinct paths.
func BuildJobs(bodies []host.Body, names []string, outputDir string) []Job {
	rawNames := make([]string, len(bodies))
	for i, body := range bodies {
		raw := body.Name()
		if i < len(names) && names[i] != "" {
			raw = names[i]
		}
		rawNames[i] = SanitizeName(raw)
	}

	nameCount := make(map[string]int, len(rawNames))
	for _, n := range rawNames {
		nameCount[n]++
	}

	nameIdx := make(map[string]int, len(rawNames))
	jobs := make([]Job, 0, len(bodies))
	for i, body := range bodies {
		n := rawNames[i]
		nameIdx[n]++
		fname := n
		if nameCount[n] > 1 {
			fname = fmt.Sprintf("%s (%d)", n, nameIdx[n])
		}
		jobs = append(jobs, Job{
			ID:   uuid.New().String(),
			Body: body,
			Path: filepath.Join(outputDir, fname+Extension),
		})
	}
	return jobs
}
