// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and usage text for meshbatch.
package cli

import (
	"fmt"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdDialog Command = iota // interactive export dialog (default)
	CmdExport                // headless batch export
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Design string // design fixture path (--design)
	Quiet  bool

	// Export-specific
	OutputDir string            // --out
	Quality   string            // --quality High|Medium|Low
	SelectAll bool              // --all
	Bodies    []string          // --body NAME (repeatable)
	Names     map[string]string // --name BODY=FILENAME (repeatable)

	// History-specific
	Limit int // --limit N

	// Config-specific
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `meshbatch - batch STL export for solid-body designs

Meshbatch exports selected solid bodies of a design as individual STL
files in one pass: pick bodies, pick a quality, pick a folder.

Usage:
  meshbatch                    Open the export dialog (default)
  meshbatch export             Headless batch export
    --design FILE              Design file to load
    --out DIR                  Output folder (default: last used, then ~/Downloads)
    --quality LEVEL            Mesh quality: High, Medium, Low (default: High)
    --all                      Export every visible body
    --body NAME                Export a specific body (repeatable)
    --name BODY=FILENAME       Override the file name for a body (repeatable)
  meshbatch history            Show past export batches
    --limit N                  Show the N most recent batches (default: 20)
    show <id>                  Show one batch with its per-file outcomes
  meshbatch config             Configuration
    list                       Show all configuration values
    get <key>                  Show one value
    set <key> <value>          Change a value
  meshbatch version            Show version information
  meshbatch help               Show this help

Global Flags:
  --design FILE   Design file to load (overrides config)
  -q, --quiet     Minimal output

Examples:
  meshbatch                                   Open the dialog
  meshbatch export --all --out ./stl          Export everything to ./stl
  meshbatch export --body "Oil Pan" --quality Low
  meshbatch export --body Part --name "Part=bracket_v2"
  meshbatch history --limit 5                 Last five batches
  meshbatch config set default_quality Medium

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("meshbatch version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments (without the program name) and
// returns the command and args.
func Parse(argv []string) (Command, Args) {
	args := Args{
		Limit: 20,
		Names: make(map[string]string),
	}

	remaining := parseGlobalFlags(argv, &args)

	// No command defaults to the dialog.
	if len(remaining) == 0 {
		return CmdDialog, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "dialog", "ui":
		return CmdDialog, args

	case "export":
		parseExportArgs(&args, remaining)
		return CmdExport, args

	case "history", "hist":
		parseHistoryArgs(&args, remaining)
		return CmdHistory, args

	case "config":
		parseConfigArgs(&args, remaining)
		return CmdConfig, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		// Unknown commands fall through to help so typos are not silent.
		return CmdHelp, args
	}
}

// parseGlobalFlags strips global flags from argv, filling args, and returns
// what remains.
func parseGlobalFlags(argv []string, args *Args) []string {
	var remaining []string
	i := 0
	for i < len(argv) {
		switch argv[i] {
		case "--design":
			if i+1 < len(argv) {
				args.Design = argv[i+1]
				i += 2
				continue
			}
			i++
		case "-q", "--quiet":
			args.Quiet = true
			i++
		default:
			remaining = append(remaining, argv[i])
			i++
		}
	}
	return remaining
}

func parseExportArgs(args *Args, argv []string) {
	i := 0
	for i < len(argv) {
		switch argv[i] {
		case "--out", "-o":
			if i+1 < len(argv) {
				args.OutputDir = argv[i+1]
				i += 2
				continue
			}
		case "--quality":
			if i+1 < len(argv) {
				args.Quality = argv[i+1]
				i += 2
				continue
			}
		case "--all":
			args.SelectAll = true
		case "--body":
			if i+1 < len(argv) {
				args.Bodies = append(args.Bodies, argv[i+1])
				i += 2
				continue
			}
		case "--name":
			if i+1 < len(argv) {
				if body, name, ok := strings.Cut(argv[i+1], "="); ok {
					args.Names[body] = name
				}
				i += 2
				continue
			}
		}
		i++
	}
}

func parseHistoryArgs(args *Args, argv []string) {
	i := 0
	for i < len(argv) {
		switch argv[i] {
		case "show":
			args.Subcommand = "show"
			if i+1 < len(argv) {
				args.ConfigKey = argv[i+1]
				i += 2
				continue
			}
		case "--limit", "-n":
			if i+1 < len(argv) {
				fmt.Sscanf(argv[i+1], "%d", &args.Limit)
				i += 2
				continue
			}
		}
		i++
	}
}

func parseConfigArgs(args *Args, argv []string) {
	if len(argv) == 0 {
		args.Subcommand = "list"
		return
	}
	args.Subcommand = strings.ToLower(argv[0])
	if len(argv) > 1 {
		args.ConfigKey = argv[1]
	}
	if len(argv) > 2 {
		args.ConfigVal = strings.Join(argv[2:], " ")
	}
}
