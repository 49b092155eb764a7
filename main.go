// meshbatch - batch STL export for solid-body designs.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/jeranaias/meshbatch/internal/addin"
	"github.com/jeranaias/meshbatch/internal/cli"
	"github.com/jeranaias/meshbatch/internal/config"
	"github.com/jeranaias/meshbatch/internal/export"
	"github.com/jeranaias/meshbatch/internal/history"
	"github.com/jeranaias/meshbatch/internal/host"
	"github.com/jeranaias/meshbatch/internal/session"
	"github.com/jeranaias/meshbatch/internal/settings"
	"github.com/jeranaias/meshbatch/internal/ui/dialog"
	"github.com/jeranaias/meshbatch/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	switch cmd {
	case cli.CmdDialog:
		if err := runDialog(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdExport:
		if err := runExport(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdHistory:
		if err := runHistory(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdConfig:
		if err := runConfig(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		cfg = config.Default()
	}
	return cfg
}

// loadDesign opens the design named by the CLI, then the config, falling
// back to a small built-in demo design. The second return is the file path
// when a file was loaded.
func loadDesign(args cli.Args, cfg *config.Config) (host.Design, string, error) {
	path := args.Design
	if path == "" {
		path = cfg.DesignFile
	}
	if path == "" {
		return demoDesign(), "", nil
	}
	design, err := host.LoadDesignFile(path)
	if err != nil {
		return nil, "", err
	}
	return design, path, nil
}

// demoDesign is the fixture shown when no design file is configured.
func demoDesign() *host.MemoryDesign {
	tris := []host.Triangle{
		{Vertices: [3]host.Vec3{{0, 0, 0}, {10, 0, 0}, {0, 10, 0}}},
		{Vertices: [3]host.Vec3{{0, 0, 0}, {0, 10, 0}, {0, 0, 10}}},
		{Vertices: [3]host.Vec3{{0, 0, 0}, {0, 0, 10}, {10, 0, 0}}},
		{Vertices: [3]host.Vec3{{10, 0, 0}, {0, 0, 10}, {0, 10, 0}}},
	}
	return host.NewMemoryDesign("Demo Design",
		host.NewMemoryBody("Part", tris),
		host.NewMemoryBody("Part", tris),
		host.NewMemoryBody("Bracket", tris),
	)
}

// openHistory returns a record callback backed by the history database, or
// nil when history is disabled. The returned closer may be nil.
func openHistory(cfg *config.Config, designName string) (func(export.Summary), func()) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	path := cfg.History.Path
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
			return nil, nil
		}
	}
	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
		return nil, nil
	}
	record := func(sum export.Summary) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := store.Record(ctx, designName, sum); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not record batch: %v\n", err)
			return
		}
		if err := store.Prune(ctx, cfg.History.Keep); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not prune history: %v\n", err)
		}
	}
	return record, func() { store.Close() }
}

// =============================================================================
// DIALOG
// =============================================================================

func runDialog(args cli.Args) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the dialog needs a terminal; use 'meshbatch export' for scripting")
	}

	cfg := loadConfig()
	design, designPath, err := loadDesign(args, cfg)
	if err != nil {
		return err
	}

	store := settings.NewStore()
	record, closeHistory := openHistory(cfg, design.Name())
	if closeHistory != nil {
		defer closeHistory()
	}

	if cfg.UI.Theme == "light" {
		lipgloss.SetHasDarkBackground(false)
	}

	opts := dialog.Options{
		Design:   design,
		Exporter: &host.MemoryExporter{},
		Settings: store,
		Theme:    styles.NewTheme(),
		Quality:  host.ParseQuality(cfg.DefaultQuality),
		Compact:  cfg.UI.CompactMode,
		Record:   record,
	}

	if cfg.WatchDesign && designPath != "" {
		watcher, err := host.NewDesignWatcher(designPath, 500*time.Millisecond)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: design watching disabled: %v\n", err)
		} else if err := watcher.Watch(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: design watching disabled: %v\n", err)
		} else {
			defer watcher.Close()
			opts.Watcher = watcher
			opts.Reload = func() (host.Design, error) {
				return host.LoadDesignFile(designPath)
			}
		}
	}

	// The dialog runs as a host command: register it on the toolbar, fire
	// it once, and unregister on the way out.
	toolbar := host.NewMemoryToolbar()
	controller := addin.New(toolbar)
	err = controller.Start(func() error {
		program := tea.NewProgram(dialog.New(opts), tea.WithAltScreen())
		_, err := program.Run()
		return err
	})
	if err != nil {
		return err
	}
	defer controller.Stop()

	cmd := toolbar.Command(addin.CommandID)
	return cmd.OnActivate()
}

// =============================================================================
// HEADLESS EXPORT
// =============================================================================

func runExport(args cli.Args) error {
	cfg := loadConfig()
	design, _, err := loadDesign(args, cfg)
	if err != nil {
		return err
	}

	store := settings.NewStore()
	outputDir := args.OutputDir
	if outputDir == "" {
		outputDir = store.Get(settings.KeyOutputPath, settings.DefaultDownloadDir())
	}

	quality := host.ParseQuality(cfg.DefaultQuality)
	if args.Quality != "" {
		quality = host.ParseQuality(args.Quality)
	}

	sess := session.New(design, outputDir)
	sess.SetQuality(quality)
	if args.SelectAll || len(args.Bodies) == 0 {
		sess.SetSelectAll(true)
	} else {
		wanted := make(map[string]bool, len(args.Bodies))
		for _, name := range args.Bodies {
			wanted[name] = true
		}
		var pick []host.Body
		for _, b := range design.Bodies() {
			if wanted[b.Name()] {
				pick = append(pick, b)
			}
		}
		sess.SetSelection(pick)
	}

	// Apply --name overrides by body display name.
	fields := sess.NameFields()
	for i, f := range fields {
		if override, ok := args.Names[f.Label]; ok {
			sess.EditName(i, override)
		}
	}

	if !sess.Valid() {
		return fmt.Errorf("nothing to export: no matching visible bodies")
	}

	snap := sess.Snapshot()
	if err := os.MkdirAll(snap.OutputDir, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}
	store.Save(map[string]string{settings.KeyOutputPath: snap.OutputDir})

	jobs := export.BuildJobs(snap.Bodies, snap.Names, snap.OutputDir)

	var progress export.ProgressFunc
	if !args.Quiet {
		progress = func(done, total int) {
			fmt.Printf("\rExporting %d/%d", done, total)
			if done == total {
				fmt.Println()
			}
		}
	}

	runner := export.Runner{Exporter: &host.MemoryExporter{}}
	summary, err := runner.Run(context.Background(), jobs, snap.Quality, progress)
	if err != nil {
		return err
	}

	if record, closeHistory := openHistory(cfg, design.Name()); record != nil {
		record(summary)
		closeHistory()
	}

	fmt.Println(summary.Format())
	if len(summary.Errors) > 0 {
		os.Exit(1)
	}
	return nil
}

// =============================================================================
// HISTORY
// =============================================================================

func runHistory(args cli.Args) error {
	cfg := loadConfig()
	path := cfg.History.Path
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			return err
		}
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if args.Subcommand == "show" {
		if args.ConfigKey == "" {
			return fmt.Errorf("usage: meshbatch history show <id>")
		}
		batch, err := store.Get(ctx, args.ConfigKey)
		if err != nil {
			return err
		}
		printBatch(*batch)
		for _, job := range batch.Jobs {
			if job.Error != "" {
				fmt.Printf("  ✗ %-24s %s\n", job.BodyName, job.Error)
			} else {
				fmt.Printf("  ✓ %s\n", job.Path)
			}
		}
		return nil
	}

	batches, err := store.List(ctx, args.Limit)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		fmt.Println("No export batches recorded yet.")
		return nil
	}
	for _, b := range batches {
		printBatch(b)
	}
	return nil
}

func printBatch(b history.Batch) {
	status := fmt.Sprintf("%d exported", b.Exported)
	if b.Failed > 0 {
		status += fmt.Sprintf(", %d failed", b.Failed)
	}
	if b.Cancelled {
		status += ", cancelled"
	}
	fmt.Printf("%s  %s  %-20s %-8s %s -> %s\n",
		b.ID[:8],
		b.CreatedAt.Format("2006-01-02 15:04"),
		b.Design,
		b.Quality.String(),
		status,
		b.OutputDir,
	)
}

// =============================================================================
// CONFIG
// =============================================================================

func runConfig(args cli.Args) error {
	cfg := loadConfig()

	switch args.Subcommand {
	case "get":
		if args.ConfigKey == "" {
			return fmt.Errorf("usage: meshbatch config get <key>")
		}
		v, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return fmt.Errorf("usage: meshbatch config set <key> <value>")
		}
		if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args.ConfigKey, args.ConfigVal)
		return nil

	case "list", "":
		for _, key := range config.Keys() {
			v, err := cfg.Get(key)
			if err != nil {
				continue
			}
			fmt.Printf("%-18s = %v\n", key, v)
		}
		return nil

	default:
		return fmt.Errorf("unknown config subcommand: %s", args.Subcommand)
	}
}
