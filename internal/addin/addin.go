// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package addin manages the command's lifecycle on the host toolbar:
// registration on start, cleanup of stale registrations left behind by a
// crashed prior run, and removal on stop.
package addin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jeranaias/meshbatch/internal/host"
)

// CommandID is the stable toolbar identifier. It never changes across
// versions so stale registrations from older runs can be found and removed.
const CommandID = "multiMeshExportCmd"

// CommandName is the toolbar display name.
const CommandName = "Multi Mesh Export"

// commandDescription is the toolbar tooltip.
const commandDescription = "Export selected bodies as STL files"

// ErrNotStarted is returned by Stop when the controller was never started.
var ErrNotStarted = errors.New("add-in not started")

// Controller owns the toolbar registration. The zero value is not usable;
// call New.
type Controller struct {
	toolbar host.Toolbar

	mu      sync.Mutex
	started bool
}

// New creates a controller bound to the given toolbar.
func New(toolbar host.Toolbar) *Controller {
	return &Controller{toolbar: toolbar}
}

// Start registers the export command, removing any stale registration with
// the same identifier first. onActivate runs each time the user invokes the
// command.
func (c *Controller) Start(onActivate func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return errors.New("add-in already started")
	}

	// A previous run that exited without cleanup leaves its registration
	// behind. Remove it before adding ours.
	if c.toolbar.Command(CommandID) != nil {
		c.toolbar.RemoveCommand(CommandID)
	}

	def := &host.CommandDefinition{
		ID:          CommandID,
		Name:        CommandName,
		Description: commandDescription,
		OnActivate:  onActivate,
	}
	if err := c.toolbar.AddCommand(def); err != nil {
		return fmt.Errorf("failed to register command: %w", err)
	}

	c.started = true
	return nil
}

// Stop unregisters the command and releases the activation handler.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return ErrNotStarted
	}

	c.toolbar.RemoveCommand(CommandID)
	c.started = false
	return nil
}

// Started reports whether the command is currently registered.
func (c *Controller) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}
