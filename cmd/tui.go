package main

import (
	"context"

	"github.com/desertthunder/spdl/internal/manifest"
	"github.com/desertthunder/spdl/internal/models"
	"github.com/desertthunder/spdl/internal/ui"
)

type wizardRequest struct {
	existing        *manifest.Manifest
	reason          string
	defaultLocation string
	convention      int
	lookup          ui.NameLookup
}

// wizardFunc builds a manifest interactively. Replaced in tests.
type wizardFunc func(ctx context.Context, req wizardRequest) (*manifest.Manifest, error)

// runWizard launches the bubbletea manifest wizard on the terminal.
func runWizard(ctx context.Context, req wizardRequest) (*manifest.Manifest, error) {
	w := ui.NewWizard(ctx, ui.WizardOpts{
		Existing:        req.existing,
		Convention:      models.Convention(req.convention),
		DefaultLocation: req.defaultLocation,
		Lookup:          req.lookup,
		Reason:          req.reason,
	})
	return ui.RunWizard(ctx, w)
}
