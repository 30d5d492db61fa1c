// Package build provides the build entry point invoked by the dispatcher.
package build

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gcdevkit/devkit/internal/app"
	oerrors "github.com/gcdevkit/devkit/internal/errors"
	"github.com/gcdevkit/devkit/internal/options"
	"github.com/gcdevkit/devkit/internal/output"
	"github.com/gcdevkit/devkit/internal/target"
)

// AppLoader loads the app a request refers to.
type AppLoader interface {
	Load(ctx context.Context, path string) (*app.App, error)
}

// Runner reloads the app, resolves the requested target and runs its
// backend with a job derived from the request and the manifest.
type Runner struct {
	Loader AppLoader

	// Tools is handed to backends through the job. It may be nil when no
	// target needs helper processes.
	Tools target.Tools
}

// Build runs one build to completion.
func (r *Runner) Build(ctx context.Context, req *target.Request) error {
	a, err := r.Loader.Load(ctx, req.AppPath)
	if err != nil {
		return oerrors.WrapAppLoad(err, "loading app")
	}

	bm, ok := target.ResolveTarget(a, req.Target)
	if !ok {
		return oerrors.NewNotFoundError(
			target.InvalidTargetMessage(req.Target),
			a.Path,
			target.ValidTargetsMessage(a),
		)
	}

	job, err := NewJob(a, req)
	if err != nil {
		return err
	}
	job.Tools = r.Tools

	tlog := output.TargetLogger(req.Target)
	tlog.Info("building", "scheme", req.Options.Scheme, "output", job.OutputDir, "id", req.ID)

	if err := bm.Build(ctx, job); err != nil {
		tlog.Error(output.StatusFailed, "error", err)
		return oerrors.WrapBuild(err, "building "+req.Target)
	}

	output.Println(output.FormatTargetLine(req.Target, output.StatusBuilt))
	return nil
}

// NewJob derives the job for req from the loaded app: the version comes
// from --version or the manifest, the output directory from --output or
// <app>/build/<scheme>/<target> (simulated builds use "simulated" in place
// of the scheme).
func NewJob(a *app.App, req *target.Request) (*target.Job, error) {
	version := req.Options.Version
	if version == "" {
		version = a.Manifest.Version
	}

	outputDir := req.Options.Output
	if outputDir == "" {
		outputDir = filepath.Join(a.Path, "build", buildKind(req.Options), req.Target)
	}
	outputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output path: %w", err)
	}

	return &target.Job{
		Request:   req,
		AppID:     a.Manifest.AppID,
		ShortName: a.Manifest.ShortName,
		Title:     a.Manifest.Title,
		Version:   version,
		OutputDir: outputDir,
	}, nil
}

func buildKind(o options.Options) string {
	switch {
	case o.Simulated:
		return "simulated"
	case o.Scheme != "":
		return o.Scheme
	default:
		return options.SchemeDebug
	}
}
