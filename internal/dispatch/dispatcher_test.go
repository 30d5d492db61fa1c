package dispatch

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/gcdevkit/devkit/internal/errors"
	"github.com/gcdevkit/devkit/internal/options"
	"github.com/gcdevkit/devkit/internal/target"
)

type harness struct {
	d       *Dispatcher
	builder *fakeBuilder
	tools   *fakeStopper
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	loads   []string
}

func newHarness(a target.App, loadErr error) *harness {
	h := &harness{
		builder: &fakeBuilder{},
		tools:   &fakeStopper{},
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
	}
	h.d = &Dispatcher{
		Load: func(_ context.Context, path string) (target.App, error) {
			h.loads = append(h.loads, path)
			if loadErr != nil {
				return nil, loadErr
			}
			return a, nil
		},
		Builder: h.builder,
		Tools:   h.tools,
		Out:     h.out,
		Err:     h.errOut,
		NewID:   func() string { return "build-1" },
	}
	return h
}

func invocation(t *testing.T, raw ...string) Invocation {
	t.Helper()
	opts, args, err := options.Parse(raw)
	require.NoError(t, err)
	return Invocation{Options: opts, Args: args, Raw: raw}
}

func TestRun_ExplicitTargetWinsOverPositional(t *testing.T) {
	h := newHarness(gameApp(), nil)

	require.NoError(t, h.d.Run(context.Background(), invocation(t, "--target=ios", "android")))

	require.Len(t, h.builder.requests, 1)
	req := h.builder.requests[0]
	assert.Equal(t, "ios", req.Target)
	assert.Equal(t, []string{"android"}, req.Args)
}

func TestRun_PositionalTarget(t *testing.T) {
	h := newHarness(gameApp(), nil)

	require.NoError(t, h.d.Run(context.Background(), invocation(t, "android")))

	require.Len(t, h.builder.requests, 1)
	req := h.builder.requests[0]
	assert.Equal(t, "android", req.Target)
	assert.Empty(t, req.Args)
	assert.Equal(t, "build-1", req.ID)

	wantPath, err := filepath.Abs(".")
	require.NoError(t, err)
	assert.Equal(t, wantPath, req.AppPath)
}

func TestRun_NoTargetShowsHelp(t *testing.T) {
	h := newHarness(gameApp(), nil)

	require.NoError(t, h.d.Run(context.Background(), invocation(t)))

	assert.Empty(t, h.builder.requests)
	assert.Zero(t, h.tools.calls, "help path never starts or stops tools")
	assert.Equal(t, []string{"."}, h.loads)
	assert.Contains(t, h.out.String(), "Build Targets:\n\n")
	assert.Contains(t, h.out.String(), "  browser-desktop:")
	assert.Contains(t, h.out.String(), "  ios:")
}

func TestRun_HelpFlagShowsTargetHelp(t *testing.T) {
	h := newHarness(gameApp(), nil)

	require.NoError(t, h.d.Run(context.Background(), invocation(t, "ios", "--help")))

	assert.Empty(t, h.builder.requests)
	assert.Contains(t, h.out.String(), "ios:\n")
	assert.Contains(t, h.out.String(), "--ipa")
}

func TestRun_InvalidTargetShowsGuidance(t *testing.T) {
	h := newHarness(gameApp(), nil)

	require.NoError(t, h.d.Run(context.Background(), invocation(t, "windows")))

	assert.Empty(t, h.builder.requests)
	assert.Zero(t, h.tools.calls)
	assert.Equal(t,
		"The build target windows is not valid (it may not be installed)\n"+
			"Valid targets are android, browser-desktop, ios\n",
		h.out.String())
}

func TestRun_StopsToolsExactlyOnce(t *testing.T) {
	tests := []struct {
		name     string
		buildErr error
		stopErr  error
		wantErr  error
		wantCode int
	}{
		{name: "success", wantCode: oerrors.ExitSuccess},
		{name: "build failure", buildErr: errors.New("xcodebuild failed"), wantErr: oerrors.ErrBuild, wantCode: oerrors.ExitBuildError},
		{name: "stop failure after success", stopErr: errors.New("closure hung"), wantCode: oerrors.ExitGeneralError},
		{name: "stop failure after build failure", buildErr: errors.New("boom"), stopErr: errors.New("hung"), wantErr: oerrors.ErrBuild, wantCode: oerrors.ExitBuildError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(gameApp(), nil)
			h.builder.err = tt.buildErr
			h.tools.err = tt.stopErr

			err := h.d.Run(context.Background(), invocation(t, "ios"))

			assert.Equal(t, 1, h.tools.calls)
			assert.Equal(t, tt.wantCode, oerrors.ExitCodeFromError(err))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.buildErr != nil {
				assert.ErrorIs(t, err, tt.buildErr, "build error is propagated")
				if tt.stopErr != nil {
					assert.NotErrorIs(t, err, tt.stopErr)
				}
			}
			if tt.buildErr == nil && tt.stopErr != nil {
				assert.ErrorIs(t, err, tt.stopErr)
			}
		})
	}
}

func TestRun_StopsToolsOnInvalidTargetFlag(t *testing.T) {
	h := newHarness(gameApp(), nil)

	err := h.d.Run(context.Background(), invocation(t, "ios", "--ipa=maybe"))

	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrValidation)
	assert.Empty(t, h.builder.requests)
	assert.Equal(t, 1, h.tools.calls)
}

func TestRun_MergedOptionValues(t *testing.T) {
	h := newHarness(gameApp(), nil)
	globals := pflag.NewFlagSet("root", pflag.ContinueOnError)
	var verbose bool
	globals.BoolVarP(&verbose, "verbose", "v", false, "")
	h.d.Globals = []*pflag.FlagSet{globals}

	raw := []string{"ios", "--ipa", "--scheme", "release", "-v", "--unknown=1"}
	opts, args, err := options.Parse(raw, globals)
	require.NoError(t, err)

	require.NoError(t, h.d.Run(context.Background(), Invocation{Options: opts, Args: args, Raw: raw}))

	req := h.builder.requests[0]
	assert.Equal(t, "true", req.Values["ipa"])
	assert.Equal(t, "release", req.Values["scheme"])
	assert.Equal(t, ".", req.Values["app"])
	assert.NotContains(t, req.Values, "verbose")
	assert.NotContains(t, req.Values, "help")
	assert.Equal(t, options.SchemeRelease, req.Options.Scheme)
}

func TestRun_AppLoadFailure(t *testing.T) {
	loadErr := oerrors.NewNotFoundError("no manifest.json found", "/tmp/app/manifest.json", "")
	h := newHarness(nil, loadErr)

	err := h.d.Run(context.Background(), invocation(t, "ios"))

	require.Error(t, err)
	var exitErr *oerrors.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.True(t, exitErr.Printed)
	assert.Equal(t, oerrors.ExitGeneralError, exitErr.Code)
	assert.ErrorIs(t, err, oerrors.ErrAppLoad)
	assert.Contains(t, h.errOut.String(), "no manifest.json found")
	assert.Empty(t, h.builder.requests)
	assert.Zero(t, h.tools.calls)
}

func TestShowHelp(t *testing.T) {
	h := newHarness(gameApp(), nil)
	inv := invocation(t, "ios", "--ipa")

	require.NoError(t, h.d.ShowHelp(context.Background(), inv))

	assert.Empty(t, h.builder.requests)
	assert.False(t, inv.Options.Help, "the original invocation is unchanged")
	assert.Contains(t, h.out.String(), "ios:\n")
}

func TestInvocation_WithHelp(t *testing.T) {
	inv := Invocation{
		Options: options.Options{Target: "ios"},
		Args:    []string{"a"},
		Raw:     []string{"--target", "ios", "a"},
	}

	help := inv.WithHelp()
	help.Args[0] = "changed"
	help.Raw[0] = "changed"

	assert.True(t, help.Options.Help)
	assert.False(t, inv.Options.Help)
	assert.Equal(t, []string{"a"}, inv.Args)
	assert.Equal(t, "--target", inv.Raw[0])
}

func TestSelectTarget(t *testing.T) {
	tests := []struct {
		name     string
		inv      Invocation
		wantID   string
		wantArgs []string
	}{
		{"flag", Invocation{Options: options.Options{Target: "ios"}, Args: []string{"android"}}, "ios", []string{"android"}},
		{"positional", Invocation{Args: []string{"android", "extra"}}, "android", []string{"extra"}},
		{"none", Invocation{}, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, args := selectTarget(tt.inv)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestRun_ValidateOnlyOnDispatch(t *testing.T) {
	invalid := errors.New("--server must be one of [local inherit production]")

	t.Run("help skips validation", func(t *testing.T) {
		h := newHarness(gameApp(), nil)
		calls := 0
		h.d.Validate = func(options.Options) error {
			calls++
			return invalid
		}

		require.NoError(t, h.d.Run(context.Background(), invocation(t, "--help")))
		require.NoError(t, h.d.Run(context.Background(), invocation(t)))
		require.NoError(t, h.d.Run(context.Background(), invocation(t, "windows")))

		assert.Zero(t, calls)
		assert.Contains(t, h.out.String(), "Build Targets:")
	})

	t.Run("dispatch rejects and still stops tools", func(t *testing.T) {
		h := newHarness(gameApp(), nil)
		h.d.Validate = func(options.Options) error { return invalid }

		err := h.d.Run(context.Background(), invocation(t, "ios"))

		assert.ErrorIs(t, err, invalid)
		assert.Empty(t, h.builder.requests)
		assert.Equal(t, 1, h.tools.calls)
	})
}
