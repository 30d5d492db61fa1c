package dispatch

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/gcdevkit/devkit/internal/target"
)

type fakeApp struct {
	modules []target.Module
}

func (a *fakeApp) Modules() []target.Module { return a.modules }

type fakeModule struct {
	name    string
	targets map[string]target.BuildModule
	order   []string
}

func newFakeModule(name string, bms map[string]target.BuildModule, order ...string) *fakeModule {
	return &fakeModule{name: name, targets: bms, order: order}
}

func (m *fakeModule) Name() string           { return m.name }
func (m *fakeModule) BuildTargets() []string { return m.order }

func (m *fakeModule) LoadBuildTarget(id string) (target.BuildModule, bool) {
	bm, ok := m.targets[id]
	return bm, ok
}

type plainBuildModule struct{}

func (plainBuildModule) Build(context.Context, *target.Job) error { return nil }

type flagBuildModule struct {
	plainBuildModule
	flags func() *pflag.FlagSet
}

func (b flagBuildModule) Options() *pflag.FlagSet { return b.flags() }

type fakeBuilder struct {
	requests []*target.Request
	err      error
}

func (b *fakeBuilder) Build(_ context.Context, req *target.Request) error {
	b.requests = append(b.requests, req)
	return b.err
}

type fakeStopper struct {
	calls int
	err   error
}

func (s *fakeStopper) Stop() error {
	s.calls++
	return s.err
}

// gameApp has a native module (ios, android) and a browser module
// (browser-desktop). ios declares an --ipa flag.
func gameApp() *fakeApp {
	ios := flagBuildModule{flags: func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("ios", pflag.ContinueOnError)
		fs.Bool("ipa", false, "produce an ipa")
		return fs
	}}
	native := newFakeModule("native", map[string]target.BuildModule{
		"ios":     ios,
		"android": plainBuildModule{},
	}, "ios", "android")
	browser := newFakeModule("browser", map[string]target.BuildModule{
		"browser-desktop": plainBuildModule{},
	}, "browser-desktop")
	return &fakeApp{modules: []target.Module{native, browser}}
}
