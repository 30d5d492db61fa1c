package target

import (
	"context"

	"github.com/spf13/pflag"
)

type fakeApp struct {
	modules []Module
}

func (a *fakeApp) Modules() []Module { return a.modules }

type fakeModule struct {
	name    string
	order   []string
	targets map[string]BuildModule
	loads   map[string]int
}

func newFakeModule(name string, ids ...string) *fakeModule {
	m := &fakeModule{name: name, targets: make(map[string]BuildModule), loads: make(map[string]int)}
	for _, id := range ids {
		m.order = append(m.order, id)
		m.targets[id] = &fakeBuildModule{module: name, target: id}
	}
	return m
}

func (m *fakeModule) Name() string           { return m.name }
func (m *fakeModule) BuildTargets() []string { return m.order }

func (m *fakeModule) LoadBuildTarget(id string) (BuildModule, bool) {
	m.loads[id]++
	bm, ok := m.targets[id]
	return bm, ok
}

type fakeBuildModule struct {
	module string
	target string
	schema *pflag.FlagSet
}

func (b *fakeBuildModule) Build(context.Context, *Job) error { return nil }

type schemaBuildModule struct {
	fakeBuildModule
}

func (b *schemaBuildModule) Options() *pflag.FlagSet { return b.schema }
