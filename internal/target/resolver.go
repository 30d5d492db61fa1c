package target

import "sort"

// ListTargets loads the backend of every target declared by every module.
// When several modules declare the same id the later module wins.
func ListTargets(app App) map[string]BuildModule {
	targets := make(map[string]BuildModule)
	for _, m := range app.Modules() {
		for _, id := range m.BuildTargets() {
			if bm, ok := m.LoadBuildTarget(id); ok {
				targets[id] = bm
			}
		}
	}
	return targets
}

// ResolveTarget returns the backend for id from the first module that loads
// one. Callers may not assume it matches the entry ListTargets reports for id.
func ResolveTarget(app App, id string) (BuildModule, bool) {
	for _, m := range app.Modules() {
		if bm, ok := m.LoadBuildTarget(id); ok {
			return bm, true
		}
	}
	return nil, false
}

// TargetNames returns the ids of ListTargets, sorted.
func TargetNames(app App) []string {
	return sortedKeys(ListTargets(app))
}

func sortedKeys(m map[string]BuildModule) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
