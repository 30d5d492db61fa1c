package target

import (
	"fmt"
	"strings"
)

const (
	// indent is the unit every help line is indented by.
	indent = "  "

	noHelpNotice = "Sorry! No help is available for this build target"
)

// FormatHelp renders the help for id, or the summary of every available
// target when id is empty.
func FormatHelp(app App, id string) string {
	if id != "" {
		bm, ok := ResolveTarget(app, id)
		if !ok {
			return InvalidTargetMessage(id)
		}
		return targetHelp(id, bm)
	}

	targets := ListTargets(app)
	sections := make([]string, 0, len(targets))
	for _, name := range sortedKeys(targets) {
		sections = append(sections, indent+strings.TrimRight(targetHelp(name, targets[name]), "\n"))
	}
	return "Build Targets:\n\n" + strings.Join(sections, "\n\n")
}

// InvalidTargetMessage is the text shown for a target no module provides.
func InvalidTargetMessage(id string) string {
	return fmt.Sprintf("The build target %s is not valid (it may not be installed)", id)
}

// ValidTargetsMessage lists the valid target ids of app.
func ValidTargetsMessage(app App) string {
	names := TargetNames(app)
	if len(names) == 0 {
		return "No build targets are installed"
	}
	return "Valid targets are " + strings.Join(names, ", ")
}

func targetHelp(id string, bm BuildModule) string {
	fs := SchemaOf(bm)
	if fs == nil {
		return id + ":\n\n" + indent + noHelpNotice + "\n"
	}

	usage := strings.TrimPrefix(fs.FlagUsages(), "Options:")
	usage = strings.Trim(usage, "\n")

	lines := strings.Split(usage, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return id + ":\n" + strings.Join(lines, "\n")
}
