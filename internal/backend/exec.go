package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/gcdevkit/devkit/internal/output"
	"github.com/gcdevkit/devkit/internal/target"
)

// Exec is a BuildModule that runs an external program. The job is written
// to the program's stdin as JSON and summarized in DEVKIT_* environment
// variables.
type Exec struct {
	// Target is the build target id.
	Target string

	// Dir is the directory of the module that declared the target.
	Dir string

	Spec TargetSpec

	// Stdout and Stderr receive the program output. nil means os.Stdout
	// and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

var (
	_ target.BuildModule  = (*Exec)(nil)
	_ target.OptionSchema = (*Exec)(nil)
)

// Options returns a fresh flag set for the target's declared options, or nil
// when it declares none.
func (e *Exec) Options() *pflag.FlagSet {
	if len(e.Spec.Options) == 0 {
		return nil
	}
	fs, err := newFlagSet(e.Spec.Options)
	if err != nil {
		output.Debug("ignoring invalid target options", "target", e.Target, "error", err)
		return nil
	}
	return fs
}

// Build starts the declared tools, prepares the output directory and runs
// the build program to completion.
func (e *Exec) Build(ctx context.Context, job *target.Job) error {
	if err := e.Spec.Validate(); err != nil {
		return fmt.Errorf("target %s: %w", e.Target, err)
	}

	for _, t := range e.Spec.Tools {
		if job.Tools == nil {
			return fmt.Errorf("target %s needs tool %q but no tool pool is available", e.Target, t.Name)
		}
		if err := job.Tools.Ensure(ctx, t.Name, t.Command, e.Dir); err != nil {
			return fmt.Errorf("ensuring tool %q: %w", t.Name, err)
		}
	}

	if job.OutputDir != "" {
		if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding job: %w", err)
	}

	program := e.program()
	cmd := exec.CommandContext(ctx, program, e.Spec.Command[1:]...)
	cmd.Dir = job.Request.AppPath
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(os.Environ(), e.env(job)...)

	output.TargetLogger(e.Target).Debug("running build program", "command", program, "dir", cmd.Dir)

	if !e.Spec.Quiet {
		cmd.Stdout = e.stdout()
		cmd.Stderr = e.stderr()
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(program), err)
		}
		return nil
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err = output.RunWithSpinner(ctx, cmd.Run, output.WithTitle("Building "+e.Target))
	if err != nil {
		_, _ = e.stderr().Write(buf.Bytes())
		return fmt.Errorf("%s: %w", filepath.Base(program), err)
	}
	return nil
}

func (e *Exec) program() string {
	name := e.Spec.Command[0]
	if filepath.IsAbs(name) || !strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(e.Dir, name)
}

func (e *Exec) env(job *target.Job) []string {
	req := job.Request
	env := []string{
		"DEVKIT_BUILD_ID=" + req.ID,
		"DEVKIT_TARGET=" + req.Target,
		"DEVKIT_APP_PATH=" + req.AppPath,
		"DEVKIT_APP_ID=" + job.AppID,
		"DEVKIT_SHORT_NAME=" + job.ShortName,
		"DEVKIT_TITLE=" + job.Title,
		"DEVKIT_VERSION=" + job.Version,
		"DEVKIT_OUTPUT=" + job.OutputDir,
		"DEVKIT_MODULE_DIR=" + e.Dir,
		"DEVKIT_SCHEME=" + req.Options.Scheme,
		"DEVKIT_SERVER=" + req.Options.Server,
		"DEVKIT_LOCAL_SERVER_URL=" + req.Options.LocalServerURL,
		"DEVKIT_DEBUG=" + strconv.FormatBool(req.Options.Debug),
		"DEVKIT_SIMULATED=" + strconv.FormatBool(req.Options.Simulated),
	}

	for _, name := range req.Values.Names() {
		env = append(env, "DEVKIT_OPT_"+envName(name)+"="+req.Values[name])
	}

	keys := make([]string, 0, len(e.Spec.Env))
	for k := range e.Spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+os.Expand(e.Spec.Env[k], func(v string) string {
			if v == "MODULE_DIR" {
				return e.Dir
			}
			return os.Getenv(v)
		}))
	}
	return env
}

// envName upper-cases name and replaces anything that is not a letter or
// digit with an underscore.
func envName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
}

func (e *Exec) stdout() io.Writer {
	if e.Stdout != nil {
		return e.Stdout
	}
	return os.Stdout
}

func (e *Exec) stderr() io.Writer {
	if e.Stderr != nil {
		return e.Stderr
	}
	return os.Stderr
}
