// Package tools manages the auxiliary helper processes (compile servers,
// asset daemons) that build backends keep alive across a build.
package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/gcdevkit/devkit/internal/output"
)

// ErrStopped is returned by Ensure once the pool has been stopped.
var ErrStopped = errors.New("tool pool stopped")

// Pool starts helper processes on demand and stops all of them at once.
// The zero value is not usable; call NewPool.
type Pool struct {
	stopTimeout time.Duration

	mu      sync.Mutex
	procs   map[string]*process
	stopped bool

	stopOnce sync.Once
	stopErr  error
}

type process struct {
	name string
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// NewPool creates a pool. stopTimeout is how long a process gets to exit
// after SIGTERM before it is killed.
func NewPool(stopTimeout time.Duration) *Pool {
	return &Pool{
		stopTimeout: stopTimeout,
		procs:       make(map[string]*process),
	}
}

// Ensure starts the tool called name unless a live process with that name
// is already running. Tools are keyed by name only: the first command wins.
func (p *Pool) Ensure(ctx context.Context, name string, command []string, dir string) error {
	if len(command) == 0 {
		return fmt.Errorf("tool %q: empty command", name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrStopped
	}
	if proc, ok := p.procs[name]; ok && !proc.exited() {
		return nil
	}

	toolLog := output.ToolLogger(name)
	w := toolLog.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}).Writer()

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Stdout = w
	cmd.Stderr = w
	cmd.WaitDelay = time.Second
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting tool %q: %w", name, err)
	}

	proc := &process{name: name, cmd: cmd, done: make(chan struct{})}
	go func() {
		proc.err = cmd.Wait()
		close(proc.done)
	}()
	p.procs[name] = proc

	toolLog.Debug("started", "pid", cmd.Process.Pid, "command", command)
	return nil
}

// Running returns the names of live tools, sorted.
func (p *Pool) Running() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.procs))
	for name, proc := range p.procs {
		if !proc.exited() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Stop terminates every tool and waits for them to exit. Only the first call
// does any work; later calls return the same result.
func (p *Pool) Stop() error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		procs := make([]*process, 0, len(p.procs))
		for _, proc := range p.procs {
			procs = append(procs, proc)
		}
		p.mu.Unlock()

		var g errgroup.Group
		for _, proc := range procs {
			g.Go(func() error {
				return p.stopProcess(proc)
			})
		}
		p.stopErr = g.Wait()
	})
	return p.stopErr
}

func (p *Pool) stopProcess(proc *process) error {
	if proc.exited() {
		return nil
	}

	toolLog := output.ToolLogger(proc.name)
	if err := proc.cmd.Process.Signal(syscall.SIGTERM); err != nil && !proc.exited() {
		toolLog.Debug("SIGTERM failed, killing", "error", err)
		return p.kill(proc)
	}

	timer := time.NewTimer(p.stopTimeout)
	defer timer.Stop()

	select {
	case <-proc.done:
		toolLog.Debug(output.StatusStopped)
		return nil
	case <-timer.C:
		toolLog.Warn("did not exit after SIGTERM, killing", "timeout", p.stopTimeout)
		return p.kill(proc)
	}
}

func (p *Pool) kill(proc *process) error {
	if err := proc.cmd.Process.Kill(); err != nil && !proc.exited() {
		return fmt.Errorf("killing tool %q: %w", proc.name, err)
	}
	<-proc.done
	return nil
}
