package process

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	gops "github.com/shirou/gopsutil/v4/process"

	"github.com/voxlaunch/voxlaunch/internal/logging"
)

// execRunner runs automation commands through os/exec with a hard timeout so
// a wedged osascript cannot stall an utterance worker.
type execRunner struct {
	timeout time.Duration
}

// NewExecRunner returns the production Runner.
func NewExecRunner() Runner {
	return &execRunner{timeout: 10 * time.Second}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w (%s)", name, err, string(out))
	}
	return nil
}

// psLister enumerates live processes via gopsutil.
type psLister struct{}

// NewProcessLister returns the production Lister.
func NewProcessLister() Lister {
	return &psLister{}
}

func (*psLister) List(ctx context.Context) ([]Proc, error) {
	procs, err := gops.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate processes: %w", err)
	}

	out := make([]Proc, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Process exited mid-enumeration or access denied.
			continue
		}
		out = append(out, Proc{PID: p.Pid, Name: name})
	}
	return out, nil
}

func (*psLister) Terminate(ctx context.Context, pid int32) error {
	p, err := gops.NewProcessWithContext(ctx, pid)
	if err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}
	if err := p.TerminateWithContext(ctx); err != nil {
		return fmt.Errorf("failed to terminate %d: %w", pid, err)
	}
	return nil
}

// NewHostController wires a controller against the real host.
func NewHostController(logger *logging.Logger) *Controller {
	return NewController(NewExecRunner(), NewProcessLister(), logger)
}
