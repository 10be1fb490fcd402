// Package process performs lifecycle actions against the host OS: launching,
// closing and focusing applications, and querying running state. Every
// operation returns a plain boolean; internal failures are logged and
// converted to false, never propagated.
package process

import (
	"context"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/voxlaunch/voxlaunch/internal/logging"
	"github.com/voxlaunch/voxlaunch/internal/types"
)

// Proc is one running process.
type Proc struct {
	PID  int32  `json:"pid"`
	Name string `json:"name"`
}

// Runner executes host automation commands. The controller only ever needs
// "run this command, tell me if it worked".
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// Lister enumerates and terminates live processes.
type Lister interface {
	List(ctx context.Context) ([]Proc, error)
	Terminate(ctx context.Context, pid int32) error
}

// Controller implements the lifecycle operations on top of a Runner and a
// Lister.
type Controller struct {
	runner Runner
	lister Lister
	logger *logging.Logger
}

// NewController creates a controller with the given capability
// implementations.
func NewController(runner Runner, lister Lister, logger *logging.Logger) *Controller {
	return &Controller{runner: runner, lister: lister, logger: logger}
}

// Launch starts the application. A user-command target is opened directly;
// otherwise the app is started by name (or bundle path when known).
func (c *Controller) Launch(ctx context.Context, app types.AppIdentity) bool {
	var err error
	switch {
	case app.LaunchTarget != "":
		err = c.runner.Run(ctx, "open", app.LaunchTarget)
	case app.Path != "":
		err = c.runner.Run(ctx, "open", app.Path)
	default:
		err = c.runner.Run(ctx, "open", "-a", app.Name)
	}

	if err != nil {
		c.logger.Warn("launch failed", zap.String("app", app.Name), zap.Error(err))
		return false
	}
	c.logger.Info("launched", zap.String("app", app.Name))
	return true
}

// IsRunning reports whether the application has a live process. It never has
// side effects.
func (c *Controller) IsRunning(ctx context.Context, app types.AppIdentity) bool {
	procs, err := c.lister.List(ctx)
	if err != nil {
		c.logger.Warn("process listing failed", zap.Error(err))
		return false
	}
	for _, p := range procs {
		if nameMatches(p.Name, app.Name) {
			return true
		}
	}
	return false
}

// SwitchTo brings a running instance to the foreground. Fails when the
// application is not running or the OS denies the focus change.
func (c *Controller) SwitchTo(ctx context.Context, app types.AppIdentity) bool {
	if !c.IsRunning(ctx, app) {
		c.logger.Debug("switch refused, app not running", zap.String("app", app.Name))
		return false
	}

	script := `tell application "` + app.Name + `" to activate`
	if err := c.runner.Run(ctx, "osascript", "-e", script); err != nil {
		c.logger.Warn("switch failed", zap.String("app", app.Name), zap.Error(err))
		return false
	}
	return true
}

// CloseByScript asks the application to quit through UI-level automation.
// Graceful: the app gets to run its own shutdown.
func (c *Controller) CloseByScript(ctx context.Context, app types.AppIdentity) bool {
	script := `tell application "` + app.Name + `" to quit`
	if err := c.runner.Run(ctx, "osascript", "-e", script); err != nil {
		c.logger.Debug("scripted close failed", zap.String("app", app.Name), zap.Error(err))
		return false
	}
	return true
}

// CloseByProcess terminates the application's processes directly. Succeeds
// when at least one matching process was signalled.
func (c *Controller) CloseByProcess(ctx context.Context, app types.AppIdentity) bool {
	procs, err := c.lister.List(ctx)
	if err != nil {
		c.logger.Warn("process listing failed", zap.Error(err))
		return false
	}

	terminated := 0
	for _, p := range procs {
		if !nameMatches(p.Name, app.Name) {
			continue
		}
		if err := c.lister.Terminate(ctx, p.PID); err != nil {
			c.logger.Warn("terminate failed",
				zap.Int32("pid", p.PID),
				zap.String("app", app.Name),
				zap.Error(err))
			continue
		}
		terminated++
	}
	return terminated > 0
}

// Close closes the application: graceful scripted quit first, process
// termination as the fallback. Apps that ignore automation events still get
// closed; apps that honor it keep their shutdown hooks.
func (c *Controller) Close(ctx context.Context, app types.AppIdentity) bool {
	if c.CloseByScript(ctx, app) {
		return true
	}
	return c.CloseByProcess(ctx, app)
}

// MatchProcess yields the currently running processes whose name contains the
// fragment. The sequence is restartable: each traversal re-enumerates live
// state.
func (c *Controller) MatchProcess(ctx context.Context, fragment string) iter.Seq[Proc] {
	return func(yield func(Proc) bool) {
		procs, err := c.lister.List(ctx)
		if err != nil {
			c.logger.Warn("process listing failed", zap.Error(err))
			return
		}
		needle := strings.ToLower(fragment)
		for _, p := range procs {
			if !strings.Contains(strings.ToLower(p.Name), needle) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// nameMatches compares a process name against an application name. Process
// names are frequently truncated or decorated, so containment either way
// counts.
func nameMatches(procName, appName string) bool {
	p := strings.ToLower(strings.TrimSpace(procName))
	a := strings.ToLower(strings.TrimSpace(appName))
	if p == "" || a == "" {
		return false
	}
	return p == a || strings.Contains(p, a) || strings.Contains(a, p)
}
