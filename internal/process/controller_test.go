package process

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxlaunch/voxlaunch/internal/logging"
	"github.com/voxlaunch/voxlaunch/internal/types"
)

type fakeRunner struct {
	calls [][]string
	// fail maps a command name to an error returned for it.
	fail map[string]error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	if err, ok := f.fail[name]; ok {
		return err
	}
	return nil
}

type fakeLister struct {
	procs      []Proc
	listErr    error
	termErr    error
	terminated []int32
	listCalls  int
}

func (f *fakeLister) List(ctx context.Context) ([]Proc, error) {
	f.listCalls++
	return f.procs, f.listErr
}

func (f *fakeLister) Terminate(ctx context.Context, pid int32) error {
	if f.termErr != nil {
		return f.termErr
	}
	f.terminated = append(f.terminated, pid)
	return nil
}

func newTestController(runner *fakeRunner, lister *fakeLister) *Controller {
	return NewController(runner, lister, logging.NewNop())
}

var safari = types.AppIdentity{Name: "Safari"}

func TestLaunchByName(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestController(runner, &fakeLister{})

	assert.True(t, c.Launch(context.Background(), safari))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"open", "-a", "Safari"}, runner.calls[0])
}

func TestLaunchByBundlePath(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestController(runner, &fakeLister{})

	app := types.AppIdentity{Name: "Safari", Path: "/Applications/Safari.app"}
	assert.True(t, c.Launch(context.Background(), app))
	assert.Equal(t, []string{"open", "/Applications/Safari.app"}, runner.calls[0])
}

func TestLaunchUserCommandTarget(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestController(runner, &fakeLister{})

	app := types.AppIdentity{Name: "Custom", Path: "/ignored", LaunchTarget: "/opt/tool"}
	assert.True(t, c.Launch(context.Background(), app))
	assert.Equal(t, []string{"open", "/opt/tool"}, runner.calls[0])
}

func TestLaunchFailureIsBooleanNotPanic(t *testing.T) {
	runner := &fakeRunner{fail: map[string]error{"open": errors.New("no such app")}}
	c := newTestController(runner, &fakeLister{})

	assert.False(t, c.Launch(context.Background(), safari))
}

func TestIsRunning(t *testing.T) {
	lister := &fakeLister{procs: []Proc{
		{PID: 10, Name: "Safari"},
		{PID: 11, Name: "WindowServer"},
	}}
	c := newTestController(&fakeRunner{}, lister)

	assert.True(t, c.IsRunning(context.Background(), safari))
	assert.False(t, c.IsRunning(context.Background(), types.AppIdentity{Name: "Notes"}))
}

func TestIsRunningMatchesDecoratedProcessNames(t *testing.T) {
	lister := &fakeLister{procs: []Proc{{PID: 42, Name: "Google Chrome Helper"}}}
	c := newTestController(&fakeRunner{}, lister)

	assert.True(t, c.IsRunning(context.Background(), types.AppIdentity{Name: "Google Chrome"}))
}

func TestIsRunningListFailure(t *testing.T) {
	lister := &fakeLister{listErr: errors.New("denied")}
	c := newTestController(&fakeRunner{}, lister)

	assert.False(t, c.IsRunning(context.Background(), safari))
}

func TestSwitchToRequiresRunning(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestController(runner, &fakeLister{})

	assert.False(t, c.SwitchTo(context.Background(), safari))
	assert.Empty(t, runner.calls, "no automation should run for a stopped app")
}

func TestSwitchToActivates(t *testing.T) {
	runner := &fakeRunner{}
	lister := &fakeLister{procs: []Proc{{PID: 10, Name: "Safari"}}}
	c := newTestController(runner, lister)

	assert.True(t, c.SwitchTo(context.Background(), safari))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "osascript", runner.calls[0][0])
	assert.Contains(t, runner.calls[0][2], "activate")
}

func TestCloseScriptSuccessSkipsProcessFallback(t *testing.T) {
	runner := &fakeRunner{}
	lister := &fakeLister{procs: []Proc{{PID: 10, Name: "Safari"}}}
	c := newTestController(runner, lister)

	assert.True(t, c.Close(context.Background(), safari))
	assert.Empty(t, lister.terminated)
}

func TestCloseFallsBackToProcess(t *testing.T) {
	runner := &fakeRunner{fail: map[string]error{"osascript": errors.New("app ignores apple events")}}
	lister := &fakeLister{procs: []Proc{{PID: 10, Name: "Safari"}}}
	c := newTestController(runner, lister)

	assert.True(t, c.Close(context.Background(), safari))
	assert.Equal(t, []int32{10}, lister.terminated)
}

func TestCloseFailsWhenBothStrategiesFail(t *testing.T) {
	runner := &fakeRunner{fail: map[string]error{"osascript": errors.New("nope")}}
	lister := &fakeLister{termErr: errors.New("operation not permitted"), procs: []Proc{{PID: 10, Name: "Safari"}}}
	c := newTestController(runner, lister)

	assert.False(t, c.Close(context.Background(), safari))
}

func TestCloseByProcessNoMatches(t *testing.T) {
	lister := &fakeLister{procs: []Proc{{PID: 11, Name: "WindowServer"}}}
	c := newTestController(&fakeRunner{}, lister)

	assert.False(t, c.CloseByProcess(context.Background(), safari))
}

func TestMatchProcessFiltersByFragment(t *testing.T) {
	lister := &fakeLister{procs: []Proc{
		{PID: 10, Name: "Safari"},
		{PID: 11, Name: "Safari Web Content"},
		{PID: 12, Name: "Finder"},
	}}
	c := newTestController(&fakeRunner{}, lister)

	var matched []Proc
	for p := range c.MatchProcess(context.Background(), "safari") {
		matched = append(matched, p)
	}
	require.Len(t, matched, 2)
	assert.Equal(t, int32(10), matched[0].PID)
}

func TestMatchProcessIsRestartable(t *testing.T) {
	lister := &fakeLister{procs: []Proc{{PID: 10, Name: "Safari"}}}
	c := newTestController(&fakeRunner{}, lister)

	seq := c.MatchProcess(context.Background(), "safari")
	for range seq {
	}
	for range seq {
	}
	// Each traversal re-enumerates live state.
	assert.Equal(t, 2, lister.listCalls)
}
