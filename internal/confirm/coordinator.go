// Package confirm runs the bounded two-stage dialog used when a launch is
// requested for an application that is already running: first "switch to it?",
// then "launch a new instance anyway?". Sessions are advanced by discrete
// response events, not blocking waits, and at most one session exists per
// application at a time.
package confirm

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxlaunch/voxlaunch/internal/logging"
	"github.com/voxlaunch/voxlaunch/internal/types"
)

// Stage identifies which question a session is currently asking.
type Stage string

const (
	StageSwitch Stage = "switch_confirm"
	StageLaunch Stage = "launch_confirm"
)

// Answer is a classified prompt response.
type Answer int

const (
	AnswerUnknown Answer = iota
	AnswerYes
	AnswerNo
)

// ParseAnswer classifies a raw response string. Anything that is not a clear
// yes or no counts as unrecognized and burns a retry.
func ParseAnswer(raw string) Answer {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "yeah", "yep", "sure", "ok", "okay":
		return AnswerYes
	case "no", "n", "nope", "nah", "cancel":
		return AnswerNo
	default:
		return AnswerUnknown
	}
}

// Actions are the lifecycle operations a session can trigger.
type Actions interface {
	SwitchTo(ctx context.Context, app types.AppIdentity) bool
	Launch(ctx context.Context, app types.AppIdentity) bool
}

// Prompter emits a prompt request for the host to render. The wording and
// speech are the host's problem.
type Prompter interface {
	Prompt(app types.AppIdentity, stage Stage)
}

// Notifier receives the success acknowledgment after a completed action.
type Notifier interface {
	Acknowledge(app types.AppIdentity)
}

// Session tracks one in-flight disambiguation dialog.
type Session struct {
	ID       string
	App      types.AppIdentity
	Stage    Stage
	Attempts int
}

// Coordinator owns all active sessions and enforces one session per
// application identity.
type Coordinator struct {
	mu       sync.Mutex
	sessions map[string]*Session

	actions     Actions
	prompter    Prompter
	notifier    Notifier
	maxAttempts int
	// skipSwitch reports whether window-management confirmation is
	// disabled; evaluated at session start so a settings change mid-dialog
	// does not reshape an active session.
	skipSwitch func() bool
	logger     *logging.Logger
}

// NewCoordinator creates a coordinator. maxAttempts below 1 falls back to 5.
func NewCoordinator(actions Actions, prompter Prompter, notifier Notifier, maxAttempts int, skipSwitch func() bool, logger *logging.Logger) *Coordinator {
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	if skipSwitch == nil {
		skipSwitch = func() bool { return false }
	}
	return &Coordinator{
		sessions:    make(map[string]*Session),
		actions:     actions,
		prompter:    prompter,
		notifier:    notifier,
		maxAttempts: maxAttempts,
		skipSwitch:  skipSwitch,
		logger:      logger,
	}
}

// Begin starts a session for the application and emits the first prompt.
// Returns false if a session for the same application is already active; a
// second dialog for the same app never runs concurrently with the first.
func (c *Coordinator) Begin(app types.AppIdentity) bool {
	key := sessionKey(app.Name)

	c.mu.Lock()
	if _, active := c.sessions[key]; active {
		c.mu.Unlock()
		c.logger.Debug("session already active", zap.String("app", app.Name))
		return false
	}

	stage := StageSwitch
	if c.skipSwitch() {
		stage = StageLaunch
	}
	session := &Session{
		ID:    uuid.New().String(),
		App:   app,
		Stage: stage,
	}
	c.sessions[key] = session
	c.mu.Unlock()

	c.logger.Info("confirmation session started",
		zap.String("app", app.Name),
		zap.String("stage", string(stage)))
	c.prompter.Prompt(app, stage)
	return true
}

// Active reports whether a session exists for the application.
func (c *Coordinator) Active(appName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[sessionKey(appName)]
	return ok
}

// Respond feeds one response event into the session for the named
// application. Returns false when no session is active for it. Stages run
// strictly in order; every terminal branch removes the session.
func (c *Coordinator) Respond(ctx context.Context, appName string, answer Answer) bool {
	key := sessionKey(appName)

	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions[key]
	if !ok {
		return false
	}

	switch session.Stage {
	case StageSwitch:
		c.respondSwitch(ctx, key, session, answer)
	case StageLaunch:
		c.respondLaunch(ctx, key, session, answer)
	}
	return true
}

// respondSwitch handles the "already running, switch to it?" stage. Retry
// exhaustion here counts as a decline and advances to the launch stage.
func (c *Coordinator) respondSwitch(ctx context.Context, key string, session *Session, answer Answer) {
	switch answer {
	case AnswerYes:
		delete(c.sessions, key)
		if c.actions.SwitchTo(ctx, session.App) {
			c.notifier.Acknowledge(session.App)
		}
		// A failed switch still concludes the session; the attempt was
		// made.
		return

	case AnswerNo:
		c.advanceToLaunch(session)
		return

	default:
		session.Attempts++
		if session.Attempts >= c.maxAttempts {
			c.advanceToLaunch(session)
			return
		}
		c.prompter.Prompt(session.App, StageSwitch)
	}
}

// respondLaunch handles the "launch a new instance anyway?" stage. An
// explicit no is the only way to decline: retry exhaustion falls through to
// the launch. The asymmetry with the switch stage is deliberate, observed
// product behavior.
func (c *Coordinator) respondLaunch(ctx context.Context, key string, session *Session, answer Answer) {
	switch answer {
	case AnswerNo:
		delete(c.sessions, key)
		return

	case AnswerYes:
		c.finishLaunch(ctx, key, session)

	default:
		session.Attempts++
		if session.Attempts >= c.maxAttempts {
			c.finishLaunch(ctx, key, session)
			return
		}
		c.prompter.Prompt(session.App, StageLaunch)
	}
}

func (c *Coordinator) advanceToLaunch(session *Session) {
	session.Stage = StageLaunch
	session.Attempts = 0
	c.prompter.Prompt(session.App, StageLaunch)
}

func (c *Coordinator) finishLaunch(ctx context.Context, key string, session *Session) {
	delete(c.sessions, key)
	if c.actions.Launch(ctx, session.App) {
		c.notifier.Acknowledge(session.App)
	}
}

func sessionKey(appName string) string {
	return strings.ToLower(strings.TrimSpace(appName))
}
