// Package orchestrator receives utterances, resolves them to an application
// and dispatches the resulting lifecycle action. It is the host-facing entry
// point: Handle does the work, CanAnswer predicts whether Handle could.
package orchestrator

import (
	"context"
	"iter"

	"go.uber.org/zap"

	"github.com/voxlaunch/voxlaunch/internal/logging"
	"github.com/voxlaunch/voxlaunch/internal/monitoring"
	"github.com/voxlaunch/voxlaunch/internal/process"
	"github.com/voxlaunch/voxlaunch/internal/types"
)

// Matcher resolves utterances.
type Matcher interface {
	Match(utterance string) *types.Match
}

// Lifecycle is the process-controller surface the orchestrator needs.
type Lifecycle interface {
	Launch(ctx context.Context, app types.AppIdentity) bool
	IsRunning(ctx context.Context, app types.AppIdentity) bool
	SwitchTo(ctx context.Context, app types.AppIdentity) bool
	Close(ctx context.Context, app types.AppIdentity) bool
	CloseByScript(ctx context.Context, app types.AppIdentity) bool
	CloseByProcess(ctx context.Context, app types.AppIdentity) bool
	MatchProcess(ctx context.Context, fragment string) iter.Seq[process.Proc]
}

// Confirmer starts already-running disambiguation dialogs.
type Confirmer interface {
	Begin(app types.AppIdentity) bool
	Active(appName string) bool
}

// Notifier receives success acknowledgments for direct actions.
type Notifier interface {
	Acknowledge(app types.AppIdentity)
}

// AliasView exposes the merged alias table read-only.
type AliasView interface {
	Aliases() map[string][]string
}

// Service dispatches resolved intents.
type Service struct {
	matcher   Matcher
	lifecycle Lifecycle
	confirmer Confirmer
	notifier  Notifier
	aliases   AliasView
	metrics   *monitoring.Metrics
	logger    *logging.Logger
}

// NewService creates an orchestrator.
func NewService(matcher Matcher, lifecycle Lifecycle, confirmer Confirmer, notifier Notifier, aliases AliasView, logger *logging.Logger) *Service {
	return &Service{
		matcher:   matcher,
		lifecycle: lifecycle,
		confirmer: confirmer,
		notifier:  notifier,
		aliases:   aliases,
		logger:    logger,
	}
}

// WithMetrics attaches metrics tracking.
func (s *Service) WithMetrics(m *monitoring.Metrics) *Service {
	s.metrics = m
	return s
}

// CanAnswer reports whether the utterance resolves to an application, without
// performing any action. Used by the host for routing priority.
func (s *Service) CanAnswer(utterance string) bool {
	match := s.matcher.Match(utterance)
	return match != nil && match.App.Name != ""
}

// Handle resolves the utterance and performs the matching lifecycle action.
// Returns whether the utterance was handled; "not handled" is a normal
// negative, never an error.
func (s *Service) Handle(ctx context.Context, utterance string) bool {
	handled := s.handle(ctx, utterance)
	if s.metrics != nil {
		s.metrics.RecordUtterance(handled)
	}
	return handled
}

func (s *Service) handle(ctx context.Context, utterance string) bool {
	match := s.matcher.Match(utterance)
	if match == nil || match.App.Name == "" {
		return false
	}

	switch match.Intent {
	case types.IntentClose:
		ok := s.lifecycle.Close(ctx, match.App)
		s.record("close", ok)
		if ok {
			s.notifier.Acknowledge(match.App)
		}
		return ok

	case types.IntentLaunch:
		return s.handleLaunch(ctx, match.App)

	default:
		s.logger.Debug("unrecognized intent kind",
			zap.String("intent", string(match.Intent)),
			zap.String("app", match.App.Name))
		return false
	}
}

// handleLaunch launches directly when the app is not running. When it is, the
// confirmation dialog takes over out-of-band and the utterance counts as
// handled immediately.
func (s *Service) handleLaunch(ctx context.Context, app types.AppIdentity) bool {
	if !s.lifecycle.IsRunning(ctx, app) {
		ok := s.lifecycle.Launch(ctx, app)
		s.record("launch", ok)
		if ok {
			s.notifier.Acknowledge(app)
		}
		return ok
	}

	// Already running: hand off to the multi-turn dialog. Begin returning
	// false means a session for this app is already in flight, which still
	// covers the request.
	s.confirmer.Begin(app)
	return true
}

func (s *Service) record(action string, ok bool) {
	if s.metrics != nil {
		s.metrics.RecordAction(action, ok)
	}
}

// Aliases returns the merged alias table.
func (s *Service) Aliases() map[string][]string {
	return s.aliases.Aliases()
}

// IsRunning is a pass-through to the process controller.
func (s *Service) IsRunning(ctx context.Context, app types.AppIdentity) bool {
	return s.lifecycle.IsRunning(ctx, app)
}

// SwitchTo is a pass-through to the process controller.
func (s *Service) SwitchTo(ctx context.Context, app types.AppIdentity) bool {
	return s.lifecycle.SwitchTo(ctx, app)
}

// CloseByScript is a pass-through to the process controller.
func (s *Service) CloseByScript(ctx context.Context, app types.AppIdentity) bool {
	return s.lifecycle.CloseByScript(ctx, app)
}

// CloseByProcess is a pass-through to the process controller.
func (s *Service) CloseByProcess(ctx context.Context, app types.AppIdentity) bool {
	return s.lifecycle.CloseByProcess(ctx, app)
}

// MatchProcess is a pass-through to the process controller.
func (s *Service) MatchProcess(ctx context.Context, fragment string) iter.Seq[process.Proc] {
	return s.lifecycle.MatchProcess(ctx, fragment)
}
