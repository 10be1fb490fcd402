package confirm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxlaunch/voxlaunch/internal/logging"
	"github.com/voxlaunch/voxlaunch/internal/types"
)

type fakeActions struct {
	switchOK    bool
	launchOK    bool
	switchCalls []string
	launchCalls []string
}

func (f *fakeActions) SwitchTo(ctx context.Context, app types.AppIdentity) bool {
	f.switchCalls = append(f.switchCalls, app.Name)
	return f.switchOK
}

func (f *fakeActions) Launch(ctx context.Context, app types.AppIdentity) bool {
	f.launchCalls = append(f.launchCalls, app.Name)
	return f.launchOK
}

type fakePrompter struct {
	prompts []Stage
}

func (f *fakePrompter) Prompt(app types.AppIdentity, stage Stage) {
	f.prompts = append(f.prompts, stage)
}

type fakeNotifier struct {
	acks []string
}

func (f *fakeNotifier) Acknowledge(app types.AppIdentity) {
	f.acks = append(f.acks, app.Name)
}

type fixture struct {
	actions  *fakeActions
	prompter *fakePrompter
	notifier *fakeNotifier
	coord    *Coordinator
}

func newFixture(skipSwitch bool) *fixture {
	f := &fixture{
		actions:  &fakeActions{switchOK: true, launchOK: true},
		prompter: &fakePrompter{},
		notifier: &fakeNotifier{},
	}
	f.coord = NewCoordinator(f.actions, f.prompter, f.notifier, 5,
		func() bool { return skipSwitch }, logging.NewNop())
	return f
}

var safari = types.AppIdentity{Name: "Safari"}

func respondN(t *testing.T, f *fixture, answer Answer, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.True(t, f.coord.Respond(context.Background(), "Safari", answer))
	}
}

func TestBeginEmitsSwitchPrompt(t *testing.T) {
	f := newFixture(false)

	assert.True(t, f.coord.Begin(safari))
	assert.Equal(t, []Stage{StageSwitch}, f.prompter.prompts)
	assert.True(t, f.coord.Active("Safari"))
}

func TestBeginRejectsSecondSessionForSameApp(t *testing.T) {
	f := newFixture(false)

	require.True(t, f.coord.Begin(safari))
	assert.False(t, f.coord.Begin(safari))
	// Case-folded identity: "safari" is the same app.
	assert.False(t, f.coord.Begin(types.AppIdentity{Name: "safari"}))
	// Only the first prompt went out.
	assert.Len(t, f.prompter.prompts, 1)
}

func TestSwitchYesSwitchesAndAcknowledges(t *testing.T) {
	f := newFixture(false)
	require.True(t, f.coord.Begin(safari))

	respondN(t, f, AnswerYes, 1)

	assert.Equal(t, []string{"Safari"}, f.actions.switchCalls)
	assert.Equal(t, []string{"Safari"}, f.notifier.acks)
	assert.Empty(t, f.actions.launchCalls)
	assert.False(t, f.coord.Active("Safari"))
}

func TestSwitchYesButSwitchFailsStillConcludes(t *testing.T) {
	f := newFixture(false)
	f.actions.switchOK = false
	require.True(t, f.coord.Begin(safari))

	respondN(t, f, AnswerYes, 1)

	// The attempt was made; session is done, but no acknowledgment.
	assert.Equal(t, []string{"Safari"}, f.actions.switchCalls)
	assert.Empty(t, f.notifier.acks)
	assert.False(t, f.coord.Active("Safari"))
}

func TestSwitchNoThenDeclineLaunch(t *testing.T) {
	f := newFixture(false)
	require.True(t, f.coord.Begin(safari))

	respondN(t, f, AnswerNo, 1)
	assert.Equal(t, []Stage{StageSwitch, StageLaunch}, f.prompter.prompts)

	respondN(t, f, AnswerNo, 1)
	assert.Empty(t, f.actions.switchCalls)
	assert.Empty(t, f.actions.launchCalls)
	assert.False(t, f.coord.Active("Safari"))
}

func TestSwitchNoThenConfirmLaunch(t *testing.T) {
	f := newFixture(false)
	require.True(t, f.coord.Begin(safari))

	respondN(t, f, AnswerNo, 1)
	respondN(t, f, AnswerYes, 1)

	assert.Equal(t, []string{"Safari"}, f.actions.launchCalls)
	assert.Equal(t, []string{"Safari"}, f.notifier.acks)
	assert.False(t, f.coord.Active("Safari"))
}

func TestSwitchStageExhaustionEqualsNo(t *testing.T) {
	f := newFixture(false)
	require.True(t, f.coord.Begin(safari))

	// 5 unrecognized responses exhaust the switch stage and advance to
	// the launch stage without switching.
	respondN(t, f, AnswerUnknown, 5)

	assert.Empty(t, f.actions.switchCalls)
	assert.True(t, f.coord.Active("Safari"))
	assert.Equal(t, StageLaunch, f.prompter.prompts[len(f.prompter.prompts)-1])
}

func TestLaunchStageExhaustionEqualsYes(t *testing.T) {
	f := newFixture(false)
	require.True(t, f.coord.Begin(safari))

	// Exhaust switch stage, then exhaust launch stage: ten unrecognized
	// responses end in a launch. The asymmetry is deliberate.
	respondN(t, f, AnswerUnknown, 10)

	assert.Empty(t, f.actions.switchCalls)
	assert.Equal(t, []string{"Safari"}, f.actions.launchCalls)
	assert.False(t, f.coord.Active("Safari"))
}

func TestLaunchStageExplicitNoIsOnlyDecline(t *testing.T) {
	f := newFixture(false)
	require.True(t, f.coord.Begin(safari))
	respondN(t, f, AnswerNo, 1)

	// Four retries burned, then an explicit no still declines.
	respondN(t, f, AnswerUnknown, 4)
	respondN(t, f, AnswerNo, 1)

	assert.Empty(t, f.actions.launchCalls)
	assert.False(t, f.coord.Active("Safari"))
}

func TestRetriesReemitPrompts(t *testing.T) {
	f := newFixture(false)
	require.True(t, f.coord.Begin(safari))

	respondN(t, f, AnswerUnknown, 2)
	// Initial prompt plus one per retry below the budget.
	assert.Equal(t, []Stage{StageSwitch, StageSwitch, StageSwitch}, f.prompter.prompts)
}

func TestDisableWindowManagerSkipsSwitchStage(t *testing.T) {
	f := newFixture(true)
	require.True(t, f.coord.Begin(safari))

	assert.Equal(t, []Stage{StageLaunch}, f.prompter.prompts)

	respondN(t, f, AnswerNo, 1)
	assert.Empty(t, f.actions.switchCalls)
	assert.Empty(t, f.actions.launchCalls)
	assert.False(t, f.coord.Active("Safari"))
}

func TestRespondWithoutSessionReturnsFalse(t *testing.T) {
	f := newFixture(false)
	assert.False(t, f.coord.Respond(context.Background(), "Safari", AnswerYes))
}

func TestSessionCanRestartAfterConclusion(t *testing.T) {
	f := newFixture(false)
	require.True(t, f.coord.Begin(safari))
	respondN(t, f, AnswerYes, 1)

	// Prior session concluded; a new one may start.
	assert.True(t, f.coord.Begin(safari))
}

func TestParseAnswer(t *testing.T) {
	assert.Equal(t, AnswerYes, ParseAnswer("yes"))
	assert.Equal(t, AnswerYes, ParseAnswer(" Yeah "))
	assert.Equal(t, AnswerNo, ParseAnswer("no"))
	assert.Equal(t, AnswerNo, ParseAnswer("NOPE"))
	assert.Equal(t, AnswerUnknown, ParseAnswer(""))
	assert.Equal(t, AnswerUnknown, ParseAnswer("banana"))
}
