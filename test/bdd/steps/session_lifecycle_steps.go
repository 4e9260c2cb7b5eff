package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/shared"
)

// sessionLifecycleContext holds state for session lifecycle tests
type sessionLifecycleContext struct {
	sess          *session.Session
	clock         *shared.MockClock
	transitionErr error
	createErr     error
}

func (slc *sessionLifecycleContext) reset() {
	slc.sess = nil
	slc.clock = shared.NewMockClock(time.Now())
	slc.transitionErr = nil
	slc.createErr = nil
}

// ============================================================================
// Session Setup Steps
// ============================================================================

func (slc *sessionLifecycleContext) aSessionOnMapForTeam(id, mapName string, team int) error {
	sess, err := session.NewSession(id, "", mapName, team, slc.clock)
	if err != nil {
		return err
	}
	slc.sess = sess
	return nil
}

func (slc *sessionLifecycleContext) iCreateASessionWithABlankId() error {
	_, slc.createErr = session.NewSession("", "", "DeltaSiegeDryX", 1, slc.clock)
	return nil
}

func (slc *sessionLifecycleContext) iCreateASessionForTeam(team int) error {
	_, slc.createErr = session.NewSession("sess-validation", "", "DeltaSiegeDryX", team, slc.clock)
	return nil
}

// ============================================================================
// Transition Steps
// ============================================================================

func (slc *sessionLifecycleContext) theSessionStarts() error {
	return slc.sess.Start()
}

func (slc *sessionLifecycleContext) theSessionCompletes() error {
	return slc.sess.Complete()
}

func (slc *sessionLifecycleContext) theSessionIsStopped() error {
	return slc.sess.Stop()
}

func (slc *sessionLifecycleContext) theSessionFailsWith(message string) error {
	return slc.sess.Fail(errors.New(message))
}

func (slc *sessionLifecycleContext) theSessionTriesTo(transition string) error {
	switch transition {
	case "start":
		slc.transitionErr = slc.sess.Start()
	case "complete":
		slc.transitionErr = slc.sess.Complete()
	case "stop":
		slc.transitionErr = slc.sess.Stop()
	default:
		return fmt.Errorf("unknown transition %q", transition)
	}
	return nil
}

func (slc *sessionLifecycleContext) secondsPass(seconds int) error {
	slc.clock.Advance(time.Duration(seconds) * time.Second)
	return nil
}

// ============================================================================
// Assertion Steps
// ============================================================================

func (slc *sessionLifecycleContext) theSessionStatusShouldBe(expected string) error {
	if string(slc.sess.Status()) != expected {
		return fmt.Errorf("expected status '%s' but got '%s'", expected, slc.sess.Status())
	}
	return nil
}

func (slc *sessionLifecycleContext) theSessionRuntimeShouldBeSeconds(seconds int) error {
	expected := time.Duration(seconds) * time.Second
	if got := slc.sess.RuntimeDuration(); got != expected {
		return fmt.Errorf("expected runtime %v but got %v", expected, got)
	}
	return nil
}

func (slc *sessionLifecycleContext) theSessionShouldHaveAStartTimestamp() error {
	if slc.sess.StartedAt() == nil {
		return fmt.Errorf("expected started_at to be set but it is nil")
	}
	return nil
}

func (slc *sessionLifecycleContext) theSessionShouldNotHaveAStartTimestamp() error {
	if slc.sess.StartedAt() != nil {
		return fmt.Errorf("expected started_at to be nil but it is set")
	}
	return nil
}

func (slc *sessionLifecycleContext) theTransitionShouldBeRejectedWith(expected string) error {
	if slc.transitionErr == nil {
		return fmt.Errorf("expected the transition to be rejected but it succeeded")
	}
	if !strings.Contains(slc.transitionErr.Error(), expected) {
		return fmt.Errorf("expected error mentioning '%s' but got '%s'", expected, slc.transitionErr.Error())
	}
	return nil
}

func (slc *sessionLifecycleContext) theSessionErrorShouldBe(expected string) error {
	if slc.sess.LastError() == nil {
		return fmt.Errorf("expected last error '%s' but got nil", expected)
	}
	if slc.sess.LastError().Error() != expected {
		return fmt.Errorf("expected last error '%s' but got '%s'", expected, slc.sess.LastError().Error())
	}
	return nil
}

func (slc *sessionLifecycleContext) sessionCreationShouldFailWith(expected string) error {
	if slc.createErr == nil {
		return fmt.Errorf("expected session creation to fail but it succeeded")
	}
	if !strings.Contains(slc.createErr.Error(), expected) {
		return fmt.Errorf("expected error mentioning '%s' but got '%s'", expected, slc.createErr.Error())
	}
	return nil
}

// ============================================================================
// Step Registration
// ============================================================================

// InitializeSessionLifecycleScenario registers the session lifecycle step definitions
func InitializeSessionLifecycleScenario(ctx *godog.ScenarioContext) {
	slc := &sessionLifecycleContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		slc.reset()
		return ctx, nil
	})

	// Session setup steps
	ctx.Step(`^a session "([^"]*)" on map "([^"]*)" for team (\d+)$`, slc.aSessionOnMapForTeam)
	ctx.Step(`^I create a session with a blank id$`, slc.iCreateASessionWithABlankId)
	ctx.Step(`^I create a session for team (-?\d+)$`, slc.iCreateASessionForTeam)

	// Transition steps
	ctx.Step(`^the session starts$`, slc.theSessionStarts)
	ctx.Step(`^the session completes$`, slc.theSessionCompletes)
	ctx.Step(`^the session is stopped$`, slc.theSessionIsStopped)
	ctx.Step(`^the session fails with "([^"]*)"$`, slc.theSessionFailsWith)
	ctx.Step(`^the session tries to (start|complete|stop)$`, slc.theSessionTriesTo)
	ctx.Step(`^(\d+) seconds? pass$`, slc.secondsPass)

	// Assertion steps
	ctx.Step(`^the session status should be "([^"]*)"$`, slc.theSessionStatusShouldBe)
	ctx.Step(`^the session runtime should be (\d+) seconds$`, slc.theSessionRuntimeShouldBeSeconds)
	ctx.Step(`^the session should have a start timestamp$`, slc.theSessionShouldHaveAStartTimestamp)
	ctx.Step(`^the session should not have a start timestamp$`, slc.theSessionShouldNotHaveAStartTimestamp)
	ctx.Step(`^the transition should be rejected with "([^"]*)"$`, slc.theTransitionShouldBeRejectedWith)
	ctx.Step(`^the session error should be "([^"]*)"$`, slc.theSessionErrorShouldBe)
	ctx.Step(`^session creation should fail with "([^"]*)"$`, slc.sessionCreationShouldFailWith)
}
