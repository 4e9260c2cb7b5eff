package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"gorm.io/gorm"

	"github.com/rtsops/reinforce/internal/adapters/persistence"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/shared"
	"github.com/rtsops/reinforce/internal/infrastructure/database"
)

// sessionHistoryContext holds state for session persistence tests
type sessionHistoryContext struct {
	db          *gorm.DB
	sessionRepo *persistence.SessionRepositoryGORM
	journalRepo *persistence.JournalRepositoryGORM
	clock       *shared.MockClock

	sessions map[string]*session.Session

	foundRecord session.Record
	lookupErr   error
	listed      []session.Record
	entries     []session.JournalEntry
}

func (shc *sessionHistoryContext) reset() {
	if shc.db != nil {
		database.Close(shc.db)
	}
	shc.db = nil
	shc.sessionRepo = nil
	shc.journalRepo = nil
	shc.clock = shared.NewMockClock(time.Now())
	shc.sessions = make(map[string]*session.Session)
	shc.foundRecord = session.Record{}
	shc.lookupErr = nil
	shc.listed = nil
	shc.entries = nil
}

// ============================================================================
// Store Setup Steps
// ============================================================================

func (shc *sessionHistoryContext) aFreshSessionStore() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("failed to create test database: %w", err)
	}
	shc.db = db
	shc.sessionRepo = persistence.NewSessionRepository(db)
	shc.journalRepo = persistence.NewJournalRepository(db)
	return nil
}

func (shc *sessionHistoryContext) aSavedSession(id, mapName string, team int) error {
	sess, err := session.NewSession(id, "", mapName, team, shc.clock)
	if err != nil {
		return err
	}
	if err := shc.sessionRepo.Save(context.Background(), sess); err != nil {
		return err
	}
	shc.sessions[id] = sess

	// Later sessions must sort newer, created_at carries the list order.
	shc.clock.Advance(time.Minute)
	return nil
}

func (shc *sessionHistoryContext) sessionStartsAndIsSaved(id string) error {
	sess, ok := shc.sessions[id]
	if !ok {
		return fmt.Errorf("unknown session %s", id)
	}
	if err := sess.Start(); err != nil {
		return err
	}
	return shc.sessionRepo.Save(context.Background(), sess)
}

func (shc *sessionHistoryContext) sessionCompletesAndIsSaved(id string) error {
	sess, ok := shc.sessions[id]
	if !ok {
		return fmt.Errorf("unknown session %s", id)
	}
	if err := sess.Complete(); err != nil {
		return err
	}
	return shc.sessionRepo.Save(context.Background(), sess)
}

func (shc *sessionHistoryContext) sessionFailsAndIsSaved(id, message string) error {
	sess, ok := shc.sessions[id]
	if !ok {
		return fmt.Errorf("unknown session %s", id)
	}
	if err := sess.Fail(errors.New(message)); err != nil {
		return err
	}
	return shc.sessionRepo.Save(context.Background(), sess)
}

func (shc *sessionHistoryContext) sessionRecordsJournalEvent(id, event string) error {
	return shc.journalRepo.Append(context.Background(), session.JournalEntry{
		SessionID: id,
		Event:     event,
		CreatedAt: shc.clock.Now(),
	})
}

func (shc *sessionHistoryContext) sessionRecordsJournalEventForUnit(id, event string, unitID int, detail string) error {
	return shc.journalRepo.Append(context.Background(), session.JournalEntry{
		SessionID: id,
		Event:     event,
		UnitID:    unitID,
		Detail:    detail,
		CreatedAt: shc.clock.Now(),
	})
}

// ============================================================================
// Query Steps
// ============================================================================

func (shc *sessionHistoryContext) iLookUpSession(id string) error {
	shc.foundRecord, shc.lookupErr = shc.sessionRepo.FindByID(context.Background(), id)
	return nil
}

func (shc *sessionHistoryContext) iListUpToSessions(limit int) error {
	listed, err := shc.sessionRepo.List(context.Background(), limit)
	if err != nil {
		return err
	}
	shc.listed = listed
	return nil
}

func (shc *sessionHistoryContext) iReadTheLastJournalEntriesOf(limit int, id string) error {
	entries, err := shc.journalRepo.ListBySession(context.Background(), id, limit)
	if err != nil {
		return err
	}
	shc.entries = entries
	return nil
}

// ============================================================================
// Assertion Steps
// ============================================================================

func (shc *sessionHistoryContext) theStoredSessionShouldBeOnMapForTeam(mapName string, team int) error {
	if shc.lookupErr != nil {
		return fmt.Errorf("lookup failed: %v", shc.lookupErr)
	}
	if shc.foundRecord.MapName != mapName {
		return fmt.Errorf("expected map '%s' but got '%s'", mapName, shc.foundRecord.MapName)
	}
	if shc.foundRecord.Team != team {
		return fmt.Errorf("expected team %d but got %d", team, shc.foundRecord.Team)
	}
	return nil
}

func (shc *sessionHistoryContext) theStoredSessionStatusShouldBe(expected string) error {
	if shc.lookupErr != nil {
		return fmt.Errorf("lookup failed: %v", shc.lookupErr)
	}
	if shc.foundRecord.Status != expected {
		return fmt.Errorf("expected status '%s' but got '%s'", expected, shc.foundRecord.Status)
	}
	return nil
}

func (shc *sessionHistoryContext) theStoredSessionShouldHaveAStopTimestamp() error {
	if shc.lookupErr != nil {
		return fmt.Errorf("lookup failed: %v", shc.lookupErr)
	}
	if shc.foundRecord.StoppedAt == nil {
		return fmt.Errorf("expected stopped_at to be set but it is nil")
	}
	return nil
}

func (shc *sessionHistoryContext) theStoredSessionErrorShouldBe(expected string) error {
	if shc.lookupErr != nil {
		return fmt.Errorf("lookup failed: %v", shc.lookupErr)
	}
	if shc.foundRecord.LastError != expected {
		return fmt.Errorf("expected last error '%s' but got '%s'", expected, shc.foundRecord.LastError)
	}
	return nil
}

func (shc *sessionHistoryContext) theLookupShouldFailWith(expected string) error {
	if shc.lookupErr == nil {
		return fmt.Errorf("expected the lookup to fail but it succeeded")
	}
	if !strings.Contains(shc.lookupErr.Error(), expected) {
		return fmt.Errorf("expected error mentioning '%s' but got '%s'", expected, shc.lookupErr.Error())
	}
	return nil
}

func (shc *sessionHistoryContext) iShouldSeeSessions(count int) error {
	if len(shc.listed) != count {
		return fmt.Errorf("expected %d sessions but got %d", count, len(shc.listed))
	}
	return nil
}

func (shc *sessionHistoryContext) theFirstListedSessionShouldBe(id string) error {
	if len(shc.listed) == 0 {
		return fmt.Errorf("no sessions were listed")
	}
	if shc.listed[0].ID != id {
		return fmt.Errorf("expected first session '%s' but got '%s'", id, shc.listed[0].ID)
	}
	return nil
}

func (shc *sessionHistoryContext) iShouldSeeJournalEntries(count int) error {
	if len(shc.entries) != count {
		return fmt.Errorf("expected %d journal entries but got %d", count, len(shc.entries))
	}
	return nil
}

func (shc *sessionHistoryContext) theFirstJournalEntryShouldBe(event string) error {
	if len(shc.entries) == 0 {
		return fmt.Errorf("no journal entries were read")
	}
	if shc.entries[0].Event != event {
		return fmt.Errorf("expected first entry '%s' but got '%s'", event, shc.entries[0].Event)
	}
	return nil
}

// ============================================================================
// Step Registration
// ============================================================================

// InitializeSessionHistoryScenario registers the session persistence step definitions
func InitializeSessionHistoryScenario(ctx *godog.ScenarioContext) {
	shc := &sessionHistoryContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		shc.reset()
		return ctx, nil
	})

	// Store setup steps
	ctx.Step(`^a fresh session store$`, shc.aFreshSessionStore)
	ctx.Step(`^a saved session "([^"]*)" on map "([^"]*)" for team (\d+)$`, shc.aSavedSession)
	ctx.Step(`^session "([^"]*)" starts and is saved$`, shc.sessionStartsAndIsSaved)
	ctx.Step(`^session "([^"]*)" completes and is saved$`, shc.sessionCompletesAndIsSaved)
	ctx.Step(`^session "([^"]*)" fails with "([^"]*)" and is saved$`, shc.sessionFailsAndIsSaved)
	ctx.Step(`^session "([^"]*)" records journal event "([^"]*)"$`, shc.sessionRecordsJournalEvent)
	ctx.Step(`^session "([^"]*)" records journal event "([^"]*)" for unit (\d+) with detail "([^"]*)"$`, shc.sessionRecordsJournalEventForUnit)

	// Query steps
	ctx.Step(`^I look up session "([^"]*)"$`, shc.iLookUpSession)
	ctx.Step(`^I list up to (\d+) sessions$`, shc.iListUpToSessions)
	ctx.Step(`^I read the last (\d+) journal entries of "([^"]*)"$`, shc.iReadTheLastJournalEntriesOf)

	// Assertion steps
	ctx.Step(`^the stored session should be on map "([^"]*)" for team (\d+)$`, shc.theStoredSessionShouldBeOnMapForTeam)
	ctx.Step(`^the stored session status should be "([^"]*)"$`, shc.theStoredSessionStatusShouldBe)
	ctx.Step(`^the stored session should have a stop timestamp$`, shc.theStoredSessionShouldHaveAStopTimestamp)
	ctx.Step(`^the stored session error should be "([^"]*)"$`, shc.theStoredSessionErrorShouldBe)
	ctx.Step(`^the lookup should fail with "([^"]*)"$`, shc.theLookupShouldFailWith)
	ctx.Step(`^I should see (\d+) sessions$`, shc.iShouldSeeSessions)
	ctx.Step(`^the first listed session should be "([^"]*)"$`, shc.theFirstListedSessionShouldBe)
	ctx.Step(`^I should see (\d+) journal entries$`, shc.iShouldSeeJournalEntries)
	ctx.Step(`^the first journal entry should be "([^"]*)"$`, shc.theFirstJournalEntryShouldBe)
}
