package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/rtsops/reinforce/internal/infrastructure/database"
)

// NewTestDB opens an in-memory history store that closes itself when
// the test finishes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
