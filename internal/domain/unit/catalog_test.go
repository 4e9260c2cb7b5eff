package unit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtsops/reinforce/internal/domain/unit"
)

func testCatalog() *unit.Catalog {
	return unit.NewCatalog([]unit.TypeInfo{
		{Name: "tank", IsFactory: false},
		{Name: "vehicle_plant", IsFactory: true, Builds: []string{"tank", "scout"}},
		{Name: "airlift", CanTransport: true},
	})
}

func TestCatalog_Lookup(t *testing.T) {
	// Arrange
	catalog := testCatalog()

	// Act
	info, ok := catalog.Lookup("vehicle_plant")

	// Assert
	require.True(t, ok)
	assert.True(t, info.IsFactory)
	assert.Equal(t, []string{"tank", "scout"}, info.Builds)
}

func TestCatalog_Lookup_UnknownType(t *testing.T) {
	// Arrange
	catalog := testCatalog()

	// Act
	_, ok := catalog.Lookup("battleship")

	// Assert
	assert.False(t, ok)
}

func TestCatalog_IsFactory(t *testing.T) {
	// Arrange
	catalog := testCatalog()

	// Act & Assert
	assert.True(t, catalog.IsFactory("vehicle_plant"))
	assert.False(t, catalog.IsFactory("tank"))
	assert.False(t, catalog.IsFactory("battleship"))
}

func TestCatalog_CanTransport(t *testing.T) {
	// Arrange
	catalog := testCatalog()

	// Act & Assert
	assert.True(t, catalog.CanTransport("airlift"))
	assert.False(t, catalog.CanTransport("tank"))
}

func TestCatalog_BuildersOf(t *testing.T) {
	// Arrange
	catalog := testCatalog()

	// Act
	builders := catalog.BuildersOf("tank")

	// Assert
	assert.Equal(t, []string{"vehicle_plant"}, builders)
}

func TestCatalog_BuildersOf_NoBuilder(t *testing.T) {
	// Arrange
	catalog := testCatalog()

	// Act
	builders := catalog.BuildersOf("airlift")

	// Assert
	assert.Empty(t, builders)
}

func TestTypeInfo_CanBuild_NonFactory(t *testing.T) {
	// Arrange
	info := unit.TypeInfo{Name: "tank", Builds: []string{"tank"}}

	// Act & Assert
	assert.False(t, info.CanBuild("tank"))
}

func TestCatalog_DuplicateNamesLastWins(t *testing.T) {
	// Arrange
	catalog := unit.NewCatalog([]unit.TypeInfo{
		{Name: "tank", IsFactory: false},
		{Name: "tank", IsFactory: true},
	})

	// Act & Assert
	assert.True(t, catalog.IsFactory("tank"))
	assert.Equal(t, 1, catalog.Len())
}
