package tracker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtsops/reinforce/internal/domain/order"
	"github.com/rtsops/reinforce/internal/domain/tracker"
)

func TestPendingBuilds_PopIsFIFOPerType(t *testing.T) {
	// Arrange
	pb := tracker.NewPendingBuilds()
	now := time.Now()
	pb.Push("tank", 100, order.Queue{order.New(order.KindPatrol, 1, 0, 1)}, now)
	pb.Push("tank", 101, order.Queue{order.New(order.KindPatrol, 2, 0, 2)}, now)

	// Act
	first, ok1 := pb.Pop("tank")
	second, ok2 := pb.Pop("tank")
	_, ok3 := pb.Pop("tank")

	// Assert
	require.True(t, ok1)
	require.True(t, ok2)
	assert.False(t, ok3)
	assert.Equal(t, 100, first.FactoryID())
	assert.Equal(t, 101, second.FactoryID())
}

func TestPendingBuilds_PopUnknownType(t *testing.T) {
	// Arrange
	pb := tracker.NewPendingBuilds()

	// Act
	_, ok := pb.Pop("tank")

	// Assert
	assert.False(t, ok)
}

func TestPendingBuilds_TypesAreIndependent(t *testing.T) {
	// Arrange
	pb := tracker.NewPendingBuilds()
	now := time.Now()
	pb.Push("tank", 100, nil, now)
	pb.Push("scout", 101, nil, now)

	// Act
	entry, ok := pb.Pop("scout")

	// Assert
	require.True(t, ok)
	assert.Equal(t, "scout", entry.UnitType())
	assert.Equal(t, 1, pb.Len())
}

func TestPendingBuilds_AllInInsertionOrder(t *testing.T) {
	// Arrange
	pb := tracker.NewPendingBuilds()
	now := time.Now()
	pb.Push("tank", 100, nil, now)
	pb.Push("scout", 101, nil, now)
	pb.Push("tank", 102, nil, now)

	// Act
	all := pb.All()

	// Assert
	require.Len(t, all, 3)
	assert.Equal(t, 100, all[0].FactoryID())
	assert.Equal(t, 101, all[1].FactoryID())
	assert.Equal(t, 102, all[2].FactoryID())
}

func TestPendingBuild_OrdersAreDetached(t *testing.T) {
	// Arrange
	pb := tracker.NewPendingBuilds()
	source := order.Queue{order.New(order.KindMove, 1, 0, 1)}
	entry := pb.Push("tank", 100, source, time.Now())

	// Act
	got := entry.Orders()
	got[0].Params[0] = 99

	// Assert
	assert.Equal(t, float64(1), entry.Orders()[0].Params[0])
}
