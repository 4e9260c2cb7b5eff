package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtsops/reinforce/internal/domain/order"
)

func TestQueue_Filter_DropsWaitAndFactoryDuplicates(t *testing.T) {
	// Arrange
	factory := order.Queue{order.New(order.KindMove, 0, 0, 0)}
	live := order.Queue{
		order.New(order.KindWait),
		order.New(order.KindMove, 0, 0, 0),
		order.New(order.KindPatrol, 5, 0, 5),
	}

	// Act
	filtered := live.Filter(factory)

	// Assert
	require.Len(t, filtered, 1)
	assert.True(t, filtered[0].Equal(order.New(order.KindPatrol, 5, 0, 5)))
}

func TestQueue_Filter_PreservesRelativeOrder(t *testing.T) {
	// Arrange
	factory := order.Queue{order.New(order.KindMove, 1, 0, 1)}
	live := order.Queue{
		order.New(order.KindFight, 9, 0, 9),
		order.New(order.KindWait),
		order.New(order.KindMove, 1, 0, 1),
		order.New(order.KindMove, 2, 0, 2),
		order.New(order.KindGuard, 3, 0, 3),
	}

	// Act
	filtered := live.Filter(factory)

	// Assert
	expected := order.Queue{
		order.New(order.KindFight, 9, 0, 9),
		order.New(order.KindMove, 2, 0, 2),
		order.New(order.KindGuard, 3, 0, 3),
	}
	assert.True(t, filtered.Equal(expected), "got %s, want %s", filtered, expected)
}

func TestQueue_Filter_EmptyFactoryOnlyDropsWaits(t *testing.T) {
	// Arrange
	live := order.Queue{
		order.New(order.KindWait),
		order.New(order.KindMove, 4, 0, 4),
	}

	// Act
	filtered := live.Filter(nil)

	// Assert
	require.Len(t, filtered, 1)
	assert.Equal(t, order.KindMove, filtered[0].Kind)
}

func TestQueue_Filter_ParamMismatchIsNotADuplicate(t *testing.T) {
	// Arrange
	factory := order.Queue{order.New(order.KindMove, 0, 0, 0)}
	live := order.Queue{order.New(order.KindMove, 0, 0, 1)}

	// Act
	filtered := live.Filter(factory)

	// Assert
	require.Len(t, filtered, 1)
}

func TestQueue_LastMove_ReturnsFinalMove(t *testing.T) {
	// Arrange
	q := order.Queue{
		order.New(order.KindMove, 1, 0, 1),
		order.New(order.KindPatrol, 2, 0, 2),
		order.New(order.KindMove, 3, 0, 3),
		order.New(order.KindGuard, 4, 0, 4),
	}

	// Act
	last, ok := q.LastMove()

	// Assert
	require.True(t, ok)
	assert.Equal(t, []float64{3, 0, 3}, last.Params)
}

func TestQueue_LastMove_NoMovePresent(t *testing.T) {
	// Arrange
	q := order.Queue{
		order.New(order.KindGuard, 4, 0, 4),
		order.New(order.KindWait),
	}

	// Act
	_, ok := q.LastMove()

	// Assert
	assert.False(t, ok)
}

func TestQueue_LastMove_EmptyQueue(t *testing.T) {
	// Act
	_, ok := order.Queue{}.LastMove()

	// Assert
	assert.False(t, ok)
}

func TestQueue_Clone_Independent(t *testing.T) {
	// Arrange
	original := order.Queue{order.New(order.KindMove, 1, 0, 1)}

	// Act
	clone := original.Clone()
	clone[0].Params[2] = 42

	// Assert
	assert.Equal(t, float64(1), original[0].Params[2])
}

func TestQueue_Contains(t *testing.T) {
	// Arrange
	q := order.Queue{
		order.New(order.KindMove, 1, 0, 1),
		order.New(order.KindPatrol, 2, 0, 2),
	}

	// Act & Assert
	assert.True(t, q.Contains(order.New(order.KindPatrol, 2, 0, 2)))
	assert.False(t, q.Contains(order.New(order.KindPatrol, 2, 0, 3)))
}
