package keybinds_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtsops/reinforce/internal/adapters/keybinds"
)

func TestParse_ValidProfile(t *testing.T) {
	// Arrange
	data := []byte(`
bindings:
  - key: T
    alt: true
    action: tag
  - key: g
    ctrl: true
    shift: true
    action: untag
`)

	// Act
	km, err := keybinds.Parse(data)

	// Assert
	require.NoError(t, err)

	action, ok := km.Resolve("t", true, false, false)
	require.True(t, ok)
	assert.Equal(t, keybinds.ActionTag, action)

	action, ok = km.Resolve("G", false, true, true)
	require.True(t, ok)
	assert.Equal(t, keybinds.ActionUntag, action)
}

func TestParse_UnknownActionRejected(t *testing.T) {
	// Arrange
	data := []byte(`
bindings:
  - key: t
    action: explode
`)

	// Act
	_, err := keybinds.Parse(data)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action must be")
}

func TestParse_DuplicateChordRejected(t *testing.T) {
	// Arrange
	data := []byte(`
bindings:
  - key: t
    alt: true
    action: tag
  - key: t
    alt: true
    action: untag
`)

	// Act
	_, err := keybinds.Parse(data)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rebinds chord")
}

func TestResolve_ModifiersMustMatchExactly(t *testing.T) {
	// Arrange
	km := keybinds.Default()

	// Act
	_, okBareKey := km.Resolve("t", false, false, false)
	_, okExtraModifier := km.Resolve("t", true, true, false)
	action, okExact := km.Resolve("t", true, false, false)

	// Assert
	assert.False(t, okBareKey)
	assert.False(t, okExtraModifier)
	require.True(t, okExact)
	assert.Equal(t, keybinds.ActionTag, action)
}

func TestDefault_CoversBothActions(t *testing.T) {
	// Arrange
	km := keybinds.Default()

	// Act
	tag, okTag := km.Resolve("t", true, false, false)
	untag, okUntag := km.Resolve("u", true, false, false)

	// Assert
	require.True(t, okTag)
	require.True(t, okUntag)
	assert.Equal(t, keybinds.ActionTag, tag)
	assert.Equal(t, keybinds.ActionUntag, untag)
}
