package wire_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtsops/reinforce/pkg/wire"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	// Arrange
	env, err := wire.NewEnvelope("notice", map[string]string{"text": "unit 12 tagged"})
	require.NoError(t, err)

	var buf bytes.Buffer

	// Act
	err = wire.WriteEnvelope(&buf, env)
	require.NoError(t, err)

	decoded, err := wire.ReadEnvelope(&buf)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "notice", decoded.Type)
	assert.JSONEq(t, `{"text":"unit 12 tagged"}`, string(decoded.Data))
}

func TestReadEnvelopeRejectsZeroLength(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(0)))

	// Act
	_, err := wire.ReadEnvelope(&buf)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid message length")
}

func TestReadEnvelopeRejectsOversizedFrame(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(1<<21)))

	// Act
	_, err := wire.ReadEnvelope(&buf)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid message length")
}

func TestReadEnvelopeRejectsTruncatedPayload(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(64)))
	buf.WriteString(`{"type":"hello"`)

	// Act
	_, err := wire.ReadEnvelope(&buf)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read payload")
}
