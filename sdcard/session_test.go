package sdcard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analogdevicesinc/no-os-sdcard/sdcard/sdcardtest"
)

const testCardSize = 16 * 1024 * 1024 // 16 MiB, well within a 22-bit C_SIZE

func TestOpen_Success(t *testing.T) {
	card, err := sdcardtest.NewCard(testCardSize)
	require.NoError(t, err)

	s, err := Open(card)
	require.NoError(t, err)
	assert.Equal(t, uint64(testCardSize), s.MemorySize())
}

func TestOpen_RejectsV1Card(t *testing.T) {
	card, err := sdcardtest.NewCard(testCardSize, sdcardtest.WithCMD8Mismatch())
	require.NoError(t, err)

	_, err = Open(card)
	require.Error(t, err)

	var protoErr *ProtocolError
	assert.True(t, errors.As(err, &protoErr), "expected a *ProtocolError, got %T: %v", err, err)
}

func TestOpen_RejectsSDSCCard(t *testing.T) {
	card, err := sdcardtest.NewCard(testCardSize, sdcardtest.WithHighCapacity(false))
	require.NoError(t, err)

	_, err = Open(card)
	require.Error(t, err)

	var protoErr *ProtocolError
	assert.True(t, errors.As(err, &protoErr))
}

func TestOpen_ACMD41EventuallyReady(t *testing.T) {
	card, err := sdcardtest.NewCard(testCardSize, sdcardtest.WithACMD41ReadyAfter(5))
	require.NoError(t, err)

	s, err := Open(card, WithACMD41Limit(10))
	require.NoError(t, err)
	assert.Equal(t, uint64(testCardSize), s.MemorySize())
}

func TestOpen_ACMD41BoundedRetryFails(t *testing.T) {
	card, err := sdcardtest.NewCard(testCardSize, sdcardtest.WithACMD41ReadyAfter(1000))
	require.NoError(t, err)

	_, err = Open(card, WithACMD41Limit(3))
	require.Error(t, err)

	var protoErr *ProtocolError
	assert.True(t, errors.As(err, &protoErr))
}
