package devicecommands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analogdevicesinc/no-os-sdcard/sdcard"
	"github.com/analogdevicesinc/no-os-sdcard/sdcard/sdcardtest"
)

func openTestSession(t *testing.T) *sdcard.Session {
	t.Helper()
	card, err := sdcardtest.NewCard(16 * 1024 * 1024)
	require.NoError(t, err)
	s, err := sdcard.Open(card)
	require.NoError(t, err)
	return s
}

func TestSDCardRegistry_InfoReportsCapacity(t *testing.T) {
	s := openTestSession(t)
	r := NewSDCardRegistry(s)

	require.NoError(t, r.Dispatch("info", nil))
}

func TestSDCardRegistry_WriteThenRead(t *testing.T) {
	s := openTestSession(t)
	r := NewSDCardRegistry(s)

	require.NoError(t, r.Dispatch("write", []string{"0", "41424344"}))
	require.NoError(t, r.Dispatch("read", []string{"0", "4"}))

	dst := make([]byte, 4)
	require.NoError(t, s.Read(dst, 0, 4))
	assert.Equal(t, []byte("ABCD"), dst)
}

func TestSDCardRegistry_WriteRejectsInvalidHex(t *testing.T) {
	s := openTestSession(t)
	r := NewSDCardRegistry(s)

	err := r.Dispatch("write", []string{"0", "ZZ"})
	assert.Error(t, err)
}

func TestSDCardRegistry_ReadRejectsWrongArgCount(t *testing.T) {
	s := openTestSession(t)
	r := NewSDCardRegistry(s)

	err := r.Dispatch("read", []string{"0"})
	assert.Error(t, err)
}
