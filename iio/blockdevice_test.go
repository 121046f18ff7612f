package iio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analogdevicesinc/no-os-sdcard/sdcard"
	"github.com/analogdevicesinc/no-os-sdcard/sdcard/sdcardtest"
)

func TestBlockDeviceAdapter_ReadWriteRoundTrip(t *testing.T) {
	card, err := sdcardtest.NewCard(16 * 1024 * 1024)
	require.NoError(t, err)
	session, err := sdcard.Open(card)
	require.NoError(t, err)

	dev := NewBlockDeviceAdapter("card0", session)
	assert.Equal(t, "card0", dev.Name())
	require.Len(t, dev.Channels(), 1)

	payload := bytes.Repeat([]byte{0x5A}, sdcard.BlockSize)
	n, err := dev.WriteRaw(0, payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	dst := make([]byte, sdcard.BlockSize)
	n, err = dev.ReadRaw(0, dst)
	require.NoError(t, err)
	assert.Equal(t, len(dst), n)
	assert.True(t, bytes.Equal(payload, dst))
}

func TestBlockDeviceAdapter_RejectsNonZeroChannel(t *testing.T) {
	card, err := sdcardtest.NewCard(16 * 1024 * 1024)
	require.NoError(t, err)
	session, err := sdcard.Open(card)
	require.NoError(t, err)

	dev := NewBlockDeviceAdapter("card0", session)

	_, err = dev.ReadRaw(1, make([]byte, 1))
	assert.Error(t, err)

	_, err = dev.WriteRaw(1, make([]byte, 1))
	assert.Error(t, err)
}
