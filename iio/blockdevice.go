package iio

import (
	"fmt"

	"github.com/analogdevicesinc/no-os-sdcard/sdcard"
)

// BlockDeviceAdapter exposes an open sdcard.Session as a single-channel raw
// IIO device: the Go analogue of registering the reference's AXI ADC under
// the IIO framework, scoped down to what a byte-addressable block device
// can expose.
type BlockDeviceAdapter struct {
	name    string
	session *sdcard.Session
}

// NewBlockDeviceAdapter wraps session as an IIO device named name.
func NewBlockDeviceAdapter(name string, session *sdcard.Session) *BlockDeviceAdapter {
	return &BlockDeviceAdapter{name: name, session: session}
}

func (a *BlockDeviceAdapter) Name() string { return a.name }

// Channels reports a single raw channel spanning the whole card.
func (a *BlockDeviceAdapter) Channels() []Channel {
	return []Channel{{Name: "raw0", Index: 0, Output: false, ScanLen: sdcard.BlockSize}}
}

// ReadRaw reads len(dst) bytes from channel 0 starting at byte offset 0.
// Non-zero channel indices are rejected: the card has exactly one channel.
func (a *BlockDeviceAdapter) ReadRaw(channel int, dst []byte) (int, error) {
	if channel != 0 {
		return 0, fmt.Errorf("iio: block device has a single channel, got index %d", channel)
	}
	if err := a.session.Read(dst, 0, uint64(len(dst))); err != nil {
		return 0, err
	}
	return len(dst), nil
}

// WriteRaw writes src to channel 0 starting at byte offset 0.
func (a *BlockDeviceAdapter) WriteRaw(channel int, src []byte) (int, error) {
	if channel != 0 {
		return 0, fmt.Errorf("iio: block device has a single channel, got index %d", channel)
	}
	if err := a.session.Write(src, 0, uint64(len(src))); err != nil {
		return 0, err
	}
	return len(src), nil
}
