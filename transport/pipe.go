// ADI no-OS peripheral support
// https://github.com/analogdevicesinc/no-os-sdcard
//
// Copyright (c) Analog Devices, Inc.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package transport defines the byte-pipe contract that the sdcard package
// is built against: a full-duplex, synchronous, simultaneous-write-and-read
// primitive over a caller-supplied buffer.
//
// Concrete pipes (bit-banged SPI, a hardware SPI controller's blocking
// transfer call, a mocked pipe for tests) live outside this package; it
// exists only to name the interface every layer above is coded to.
package transport

// Idle is the byte clocked out while only expecting to receive: the SD SPI
// protocol treats 0xFF as "no data", so a caller filling a slot with Idle
// before Exchange is polling for a response.
const Idle = 0xFF

// Pipe is a full-duplex byte channel. Exchange transmits buf[i] for every
// i in [0, n) and overwrites buf[i] with the byte simultaneously received in
// that slot. The chip-select assertion policy (if any) for the full duration
// of one command/data exchange chain is the pipe's responsibility, not the
// caller's.
//
// Implementations must exchange exactly n bytes or return a non-nil error;
// partial exchanges are not part of the contract.
type Pipe interface {
	Exchange(buf []byte, n int) error
}
