// ADI no-OS peripheral support
// https://github.com/analogdevicesinc/no-os-sdcard
//
// Copyright (c) Analog Devices, Inc.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sdcard implements a block-device layer for SD cards speaking the
// SD protocol over a synchronous, full-duplex byte pipe (SPI mode).
//
// It handles the card initialization handshake (CMD0/CMD8/ACMD41/CMD58/CMD9),
// command framing, response parsing, single- and multi-block read/write, and
// byte-granular addressing on top of the card's fixed 512-byte block size.
// It supports version 2.00+ high/extended-capacity (SDHC/SDXC) cards at
// 3.3V only; card-present detection, CRC generation/verification, SDSC
// cards, write protection, erase and lock commands are out of scope.
//
// A session is single-threaded: callers must serialize access to the
// session and to the underlying transport.Pipe themselves.
package sdcard
