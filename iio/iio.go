// ADI no-OS peripheral support
// https://github.com/analogdevicesinc/no-os-sdcard
//
// Copyright (c) Analog Devices, Inc.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package iio generalizes the reference platform's IIO application wiring
// (instantiate a device, wrap it in an iio_device with a channel count,
// register it with iio_register, expose read_data/write_data/get_xml
// function pointers) into an in-process device registry.
package iio

import (
	"fmt"
	"sync"
)

// Channel describes one IIO channel exposed by a Device.
type Channel struct {
	Name    string
	Index   int
	Output  bool
	ScanLen int // natural transfer unit in bytes; ReadRaw/WriteRaw move len(buf) bytes
}

// Device is the Go analogue of the reference's iio_device: a name, a set of
// channels, and raw read/write entry points. Scan/buffer/trigger machinery
// from the original ADC device is intentionally absent — a byte-addressable
// block device has no streaming capture to buffer.
type Device interface {
	Name() string
	Channels() []Channel
	ReadRaw(channel int, dst []byte) (int, error)
	WriteRaw(channel int, src []byte) (int, error)
}

// Registry is the Go analogue of the reference's global iio_register /
// iio_unregister table.
type Registry struct {
	mu      sync.Mutex
	devices map[string]Device
}

// NewRegistry returns an empty device registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]Device)}
}

// Register adds dev under its Name(). It fails if a device with the same
// name is already registered, mirroring the reference's single-slot
// per-name registration.
func (r *Registry) Register(dev Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[dev.Name()]; exists {
		return fmt.Errorf("iio: device %q already registered", dev.Name())
	}
	r.devices[dev.Name()] = dev
	return nil
}

// Unregister removes the device registered under name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[name]; !exists {
		return fmt.Errorf("iio: device %q not registered", name)
	}
	delete(r.devices, name)
	return nil
}

// Lookup returns the device registered under name.
func (r *Registry) Lookup(name string) (Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dev, ok := r.devices[name]
	return dev, ok
}
