// ADI no-OS peripheral support
// https://github.com/analogdevicesinc/no-os-sdcard
//
// Copyright (c) Analog Devices, Inc.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package irq implements an external-interrupt line dispatcher, generalized
// from a per-line global bitmap-and-callback-table driver into an explicit
// controller handle (spec.md §9). Re-entrancy into a Session from an IRQ
// handler is prohibited (spec.md §5) — handlers registered here must defer
// any sdcard work to a non-IRQ context.
package irq

import (
	"fmt"
	"sync"
)

// Line backend performs the hardware-level enable/disable for one external
// interrupt line. A real board wires this to its NVIC/XINT controller;
// tests wire it to a fake that just counts calls.
type Line interface {
	Enable(id int) error
	Disable(id int) error
}

// Handler is invoked when the line fires. It must not call back into a
// sdcard.Session (spec.md §5 re-entrancy prohibition).
type Handler func()

// Controller dispatches external interrupt lines to registered handlers. It
// holds a non-owning reference to the underlying Line backend.
type Controller struct {
	line Line

	mu       sync.Mutex
	handlers map[int]Handler
	enabled  map[int]bool
}

// NewController wraps line in a Controller.
func NewController(line Line) *Controller {
	return &Controller{
		line:     line,
		handlers: make(map[int]Handler),
		enabled:  make(map[int]bool),
	}
}

// Register attaches handler to line id. Registering an already-registered
// id replaces its handler.
func (c *Controller) Register(id int, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[id] = handler
}

// Enable arms line id, invoking the underlying backend only on the
// transition from disabled to enabled.
func (c *Controller) Enable(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.handlers[id]; !ok {
		return fmt.Errorf("irq: line %d has no registered handler", id)
	}
	if c.enabled[id] {
		return nil
	}
	if err := c.line.Enable(id); err != nil {
		return fmt.Errorf("irq: enable line %d: %w", id, err)
	}
	c.enabled[id] = true
	return nil
}

// Disable disarms line id.
func (c *Controller) Disable(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled[id] {
		return nil
	}
	if err := c.line.Disable(id); err != nil {
		return fmt.Errorf("irq: disable line %d: %w", id, err)
	}
	c.enabled[id] = false
	return nil
}

// Dispatch invokes the handler registered for id, if any and if enabled.
// Board backends call this from their actual interrupt vector.
func (c *Controller) Dispatch(id int) {
	c.mu.Lock()
	handler, ok := c.handlers[id]
	armed := c.enabled[id]
	c.mu.Unlock()

	if ok && armed {
		handler()
	}
}
