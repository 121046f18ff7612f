// ADI no-OS peripheral support
// https://github.com/analogdevicesinc/no-os-sdcard
//
// Copyright (c) Analog Devices, Inc.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package gpio implements a port/pin abstraction for a memory-mapped GPIO
// block, generalized from a per-peripheral global-state driver into an
// explicit, non-owning controller handle (spec.md §9: "lift them into an
// explicit controller handle that the session holds a non-owning reference
// to").
//
// Pin numbers are packed port/pin pairs: the low 4 bits select the pin
// within a port, the next 4 bits select the port, mirroring the PIN()/PORT()
// macro pair used by the reference platform driver.
package gpio

import "fmt"

// Direction of a configured pin.
type Direction int

const (
	In Direction = iota
	Out
)

// pinsPerPort caps how many pins a single port register can address in the
// packed port/pin numbering scheme.
const pinsPerPort = 16

func port(num int) int { return (num >> 4) & 0x0F }
func pin(num int) uint { return uint(num & 0x0F) }

// RegisterMap is the minimal register surface a Controller drives. A real
// board wires this to the actual memory-mapped peripheral; tests wire it to
// an in-memory fake.
type RegisterMap interface {
	// SetDirection configures the direction of the numbered pin on the
	// given port.
	SetDirection(port int, p uint, dir Direction) error
	// SetValue drives the numbered pin's output latch high or low.
	SetValue(port int, p uint, high bool) error
	// Value returns the numbered pin's input level.
	Value(port int, p uint) (bool, error)
}

// Controller is a non-owning handle to a GPIO block: it holds a reference to
// the register map but does not own its lifecycle. Multiple Pin instances
// may share one Controller.
type Controller struct {
	regs RegisterMap
}

// NewController wraps regs in a Controller. regs outlives the Controller.
func NewController(regs RegisterMap) *Controller {
	return &Controller{regs: regs}
}

// Pin is one configured GPIO line.
type Pin struct {
	ctrl *Controller
	num  int
}

// Configure validates and returns a handle for GPIO number num (0 <= num <
// 256, packed as port<<4|pin).
func (c *Controller) Configure(num int) (*Pin, error) {
	if num < 0 || num > 0xFF || pin(num) >= pinsPerPort {
		return nil, fmt.Errorf("gpio: invalid pin number %d", num)
	}
	return &Pin{ctrl: c, num: num}, nil
}

// Out configures the pin as an output.
func (p *Pin) Out() error {
	return p.ctrl.regs.SetDirection(port(p.num), pin(p.num), Out)
}

// In configures the pin as an input.
func (p *Pin) In() error {
	return p.ctrl.regs.SetDirection(port(p.num), pin(p.num), In)
}

// High drives the pin high.
func (p *Pin) High() error {
	return p.ctrl.regs.SetValue(port(p.num), pin(p.num), true)
}

// Low drives the pin low.
func (p *Pin) Low() error {
	return p.ctrl.regs.SetValue(port(p.num), pin(p.num), false)
}

// Value returns the pin's current input level.
func (p *Pin) Value() (bool, error) {
	return p.ctrl.regs.Value(port(p.num), pin(p.num))
}
