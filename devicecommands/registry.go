// ADI no-OS peripheral support
// https://github.com/analogdevicesinc/no-os-sdcard
//
// Copyright (c) Analog Devices, Inc.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package devicecommands implements a name-dispatched command table in the
// shape of the reference platform's device command driver (originally a
// static cmd_info[] table paired with a cmdFunction(double*, char) callback
// per command), generalized to a Go registry whose commands run arbitrary
// string arguments against an open card session.
package devicecommands

import (
	"fmt"
	"sort"
)

// Command mirrors the reference struct cmd_info fields (name, description,
// accepted value and worked example), plus the callback the reference
// expressed as a cmdFunction(double*, char) pointer.
type Command struct {
	Name          string
	Description   string
	AcceptedValue string
	Example       string
	Run           func(args []string) error
}

// Registry looks commands up by name and dispatches them, the Go analogue
// of the reference's linear scan over its static cmd_info table.
type Registry struct {
	commands map[string]Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd to the registry, replacing any existing command with
// the same name.
func (r *Registry) Register(cmd Command) {
	r.commands[cmd.Name] = cmd
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Dispatch runs the named command with args, the Go analogue of the
// reference's GetHelp-driven command loop invoking a matched cmdFunction.
func (r *Registry) Dispatch(name string, args []string) error {
	cmd, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("devicecommands: unknown command %q", name)
	}
	return cmd.Run(args)
}

// Names returns every registered command name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Help renders the registered commands, the Go analogue of the reference's
// GetHelp.
func (r *Registry) Help() string {
	out := ""
	for _, name := range r.Names() {
		cmd := r.commands[name]
		out += fmt.Sprintf("%-10s %s\n", cmd.Name, cmd.Description)
		if cmd.AcceptedValue != "" {
			out += fmt.Sprintf("           accepts: %s\n", cmd.AcceptedValue)
		}
		if cmd.Example != "" {
			out += fmt.Sprintf("           example: %s\n", cmd.Example)
		}
	}
	return out
}
