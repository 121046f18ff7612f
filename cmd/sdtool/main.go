// ADI no-OS peripheral support
// https://github.com/analogdevicesinc/no-os-sdcard
//
// Copyright (c) Analog Devices, Inc.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Command sdtool is the command-line demo spec.md §1 calls out as an
// external collaborator of the core: it wires a byte pipe, a GPIO chip
// select and a card-detect IRQ line into an open sdcard.Session
// and drives it from a line-oriented command prompt.
//
// Concrete memory-mapped register backends for a specific Analog Devices
// microcontroller are out of scope (spec.md §1); this binary drives the
// simulated card in sdcard/sdcardtest standing in for one, the same way
// the package's own tests do.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/analogdevicesinc/no-os-sdcard/devicecommands"
	"github.com/analogdevicesinc/no-os-sdcard/platform/gpio"
	"github.com/analogdevicesinc/no-os-sdcard/platform/irq"
	"github.com/analogdevicesinc/no-os-sdcard/sdcard"
	"github.com/analogdevicesinc/no-os-sdcard/sdcard/sdcardtest"
)

// config is the on-disk demo configuration, in a "one struct, one
// yaml.Unmarshal" style.
type config struct {
	CardSizeBytes  uint64 `yaml:"card_size_bytes"`
	ChipSelectPin  int    `yaml:"chip_select_pin"`
	CardDetectLine int    `yaml:"card_detect_line"`
}

func defaultConfig() config {
	return config{
		CardSizeBytes:  32 * 1024 * 1024,
		ChipSelectPin:  0x00,
		CardDetectLine: 0,
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func main() {
	var (
		configFile = pflag.StringP("config-file", "c", "", "YAML configuration file name.")
		verbose    = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
		help       = pflag.BoolP("help", "h", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "sdtool: SD card SPI block device demo shell")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	logger := log.New()
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}
	entry := log.NewEntry(logger)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		entry.WithError(err).Fatal("sdtool: configuration error")
	}

	if err := run(entry, cfg); err != nil {
		entry.WithError(err).Fatal("sdtool: fatal error")
	}
}

func run(entry *log.Entry, cfg config) error {
	card, err := sdcardtest.NewCard(cfg.CardSizeBytes)
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}

	gpioCtrl := gpio.NewController(newDemoRegisterMap())
	cs, err := gpioCtrl.Configure(cfg.ChipSelectPin)
	if err != nil {
		return fmt.Errorf("configure chip select: %w", err)
	}
	if err := cs.Out(); err != nil {
		return fmt.Errorf("drive chip select: %w", err)
	}
	if err := cs.Low(); err != nil {
		return fmt.Errorf("assert chip select: %w", err)
	}

	irqCtrl := irq.NewController(newDemoIRQLine())
	irqCtrl.Register(cfg.CardDetectLine, func() {
		entry.Info("card-detect line fired")
	})
	if err := irqCtrl.Enable(cfg.CardDetectLine); err != nil {
		return fmt.Errorf("enable card-detect line: %w", err)
	}

	session, err := sdcard.Open(card, sdcard.WithLogger(entry))
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	entry.Infof("card ready: %d bytes", session.MemorySize())

	registry := devicecommands.NewSDCardRegistry(session)
	return shell(os.Stdin, os.Stdout, registry)
}

func shell(in *os.File, out *os.File, registry *devicecommands.Registry) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "sdtool> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			fmt.Fprint(out, "sdtool> ")
			continue
		}

		if err := registry.Dispatch(fields[0], fields[1:]); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		fmt.Fprint(out, "sdtool> ")
	}
	return scanner.Err()
}

// demoRegisterMap is an in-memory stand-in for the real memory-mapped GPIO
// block a board package would supply.
type demoRegisterMap struct {
	directions map[int]map[uint]gpio.Direction
	values     map[int]map[uint]bool
}

func newDemoRegisterMap() *demoRegisterMap {
	return &demoRegisterMap{
		directions: make(map[int]map[uint]gpio.Direction),
		values:     make(map[int]map[uint]bool),
	}
}

func (r *demoRegisterMap) SetDirection(port int, pin uint, dir gpio.Direction) error {
	if r.directions[port] == nil {
		r.directions[port] = make(map[uint]gpio.Direction)
	}
	r.directions[port][pin] = dir
	return nil
}

func (r *demoRegisterMap) SetValue(port int, pin uint, high bool) error {
	if r.values[port] == nil {
		r.values[port] = make(map[uint]bool)
	}
	r.values[port][pin] = high
	return nil
}

func (r *demoRegisterMap) Value(port int, pin uint) (bool, error) {
	return r.values[port][pin], nil
}

// demoIRQLine is an in-memory stand-in for the real NVIC/XINT backend a
// board package would supply.
type demoIRQLine struct{}

func newDemoIRQLine() *demoIRQLine { return &demoIRQLine{} }

func (*demoIRQLine) Enable(id int) error  { return nil }
func (*demoIRQLine) Disable(id int) error { return nil }
