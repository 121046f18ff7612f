package devicecommands

import (
	"encoding/hex"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/analogdevicesinc/no-os-sdcard/sdcard"
)

// NewSDCardRegistry builds the command table the reference platform would
// have exposed for a CN0209-style command dispatcher, bound to an already
// open card session: capacity info, byte-granular read/write, and help.
func NewSDCardRegistry(session *sdcard.Session) *Registry {
	r := NewRegistry()

	r.Register(Command{
		Name:          "info",
		Description:   "Displays the card capacity in bytes.",
		AcceptedValue: "none",
		Example:       "info",
		Run: func(args []string) error {
			log.Infof("memory_size: %d bytes", session.MemorySize())
			return nil
		},
	})

	r.Register(Command{
		Name:          "read",
		Description:   "Reads len bytes starting at addr and prints them as hex.",
		AcceptedValue: "addr len (decimal)",
		Example:       "read 0 512",
		Run: func(args []string) error {
			addr, length, err := parseAddrLen(args)
			if err != nil {
				return err
			}

			dst := make([]byte, length)
			if err := session.Read(dst, addr, length); err != nil {
				return fmt.Errorf("read: %w", err)
			}

			log.Infof("read %d bytes at %d: %s", length, addr, hex.EncodeToString(dst))
			return nil
		},
	})

	r.Register(Command{
		Name:          "write",
		Description:   "Writes hex-encoded bytes starting at addr.",
		AcceptedValue: "addr hex-bytes",
		Example:       "write 0 41424344",
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("write: expected addr and hex-bytes, got %d args", len(args))
			}

			addr, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("write: invalid addr %q: %w", args[0], err)
			}

			src, err := hex.DecodeString(args[1])
			if err != nil {
				return fmt.Errorf("write: invalid hex payload: %w", err)
			}

			if err := session.Write(src, addr, uint64(len(src))); err != nil {
				return fmt.Errorf("write: %w", err)
			}

			log.Infof("wrote %d bytes at %d", len(src), addr)
			return nil
		},
	})

	r.Register(Command{
		Name:        "help",
		Description: "Displays all available commands.",
		Run: func(args []string) error {
			fmt.Print(r.Help())
			return nil
		},
	})

	return r
}

func parseAddrLen(args []string) (addr, length uint64, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected addr and len, got %d args", len(args))
	}

	addr, err = strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid addr %q: %w", args[0], err)
	}

	length, err = strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid len %q: %w", args[1], err)
	}

	return addr, length, nil
}
