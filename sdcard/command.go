package sdcard

import "github.com/analogdevicesinc/no-os-sdcard/transport"

// Command indices used by the session. Values are the bare 0..63 command
// index; acmdFlag marks an application command (ACMD) that must be preceded
// by CMD55.
const (
	cmdGoIdleState    = 0  // CMD0 - reset, enter SPI mode
	cmdSendIfCond     = 8  // CMD8 - interface condition (voltage/check pattern)
	cmdReadSingle     = 17 // CMD17 - single block read
	cmdReadMulti      = 18 // CMD18 - multiple block read
	cmdStopTransfer   = 12 // CMD12 - stop transmission
	cmdWriteSingle    = 24 // CMD24 - single block write
	cmdWriteMulti     = 25 // CMD25 - multiple block write
	cmdSendCSD        = 9  // CMD9 - read Card-Specific Data
	cmdReadOCR        = 58 // CMD58 - read OCR (capacity class)
	cmdAppCmd         = 55 // CMD55 - next command is application-specific
	acmdSendOpCond    = 41 // ACMD41 - SD_SEND_OP_COND

	acmdFlag = 0x80
)

// Response lengths (bytes).
const (
	respR1 = 1
	respR3 = 5 // also R7
)

// R1 status bits.
const (
	r1IdleState  = 0x01
	r1ReadyState = 0x00
)

const (
	stuffArg   = 0x00000000
	cmd8Arg    = 0x000001AA
	acmd41HCS  = 0x40000000
	cmd0CRC    = 0x95
	cmd8CRC    = 0x87
	crcFiller  = 0xFF
	cmdFrameLen = 6
)

// command is the ephemeral descriptor for a single command/response
// exchange, per spec.md §3.
type command struct {
	cmd         uint32
	arg         uint32
	responseLen int
	response    [5]byte
}

// sendCommand frames and transmits a 6-byte command, transparently issuing
// the CMD55 ACMD preamble when cmd.cmd has the application-command bit set,
// and reads the response into cmd.response.
func (s *Session) sendCommand(cmd *command) error {
	if cmd.cmd&acmdFlag != 0 {
		pre := command{cmd: cmdAppCmd, arg: stuffArg, responseLen: respR1}
		if err := s.sendCommand(&pre); err != nil {
			return err
		}
		if pre.response[0] != r1IdleState {
			return protocolErrorf("CMD55 preamble: expected idle state 0x01, got %#02x", pre.response[0])
		}
	}

	idx := cmd.cmd &^ acmdFlag

	buf := s.scratch[:cmdFrameLen]
	buf[0] = 0x40 | byte(idx&0x3F)
	buf[1] = byte(cmd.arg >> 24)
	buf[2] = byte(cmd.arg >> 16)
	buf[3] = byte(cmd.arg >> 8)
	buf[4] = byte(cmd.arg)

	switch idx {
	case cmdGoIdleState:
		buf[5] = cmd0CRC
	case cmdSendIfCond:
		buf[5] = cmd8CRC
	default:
		buf[5] = crcFiller
	}

	s.logf("cmd%d arg=%#08x", idx, cmd.arg)

	if err := s.pipe.Exchange(buf, cmdFrameLen); err != nil {
		return transportErrorf(err, "CMD%d: frame exchange failed", idx)
	}

	if err := s.waitForResponseByte(&cmd.response[0]); err != nil {
		return err
	}

	if cmd.responseLen > 1 {
		rest := s.scratch[:cmd.responseLen-1]
		for i := range rest {
			rest[i] = transport.Idle
		}
		if err := s.pipe.Exchange(rest, len(rest)); err != nil {
			return transportErrorf(err, "CMD%d: response tail exchange failed", idx)
		}
		copy(cmd.response[1:cmd.responseLen], rest)
	}

	return nil
}

// waitForResponseByte repeatedly exchanges a single idle byte until the
// received byte is not 0xFF, bounded by s.responseWaitLimit.
func (s *Session) waitForResponseByte(out *byte) error {
	buf := s.scratch[:1]

	for i := 0; i < s.responseWaitLimit; i++ {
		buf[0] = transport.Idle

		if err := s.pipe.Exchange(buf, 1); err != nil {
			return transportErrorf(err, "response poll: exchange failed")
		}

		if buf[0] != transport.Idle {
			*out = buf[0]
			return nil
		}
	}

	return protocolErrorf("timed out waiting for response byte")
}

// waitWhileBusy polls single bytes until a non-zero byte is received,
// bounded by s.busyWaitLimit, i.e. the card has released the bus.
func (s *Session) waitWhileBusy() error {
	buf := s.scratch[:1]

	for i := 0; i < s.busyWaitLimit; i++ {
		buf[0] = transport.Idle

		if err := s.pipe.Exchange(buf, 1); err != nil {
			return transportErrorf(err, "busy poll: exchange failed")
		}

		if buf[0] != 0x00 {
			return nil
		}
	}

	return protocolErrorf("timed out waiting for card to release busy")
}
