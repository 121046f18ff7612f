package sdcard

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/analogdevicesinc/no-os-sdcard/bits"
	"github.com/analogdevicesinc/no-os-sdcard/transport"
)

const (
	// defaultResponseWaitLimit bounds the command-response busy-wait.
	// The reference C driver uses ~2^25 iterations; callers on slower
	// transports may need to raise it (WithResponseWaitLimit).
	defaultResponseWaitLimit = 1 << 25

	// defaultBusyWaitLimit bounds the card-busy poll after a block write.
	defaultBusyWaitLimit = 1 << 25

	// defaultACMD41Limit bounds the "leave idle" loop during init. The
	// reference C driver retries ACMD41 without any bound, which can
	// hang init forever against a non-responsive card; spec.md §9 flags
	// this as an open question and recommends a bounded wait.
	defaultACMD41Limit = 1000

	cmd0RetryLimit = 5

	// csdBlockLen is the CSD register plus its trailing CRC, as read
	// off the wire after the CMD9 start-of-block token.
	csdBlockLen = 18
)

// Session is a single open card. One Session must be used by at most one
// goroutine at a time; it performs no locking of its own (spec.md §5).
type Session struct {
	pipe transport.Pipe

	memorySize uint64

	// scratch stages command frames, CRC filler and CSD bytes. It is
	// sized for the largest of those (the 18-byte CSD read), not for
	// block payloads: the read-modify-write path owns its own 512-byte
	// buffers (spec.md §3, §9).
	scratch [csdBlockLen]byte

	responseWaitLimit int
	busyWaitLimit      int
	acmd41Limit        int

	log *logrus.Entry
}

// Option configures a Session at Open time.
type Option func(*Session)

// WithLogger attaches a logrus entry that the session logs wire-level
// detail to at Debug level; failures are returned as errors, not logged.
// The default discards all output, and a nil entry keeps that default.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithResponseWaitLimit overrides the command-response busy-wait ceiling.
func WithResponseWaitLimit(n int) Option {
	return func(s *Session) { s.responseWaitLimit = n }
}

// WithBusyWaitLimit overrides the card-busy poll ceiling.
func WithBusyWaitLimit(n int) Option {
	return func(s *Session) { s.busyWaitLimit = n }
}

// WithACMD41Limit overrides the bounded retry count for the "leave idle"
// step of initialization.
func WithACMD41Limit(n int) Option {
	return func(s *Session) { s.acmd41Limit = n }
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// Open runs the card initialization handshake (spec.md §4.5) over pipe and
// returns a ready Session with MemorySize populated. pipe is not owned by
// the session and must outlive it.
func Open(pipe transport.Pipe, opts ...Option) (*Session, error) {
	s := &Session{
		pipe:              pipe,
		responseWaitLimit: defaultResponseWaitLimit,
		busyWaitLimit:     defaultBusyWaitLimit,
		acmd41Limit:       defaultACMD41Limit,
		log:               discardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.init(); err != nil {
		return nil, err
	}

	return s, nil
}

// Close releases the session. No protocol-level teardown is issued
// (spec.md §4.5 Teardown); the card's state after Close is undefined and a
// new Session should be Opened before further use.
func (s *Session) Close() error {
	return nil
}

// MemorySize returns the total addressable byte count discovered at Open.
func (s *Session) MemorySize() uint64 {
	return s.memorySize
}

func (s *Session) logf(format string, args ...interface{}) {
	s.log.Debugf(format, args...)
}

// init runs the strict-order handshake from power-up to "ready for data",
// per spec.md §4.5.
func (s *Session) init() error {
	warmup := make([]byte, 10)
	for i := range warmup {
		warmup[i] = transport.Idle
	}
	if err := s.pipe.Exchange(warmup, len(warmup)); err != nil {
		return transportErrorf(err, "init: warm-up clocks failed")
	}

	if err := s.enterSPIMode(); err != nil {
		return err
	}

	if err := s.checkInterfaceCondition(); err != nil {
		return err
	}

	// CMD59 (enable CRC) is intentionally never sent: the driver runs
	// with CRC disabled end to end and emits filler bytes in CRC slots
	// (spec.md §9).

	if err := s.leaveIdleState(); err != nil {
		return err
	}

	if err := s.checkCapacityClass(); err != nil {
		return err
	}

	return s.readCSD()
}

func (s *Session) enterSPIMode() error {
	cmd := command{cmd: cmdGoIdleState, arg: stuffArg, responseLen: respR1}

	for attempt := 0; ; attempt++ {
		if err := s.sendCommand(&cmd); err != nil {
			return err
		}
		if cmd.response[0] == r1IdleState {
			s.log.Debug("CMD0: entered idle state")
			return nil
		}
		if attempt+1 >= cmd0RetryLimit {
			return protocolErrorf("CMD0: card did not enter idle state after %d attempts, R1=%#02x", cmd0RetryLimit, cmd.response[0])
		}
	}
}

func (s *Session) checkInterfaceCondition() error {
	cmd := command{cmd: cmdSendIfCond, arg: cmd8Arg, responseLen: respR3}
	if err := s.sendCommand(&cmd); err != nil {
		return err
	}

	if cmd.response[0] != r1IdleState || cmd.response[3] != 0x01 || cmd.response[4] != 0xAA {
		return protocolErrorf("CMD8: not a V2.0+ 3.3V card (R1=%#02x echo=%#02x,%#02x)",
			cmd.response[0], cmd.response[3], cmd.response[4])
	}

	s.log.Debug("CMD8: interface condition accepted")
	return nil
}

func (s *Session) leaveIdleState() error {
	arg := uint32(acmd41HCS)

	for attempt := 0; attempt < s.acmd41Limit; attempt++ {
		cmd := command{cmd: acmdFlag | acmdSendOpCond, arg: arg, responseLen: respR1}
		if err := s.sendCommand(&cmd); err != nil {
			return err
		}
		if cmd.response[0] == r1ReadyState {
			s.log.Debug("ACMD41: card ready")
			return nil
		}
		arg = 0x00000000
	}

	return protocolErrorf("ACMD41: card did not leave idle state within %d attempts", s.acmd41Limit)
}

func (s *Session) checkCapacityClass() error {
	cmd := command{cmd: cmdReadOCR, arg: stuffArg, responseLen: respR3}
	if err := s.sendCommand(&cmd); err != nil {
		return err
	}

	if cmd.response[0] != r1ReadyState {
		return protocolErrorf("CMD58: not ready, R1=%#02x", cmd.response[0])
	}

	ocr := uint32(cmd.response[1])<<24 | uint32(cmd.response[2])<<16 | uint32(cmd.response[3])<<8 | uint32(cmd.response[4])
	const ccsBitPos = 30
	if !bits.Get(&ocr, ccsBitPos) {
		return protocolErrorf("CMD58: unsupported capacity class (SDSC card)")
	}

	s.log.Debug("CMD58: high/extended capacity class confirmed")
	return nil
}

func (s *Session) readCSD() error {
	cmd := command{cmd: cmdSendCSD, arg: stuffArg, responseLen: respR1}
	if err := s.sendCommand(&cmd); err != nil {
		return err
	}
	if cmd.response[0] != r1ReadyState {
		return protocolErrorf("CMD9: not ready, R1=%#02x", cmd.response[0])
	}

	var token byte
	if err := s.waitForResponseByte(&token); err != nil {
		return err
	}
	if token != tokenStartSingle {
		return protocolErrorf("CMD9: expected start-of-block token %#02x, got %#02x", tokenStartSingle, token)
	}

	csd := s.scratch[:csdBlockLen]
	for i := range csd {
		csd[i] = transport.Idle
	}
	if err := s.pipe.Exchange(csd, csdBlockLen); err != nil {
		return transportErrorf(err, "CMD9: CSD exchange failed")
	}

	// V2.0+ CSD layout (spec.md §4.5 step 8, §9): the 22-bit C_SIZE field
	// spans the low 6 bits of csd[7] plus csd[8:10]. Masking with 0x3F
	// here (not the reference's conservative 5-bit mask) is required or
	// capacity is under-reported for cards >= 1 TiB.
	const cSizeMask = 0x3FFFFF
	reg := uint32(csd[7])<<16 | uint32(csd[8])<<8 | uint32(csd[9])
	cSize := uint64(bits.GetN(&reg, 0, cSizeMask))
	s.memorySize = (cSize + 1) * BlockSize * 1024

	s.log.Debugf("CMD9: memory_size=%d bytes", s.memorySize)
	return nil
}
