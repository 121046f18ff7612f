package sdcard

import "github.com/analogdevicesinc/no-os-sdcard/transport"

// BlockSize is the fixed physical transfer unit of the card.
const BlockSize = 512

const (
	tokenStartSingle = 0xFE
	tokenStartMulti  = 0xFC
	tokenStopMulti   = 0xFD

	writeRespMask     = 0x0E
	writeRespAccepted = 0x04
	writeRespCRCErr   = 0x0A
	writeRespWriteErr = 0x0C

	dataErrorMask = 0xF0
)

// writeBlock sends exactly one BlockSize payload wrapped in start token,
// payload, filler CRC, response token and busy-wait, per spec.md §4.3.
func (s *Session) writeBlock(src []byte, multi bool) error {
	if len(src) != BlockSize {
		return protocolErrorf("writeBlock: payload must be %d bytes, got %d", BlockSize, len(src))
	}

	token := s.scratch[:1]
	if multi {
		token[0] = tokenStartMulti
	} else {
		token[0] = tokenStartSingle
	}

	if err := s.pipe.Exchange(token, 1); err != nil {
		return transportErrorf(err, "write: start token exchange failed")
	}

	// Exchange overwrites its buffer with the received bytes, so the payload
	// is staged in a copy to leave the caller's src intact.
	var payload [BlockSize]byte
	copy(payload[:], src)
	if err := s.pipe.Exchange(payload[:], BlockSize); err != nil {
		return transportErrorf(err, "write: payload exchange failed")
	}

	crc := s.scratch[:2]
	crc[0], crc[1] = 0xFF, 0xFF
	if err := s.pipe.Exchange(crc, 2); err != nil {
		return transportErrorf(err, "write: CRC exchange failed")
	}

	var resp byte
	if err := s.waitForResponseByte(&resp); err != nil {
		return err
	}

	switch resp & writeRespMask {
	case writeRespAccepted:
		// fall through to busy-wait
	case writeRespCRCErr:
		return protocolErrorf("write: card reported CRC error")
	case writeRespWriteErr:
		return protocolErrorf("write: card reported write error")
	default:
		return protocolErrorf("write: unexpected response token %#02x", resp)
	}

	return s.waitWhileBusy()
}

// readBlock receives exactly one BlockSize payload into dst, per spec.md
// §4.3.
func (s *Session) readBlock(dst []byte) error {
	if len(dst) != BlockSize {
		return protocolErrorf("readBlock: destination must be %d bytes, got %d", BlockSize, len(dst))
	}

	var resp byte
	if err := s.waitForResponseByte(&resp); err != nil {
		return err
	}

	if resp&dataErrorMask == 0 {
		return protocolErrorf("read: data error token %#02x (generic=%t cc=%t ecc=%t range=%t)",
			resp, resp&0x1 != 0, resp&0x2 != 0, resp&0x4 != 0, resp&0x8 != 0)
	}

	if resp != tokenStartSingle {
		return protocolErrorf("read: expected start-of-block token %#02x, got %#02x", tokenStartSingle, resp)
	}

	for i := range dst {
		dst[i] = transport.Idle
	}
	if err := s.pipe.Exchange(dst, BlockSize); err != nil {
		return transportErrorf(err, "read: payload exchange failed")
	}

	crc := s.scratch[:2]
	crc[0], crc[1] = transport.Idle, transport.Idle
	if err := s.pipe.Exchange(crc, 2); err != nil {
		return transportErrorf(err, "read: CRC exchange failed")
	}

	return nil
}
