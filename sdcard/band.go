package sdcard

import "github.com/analogdevicesinc/no-os-sdcard/transport"

// nblocksFor returns the number of whole blocks spanned by [address,
// address+length), per spec.md §4.4.
func nblocksFor(address, length uint64) uint64 {
	return ((address+length-1)/BlockSize - address/BlockSize) + 1
}

func (s *Session) checkBounds(address, length uint64, buf int) error {
	if uint64(buf) < length {
		return boundsErrorf("buffer too small: have %d bytes, need %d", buf, length)
	}
	if address > s.memorySize || length > s.memorySize || address+length > s.memorySize {
		return boundsErrorf("range [%d, %d) exceeds card size %d", address, address+length, s.memorySize)
	}
	return nil
}

// Read fills dst[0:length] from the card starting at the given byte
// address. length == 0 is a no-op; no command is issued.
func (s *Session) Read(dst []byte, address, length uint64) error {
	if length == 0 {
		return nil
	}
	if err := s.checkBounds(address, length, len(dst)); err != nil {
		return err
	}

	nblocks := nblocksFor(address, length)

	cmdIdx := uint32(cmdReadSingle)
	if nblocks > 1 {
		cmdIdx = cmdReadMulti
	}

	cmd := command{cmd: cmdIdx, arg: uint32(address / BlockSize), responseLen: respR1}
	if err := s.sendCommand(&cmd); err != nil {
		return err
	}
	if cmd.response[0] != r1ReadyState {
		return protocolErrorf("read: CMD%d not accepted, R1=%#02x", cmdIdx, cmd.response[0])
	}

	headOffset := address % BlockSize
	tailOffset := (address + length - 1) % BlockSize

	var scratch [BlockSize]byte
	dataIdx := uint64(0)

	for i := uint64(0); i < nblocks; i++ {
		blockOff := uint64(0)
		if i == 0 {
			blockOff = headOffset
		}

		copyLen := uint64(BlockSize) - blockOff
		if i == nblocks-1 {
			copyLen = tailOffset - blockOff + 1
		}

		if blockOff == 0 && copyLen == BlockSize {
			if err := s.readBlock(dst[dataIdx : dataIdx+copyLen]); err != nil {
				return err
			}
		} else {
			if err := s.readBlock(scratch[:]); err != nil {
				return err
			}
			copy(dst[dataIdx:dataIdx+copyLen], scratch[blockOff:blockOff+copyLen])
		}

		dataIdx += copyLen
	}

	if nblocks > 1 {
		stop := command{cmd: cmdStopTransfer, arg: stuffArg, responseLen: respR1}
		if err := s.sendCommand(&stop); err != nil {
			return err
		}
		if stop.response[0] != r1ReadyState {
			return protocolErrorf("read: CMD12 not accepted, R1=%#02x", stop.response[0])
		}
	}

	return nil
}

// Write commits src[0:length] to the card starting at the given byte
// address, performing a read-modify-write on the head and tail partial
// blocks. length == 0 is a no-op; no command is issued.
func (s *Session) Write(src []byte, address, length uint64) error {
	if length == 0 {
		return nil
	}
	if err := s.checkBounds(address, length, len(src)); err != nil {
		return err
	}

	nblocks := nblocksFor(address, length)
	headOffset := address % BlockSize
	tailOffset := (address + length - 1) % BlockSize

	var firstBlock, lastBlock [BlockSize]byte

	if headOffset != 0 || length < BlockSize {
		firstBlockAddr := address - headOffset
		if err := s.Read(firstBlock[:], firstBlockAddr, BlockSize); err != nil {
			return err
		}
	}

	if nblocks > 1 && tailOffset != BlockSize-1 {
		lastBlockAddr := (address + length - 1) - tailOffset
		if err := s.Read(lastBlock[:], lastBlockAddr, BlockSize); err != nil {
			return err
		}
	}

	cmdIdx := uint32(cmdWriteSingle)
	if nblocks > 1 {
		cmdIdx = cmdWriteMulti
	}

	cmd := command{cmd: cmdIdx, arg: uint32(address / BlockSize), responseLen: respR1}
	if err := s.sendCommand(&cmd); err != nil {
		return err
	}
	if cmd.response[0] != r1ReadyState {
		return protocolErrorf("write: CMD%d not accepted, R1=%#02x", cmdIdx, cmd.response[0])
	}

	dataIdx := uint64(0)

	for i := uint64(0); i < nblocks; i++ {
		blockOff := uint64(0)
		if i == 0 {
			blockOff = headOffset
		}

		copyLen := uint64(BlockSize) - blockOff
		if i == nblocks-1 {
			copyLen = tailOffset - blockOff + 1
		}

		var payload []byte

		switch {
		case blockOff == 0 && copyLen == BlockSize:
			payload = src[dataIdx : dataIdx+copyLen]
		case i == 0:
			copy(firstBlock[blockOff:blockOff+copyLen], src[dataIdx:dataIdx+copyLen])
			payload = firstBlock[:]
		default:
			copy(lastBlock[blockOff:blockOff+copyLen], src[dataIdx:dataIdx+copyLen])
			payload = lastBlock[:]
		}

		if err := s.writeBlock(payload, nblocks > 1); err != nil {
			return err
		}

		dataIdx += copyLen
	}

	if nblocks > 1 {
		stop := s.scratch[:2]
		stop[0] = tokenStopMulti
		stop[1] = transport.Idle

		if err := s.pipe.Exchange(stop, 2); err != nil {
			return transportErrorf(err, "write: stop token exchange failed")
		}
		if err := s.waitWhileBusy(); err != nil {
			return err
		}
	}

	return nil
}
