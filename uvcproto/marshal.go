package uvcproto

import "encoding/binary"

// Marshal encodes a StreamingControl into its 34-byte little-endian wire
// form.
func (s StreamingControl) Marshal() [StreamingControlWireLength]byte {
	var b [StreamingControlWireLength]byte
	le := binary.LittleEndian
	le.PutUint16(b[0:2], s.Hint)
	b[2] = s.FormatIndex
	b[3] = s.FrameIndex
	le.PutUint32(b[4:8], s.FrameInterval)
	le.PutUint16(b[8:10], s.KeyFrameRate)
	le.PutUint16(b[10:12], s.PFrameRate)
	le.PutUint16(b[12:14], s.CompQuality)
	le.PutUint16(b[14:16], s.CompWindowSize)
	le.PutUint16(b[16:18], s.Delay)
	le.PutUint32(b[18:22], s.MaxVideoFrameSize)
	le.PutUint32(b[22:26], s.MaxPayloadTransferSize)
	le.PutUint32(b[26:30], s.ClockFrequency)
	b[30] = s.FramingInfo
	b[31] = s.PreferredVersion
	b[32] = s.MinVersion
	b[33] = s.MaxVersion
	return b
}

// Unmarshal decodes a StreamingControl from the leading 26+ bytes of a
// DATA-phase payload, per spec.md §4.1 ("parse the first 26+ bytes as a
// StreamingControl"). Fields beyond a short payload are left zero.
func Unmarshal(data []byte) StreamingControl {
	var s StreamingControl
	le := binary.LittleEndian
	get16 := func(off int) uint16 {
		if off+2 > len(data) {
			return 0
		}
		return le.Uint16(data[off : off+2])
	}
	get32 := func(off int) uint32 {
		if off+4 > len(data) {
			return 0
		}
		return le.Uint32(data[off : off+4])
	}
	get8 := func(off int) uint8 {
		if off >= len(data) {
			return 0
		}
		return data[off]
	}

	s.Hint = get16(0)
	s.FormatIndex = get8(2)
	s.FrameIndex = get8(3)
	s.FrameInterval = get32(4)
	s.KeyFrameRate = get16(8)
	s.PFrameRate = get16(10)
	s.CompQuality = get16(12)
	s.CompWindowSize = get16(14)
	s.Delay = get16(16)
	s.MaxVideoFrameSize = get32(18)
	s.MaxPayloadTransferSize = get32(22)
	s.ClockFrequency = get32(26)
	s.FramingInfo = get8(30)
	s.PreferredVersion = get8(31)
	s.MinVersion = get8(32)
	s.MaxVersion = get8(33)
	return s
}
