package packet

// checksumSeed is the initial CRC register value used by the ECU.
const checksumSeed = 0xFFFF

// checksumPoly is the CCITT generator polynomial x^16 + x^12 + x^5 + 1.
const checksumPoly = 0x1021

//nolint:gochecknoglobals // Immutable lookup table built at init.
var checksumTable = makeChecksumTable()

func makeChecksumTable() [256]uint16 {
	var table [256]uint16

	for i := range table {
		crc := uint16(i) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ checksumPoly
			} else {
				crc <<= 1
			}
		}

		table[i] = crc
	}

	return table
}

// Checksum returns the CRC-16/XMODEM of data computed from a 0xFFFF seed.
// The ECU appends it little-endian after the payload of both packet kinds.
func Checksum(data []byte) uint16 {
	crc := uint16(checksumSeed)
	for _, b := range data {
		crc = crc<<8 ^ checksumTable[byte(crc>>8)^b]
	}

	return crc
}

// VerifyChecksum reports whether a complete status packet carries the
// checksum of its payload. Length is not checked here.
func VerifyChecksum(frame []byte) bool {
	if len(frame) < 2 {
		return false
	}

	payload := frame[:len(frame)-2]
	stored := uint16(frame[len(frame)-2]) | uint16(frame[len(frame)-1])<<8

	return Checksum(payload) == stored
}
