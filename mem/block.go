package mem

// Default geometry of the shared memory system. A cache block is 256 bits
// wide and a core-level write strobe carries one enable bit per 32-bit word.
const (
	BlockSize      = 32
	StrobeBits     = 8
	bytesPerStrobe = BlockSize / StrobeBits
)

// BlockAddr returns the address of the first byte of the block that the
// given address belongs to.
func BlockAddr(addr uint64, log2BlockSize uint64) uint64 {
	mask := uint64(0xffffffffffffffff << log2BlockSize)
	return addr & mask
}

// ExpandStrobe converts an 8-bit word-enable strobe into a per-byte dirty
// mask over a block. Bit i of the strobe enables bytes [4i, 4i+4).
func ExpandStrobe(strobe uint8) []bool {
	mask := make([]bool, BlockSize)
	for bit := 0; bit < StrobeBits; bit++ {
		if strobe&(1<<bit) == 0 {
			continue
		}

		for b := 0; b < bytesPerStrobe; b++ {
			mask[bit*bytesPerStrobe+b] = true
		}
	}

	return mask
}

// MergeMasked overlays the masked bytes of new onto existing, returning
// `(new & mask) | (existing & ~mask)`. A nil mask means all bytes.
func MergeMasked(existing, new []byte, mask []bool) []byte {
	merged := make([]byte, len(existing))
	copy(merged, existing)

	for i := 0; i < len(new) && i < len(merged); i++ {
		if mask == nil || mask[i] {
			merged[i] = new[i]
		}
	}

	return merged
}
