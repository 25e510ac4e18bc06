package sharedcache

// DefaultLFSRSeed is the reset value of the replacement generator. It must
// not be zero, as a zero LFSR never leaves the zero state.
const DefaultLFSRSeed uint32 = 0x13579bdf

// lfsrFeedback implements taps at bits 32, 22, 2, and 1, a maximal-length
// polynomial for a 32-bit register.
const lfsrFeedback uint32 = 0x80200003

// An LFSR is a 32-bit Galois linear-feedback shift register. Starting from
// the same seed, the generated sequence is identical across runs.
type LFSR struct {
	seed  uint32
	state uint32
}

// NewLFSR creates an LFSR with the given seed. A zero seed falls back to
// DefaultLFSRSeed.
func NewLFSR(seed uint32) *LFSR {
	if seed == 0 {
		seed = DefaultLFSRSeed
	}

	return &LFSR{seed: seed, state: seed}
}

// Next advances the register once and returns the new value.
func (l *LFSR) Next() uint32 {
	lsb := l.state & 1
	l.state >>= 1

	if lsb == 1 {
		l.state ^= lfsrFeedback
	}

	return l.state
}

// Reset returns the register to its seed value.
func (l *LFSR) Reset() {
	l.state = l.seed
}
