package proposal

// xorshift32 is the per-worker pseudo-random stream. Four bytes of state make
// reseeding one stream per worker per call essentially free, and the sequence
// is fully determined by (base seed, worker index), the property the
// reproducibility contract rests on.
type xorshift32 struct {
	state uint32
}

// newStream seeds a stream for the given worker. The base seed and worker
// index are mixed through two rounds of a splitmix-style finalizer so that
// adjacent workers land in unrelated regions of the cycle; the all-zero
// state, which xorshift cannot leave, is remapped.
func newStream(seed uint64, worker uint32) xorshift32 {
	z := seed ^ (uint64(worker)+1)*0x9E3779B97F4A7C15
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	s := uint32(z) ^ uint32(z>>32)
	if s == 0 {
		s = 0x6C078965
	}

	return xorshift32{state: s}
}

// next advances the stream (Marsaglia 13/17/5 triple).
func (x *xorshift32) next() uint32 {
	s := x.state
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	x.state = s

	return s
}

// uniform returns a sample in [0,1).
func (x *xorshift32) uniform() float64 {
	return float64(x.next()) / (1 << 32)
}

// intn returns a sample in [0,n). n must be positive.
func (x *xorshift32) intn(n int32) int32 {
	return int32(x.next() % uint32(n))
}
