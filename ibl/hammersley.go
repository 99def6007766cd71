package ibl

// SamplePoint is a point of a low-discrepancy sequence inside the unit square.
type SamplePoint struct {
	U, V float32
}

// RadicalInverseVdC mirrors the bits of a 32 bit integer around the binary point,
// yielding the base-2 Van der Corput value for it.
func RadicalInverseVdC(bits uint32) float32 {
	bits = (bits << 16) | (bits >> 16)
	bits = ((bits & 0x55555555) << 1) | ((bits & 0xAAAAAAAA) >> 1)
	bits = ((bits & 0x33333333) << 2) | ((bits & 0xCCCCCCCC) >> 2)
	bits = ((bits & 0x0F0F0F0F) << 4) | ((bits & 0xF0F0F0F0) >> 4)
	bits = ((bits & 0x00FF00FF) << 8) | ((bits & 0xFF00FF00) >> 8)
	return float32(bits) * 2.3283064365386963e-10 // / 0x100000000
}

// Hammersley returns the i-th point of an n point Hammersley set.
func Hammersley(i, n uint32) SamplePoint {
	return SamplePoint{
		U: float32(i) / float32(n),
		V: RadicalInverseVdC(i),
	}
}

func HammersleySequence(count int) []SamplePoint {
	samples := make([]SamplePoint, count)
	for i := 0; i < count; i++ {
		samples[i] = Hammersley(uint32(i), uint32(count))
	}

	return samples
}
