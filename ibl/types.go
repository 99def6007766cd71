package ibl

import "brdfgen/libutil"

// LutGenerator produces split-sum lookup tables.
type LutGenerator interface {
	Generate(size, samples int) (*Lut, error)
	libutil.Releaser
}
