//go:build !opencl

package iblcl

import (
	"brdfgen/ibl"
)

func NewClLutGenerator(preferredDevice DeviceType, options ...ibl.LutOption) (ibl.LutGenerator, error) {
	return nil, ErrUnavailable
}
