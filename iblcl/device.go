// Package iblcl integrates split-sum lookup tables with OpenCL.
//
// The OpenCL implementation is only compiled with the opencl build tag,
// without it NewClLutGenerator always fails with ErrUnavailable.
package iblcl

import "errors"

var ErrUnavailable = errors.New("opencl support not compiled in, rebuild with -tags opencl")

type DeviceType int

const (
	DeviceTypeCPU = DeviceType(iota)
	DeviceTypeGPU
	DeviceTypeAccelerator
)

func (d DeviceType) String() string {
	switch d {
	case DeviceTypeCPU:
		return "cpu"
	case DeviceTypeGPU:
		return "gpu"
	case DeviceTypeAccelerator:
		return "accelerator"
	}
	return "unknown"
}
