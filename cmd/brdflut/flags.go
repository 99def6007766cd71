package main

import (
	"brdfgen/iblcl"
	"fmt"
	"strconv"
)

type impl string

const (
	implCl impl = "opencl"
	implSw impl = "software"
)

func (i *impl) String() string {
	return string(*i)
}

func (i *impl) Set(s string) error {
	switch impl(s) {
	case implCl:
		*i = implCl
	case implSw:
		*i = implSw
	default:
		return fmt.Errorf("%s is not a valid implementation", s)
	}
	return nil
}

type bits int

func (b *bits) String() string {
	return strconv.Itoa(int(*b))
}

func (b *bits) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v != 16 && v != 32 {
		return fmt.Errorf("%d bits are not supported, use 16 or 32", v)
	}
	*b = bits(v)
	return nil
}

type device struct {
	iblcl.DeviceType
}

func (d *device) Set(s string) error {
	for _, t := range []iblcl.DeviceType{iblcl.DeviceTypeGPU, iblcl.DeviceTypeCPU, iblcl.DeviceTypeAccelerator} {
		if t.String() == s {
			d.DeviceType = t
			return nil
		}
	}
	return fmt.Errorf("%s is not a valid device type", s)
}
