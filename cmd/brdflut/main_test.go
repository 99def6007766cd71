package main

import (
	"brdfgen/ibl"
	"brdfgen/iblcl"
	"brdfgen/libio"
	"errors"
	"flag"
	"io"
	"testing"
)

func TestBitsFlag(t *testing.T) {
	var b bits
	for _, s := range []string{"16", "32"} {
		if err := b.Set(s); err != nil || b.String() != s {
			t.Errorf("bits should be %s but is %v (%v)", s, b.String(), err)
		}
	}
	for _, s := range []string{"8", "24", "sixteen"} {
		if err := b.Set(s); err == nil {
			t.Errorf("%s bits should be rejected", s)
		}
	}
}

func TestImplFlag(t *testing.T) {
	var i impl
	if err := i.Set("opencl"); err != nil || i != implCl {
		t.Errorf("impl should be opencl but is %v (%v)", i, err)
	}
	if err := i.Set("opengl"); err == nil {
		t.Error("opengl should be rejected")
	}
}

func TestDeviceFlag(t *testing.T) {
	var d device
	if err := d.Set("accelerator"); err != nil || d.DeviceType != iblcl.DeviceTypeAccelerator {
		t.Errorf("device should be accelerator but is %v (%v)", d, err)
	}
	if err := d.Set("fpga"); err == nil {
		t.Error("fpga should be rejected")
	}
}

func TestRegisterFlags(t *testing.T) {
	saved := args
	defer func() { args = saved }()

	flags := flag.NewFlagSet("brdflut", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	registerFlags(flags)

	err := flags.Parse([]string{"-n", "64", "-s", "32", "-b", "32", "-impl", "opencl", "-grayscale", "-q", "lut.ktx"})
	if err != nil {
		t.Fatal(err)
	}
	if args.samples != 64 || args.size != 32 || args.bits != 32 || args.impl != implCl || !args.grayscale || !args.quiet {
		t.Errorf("parsed arguments are wrong: %+v", args)
	}
	if flags.Arg(0) != "lut.ktx" {
		t.Errorf("output should be lut.ktx but is %q", flags.Arg(0))
	}

	if err := flags.Parse([]string{"-bits", "12"}); err == nil {
		t.Error("12 bits should be rejected")
	}
}

func TestDefaultArgs(t *testing.T) {
	if args.samples != 1024 || args.size != 128 || args.bits != 16 || args.impl != implSw {
		t.Errorf("defaults should be 1024 samples, size 128, 16 bits, software but are %+v", args)
	}
}

func TestValidateArgs(t *testing.T) {
	if err := validateArgs("lut.dds", 128, 1024, 0, 1); err != nil {
		t.Errorf("valid arguments should pass but got %v", err)
	}
	if err := validateArgs("lut.dds", 0, 1024, 0, 1); !errors.Is(err, ibl.ErrInvalidSize) {
		t.Errorf("size 0 should fail with ErrInvalidSize but got %v", err)
	}
	if err := validateArgs("lut.dds", 128, 0, 0, 1); !errors.Is(err, ibl.ErrInvalidSamples) {
		t.Errorf("0 samples should fail with ErrInvalidSamples but got %v", err)
	}
	if err := validateArgs("lut.exr", 128, 1024, 0, 1); !errors.Is(err, libio.ErrUnsupportedContainer) {
		t.Errorf("exr should fail with ErrUnsupportedContainer but got %v", err)
	}
	if err := validateArgs("lut.f32", 128, 1024, 4, 1); err == nil {
		t.Error("compression 4 should fail")
	}
	if err := validateArgs("lut.f32", 128, 1024, 3, 0); err == nil {
		t.Error("preview scale 0 should fail")
	}
}

func TestLutOutputs(t *testing.T) {
	tex := libio.NewTexture(libio.FormatRG16Float, 2, 2)
	tex.Store(1, 0, 0.25, 0.75)

	outputs := lutOutputs(tex, "out/lut.dds", false)
	if len(outputs) != 1 || outputs[0].path != "out/lut.dds" || outputs[0].tex != tex {
		t.Errorf("single output should be the lut itself but is %+v", outputs)
	}

	outputs = lutOutputs(tex, "out/lut.dds", true)
	if len(outputs) != 2 {
		t.Fatalf("grayscale should produce 2 outputs but produced %d", len(outputs))
	}
	if outputs[0].path != "out/lut_r.dds" || outputs[1].path != "out/lut_g.dds" {
		t.Errorf("grayscale outputs should be lut_r.dds and lut_g.dds but are %s and %s", outputs[0].path, outputs[1].path)
	}
	if outputs[0].tex.Format != libio.FormatR16Float {
		t.Errorf("grayscale format should be %v but is %v", libio.FormatR16Float, outputs[0].tex.Format)
	}
	if a, b := outputs[0].tex.Get(1, 0, 0), outputs[1].tex.Get(1, 0, 0); a != 0.25 || b != 0.75 {
		t.Errorf("grayscale values should be 0.25 and 0.75 but are %v and %v", a, b)
	}
}
