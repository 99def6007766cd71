//go:build opencl

package iblcl

import (
	"brdfgen/ibl"
	"brdfgen/libio"
	_ "embed"
	"fmt"
	"time"
	"unsafe"

	"github.com/Qendolin/go-opencl/cl"
	"golang.org/x/exp/slices"
)

//go:embed brdf.cl
var openclBrdfSrc string

type clCore struct {
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
}

func (d DeviceType) clType() cl.DeviceType {
	switch d {
	case DeviceTypeCPU:
		return cl.DeviceTypeCPU
	case DeviceTypeAccelerator:
		return cl.DeviceTypeAccelerator
	}
	return cl.DeviceTypeGPU
}

func newClCore(preferredDevice DeviceType, programs ...string) (core *clCore, err error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		return nil, err
	}

	var devices []*cl.Device
	for _, p := range platforms {
		devs, err := p.GetDevices(cl.DeviceTypeAll)
		if err != nil {
			continue
		}
		devices = append(devices, devs...)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no opencl devices found")
	}

	preferred := preferredDevice.clType()
	slices.SortFunc(devices, func(a, b *cl.Device) int {
		if a.Type() == preferred && b.Type() != preferred {
			return -1
		}
		if a.Type() != preferred && b.Type() == preferred {
			return 1
		}

		aPower := a.MaxComputeUnits() * a.MaxClockFrequency()
		bPower := b.MaxComputeUnits() * b.MaxClockFrequency()

		return bPower - aPower
	})

	device := devices[0]

	ctx, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, err
	}

	queue, err := ctx.CreateCommandQueue(device, 0)
	if err != nil {
		ctx.Release()
		return nil, err
	}

	prog, err := ctx.CreateProgramWithSource(programs)
	if err != nil {
		queue.Release()
		ctx.Release()
		return nil, err
	}
	err = prog.BuildProgram(nil, "")
	if err != nil {
		prog.Release()
		queue.Release()
		ctx.Release()
		return nil, fmt.Errorf("could not build opencl program: %w", err)
	}

	return &clCore{
		context: ctx,
		queue:   queue,
		program: prog,
	}, nil
}

func (core *clCore) release() {
	core.program.Release()
	core.queue.Release()
	core.context.Release()
}

type clLutGenerator struct {
	clCore
	ibl.LutConfig
	kernel *cl.Kernel
}

// NewClLutGenerator compiles the integration kernel for the best device of the preferred type,
// falling back to any other device.
func NewClLutGenerator(preferredDevice DeviceType, options ...ibl.LutOption) (ibl.LutGenerator, error) {
	cfg, err := ibl.NewLutConfig(options...)
	if err != nil {
		return nil, err
	}

	core, err := newClCore(preferredDevice, openclBrdfSrc)
	if err != nil {
		return nil, err
	}

	kernel, err := core.program.CreateKernel("integrate_brdf")
	if err != nil {
		core.release()
		return nil, err
	}

	return &clLutGenerator{
		clCore:    *core,
		LutConfig: *cfg,
		kernel:    kernel,
	}, nil
}

func (gen *clLutGenerator) Generate(size, samples int) (*ibl.Lut, error) {
	if err := ibl.ValidateLutParams(size, samples); err != nil {
		return nil, err
	}

	start := time.Now()

	// the sequence is generated on the host so both implementations share it bit for bit
	seq := ibl.HammersleySequence(samples)
	sampleBuf, err := gen.context.CreateBuffer(cl.MemReadOnly|cl.MemCopyHostPtr, len(seq)*int(unsafe.Sizeof(seq[0])), unsafe.Pointer(&seq[0]))
	if err != nil {
		return nil, err
	}
	defer sampleBuf.Release()

	dstImage, err := gen.context.CreateImage(cl.MemWriteOnly, cl.ImageFormat{
		ChannelOrder:    cl.ChannelOrderRG,
		ChannelDataType: cl.ChannelDataTypeFloat,
	}, cl.ImageDescription{
		Type:   cl.MemObjectTypeImage2D,
		Width:  size,
		Height: size,
	}, size*size*2*4, nil)
	if err != nil {
		return nil, err
	}
	defer dstImage.Release()

	err = gen.kernel.SetArgBuffer(0, dstImage)
	if err != nil {
		return nil, err
	}
	err = gen.kernel.SetArgInt32(1, int32(size))
	if err != nil {
		return nil, err
	}
	err = gen.kernel.SetArgBuffer(2, sampleBuf)
	if err != nil {
		return nil, err
	}
	err = gen.kernel.SetArgInt32(3, int32(len(seq)))
	if err != nil {
		return nil, err
	}

	localWorkSize := []int{16, 16}
	globalWorkSize := []int{roundUpKernelSize(localWorkSize[0], size), roundUpKernelSize(localWorkSize[1], size)}

	_, err = gen.queue.EnqueueNDRangeKernel(gen.kernel, []int{0, 0}, globalWorkSize, localWorkSize, nil)
	if err != nil {
		return nil, err
	}

	result := make([]float32, size*size*2)
	_, err = gen.queue.EnqueueReadImage(dstImage, true, [3]int{}, [3]int{size, size, 1}, 0, 0, unsafe.Pointer(&result[0]), nil)
	if err != nil {
		return nil, err
	}

	// the kernel already wrote texture coordinates, only the precision changes here
	tex := libio.NewTexture(gen.Format, size, size)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			i := (row*size + col) * 2
			tex.Store(col, row, result[i+0], result[i+1])
		}
	}

	gen.Log.Debugf("integrated lut with opencl in %v", time.Since(start))

	return &ibl.Lut{
		Size:    size,
		Samples: samples,
		Texture: tex,
	}, nil
}

func (gen *clLutGenerator) Release() {
	gen.kernel.Release()
	gen.release()
}

func roundUpKernelSize(groupSize, globalSize int) int {
	r := globalSize % groupSize
	if r == 0 {
		return globalSize
	}
	return globalSize + groupSize - r
}
