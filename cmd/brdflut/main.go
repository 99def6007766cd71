package main

import (
	"brdfgen/ibl"
	"brdfgen/iblcl"
	"brdfgen/libio"
	"brdfgen/libutil"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var args = struct {
	samples      int
	size         int
	bits         bits
	impl         impl
	device       device
	workers      int
	out          string
	preview      bool
	previewScale int
	grayscale    bool
	compression  int
	compress     int
	quiet        bool
	supress      bool
	verbose      bool
	inspect      bool
}{
	samples:      1024,
	size:         128,
	bits:         16,
	impl:         implSw,
	device:       device{iblcl.DeviceTypeGPU},
	previewScale: 1,
	compression:  int(libio.FloatImageCompressionNone),
	compress:     -1,
}

var log libutil.Logger = libutil.NopLogger{}

var channelNames = []string{"A", "B"}

func printGeneralUsage() {
	exe := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s [arguments] <out>\n", exe)
	fmt.Fprintf(os.Stderr, "       %s -inspect <files...>\n\n", exe)
	fmt.Fprintf(os.Stderr, "The container is chosen by the file extension, one of %s\n\n", strings.Join(libio.ContainerExtensions(), ", "))
	fmt.Fprintf(os.Stderr, "The arguments are:\n\n")
	flag.CommandLine.SetOutput(os.Stderr)
	flag.PrintDefaults()
	os.Exit(1)
}

func registerFlags(flags *flag.FlagSet) {
	flags.IntVar(&args.samples, "samples", args.samples, "samples of the integral per texel")
	flags.IntVar(&args.samples, "n", args.samples, "shorthand for samples")
	flags.IntVar(&args.size, "size", args.size, "width and height of the lut")
	flags.IntVar(&args.size, "s", args.size, "shorthand for size")
	flags.Var(&args.bits, "bits", "bits per channel; 16 or 32")
	flags.Var(&args.bits, "b", "shorthand for bits")
	flags.StringVar(&args.out, "out", args.out, "the output file, may also be given as the only argument")
	flags.StringVar(&args.out, "f", args.out, "shorthand for out")
	flags.Var(&args.impl, "impl", "the integration implementation; opencl or software")
	flags.Var(&args.device, "device", "the preferred opencl device; gpu, cpu or accelerator")
	flags.IntVar(&args.workers, "workers", args.workers, "software worker count, 0 uses every cpu")
	flags.BoolVar(&args.preview, "preview", args.preview, "generate normalized preview png")
	flags.IntVar(&args.previewScale, "preview-scale", args.previewScale, "pixels per texel in the preview")
	flags.BoolVar(&args.grayscale, "grayscale", args.grayscale, "generate seperate single channel images")
	flags.IntVar(&args.compression, "compression", args.compression, "f32 only; 0=none, 1=fixed-point + lz4, 2=lz4, 3=zstd")
	flags.IntVar(&args.compress, "compress", args.compress, "f32 only; the compression level from 0 (fast) to 9 (small), -1 for default")
	flags.BoolVar(&args.quiet, "quiet", args.quiet, "disables informational logging")
	flags.BoolVar(&args.quiet, "q", args.quiet, "shorthand for quiet")
	flags.BoolVar(&args.supress, "supress", args.supress, "disables soft error logging")
	flags.BoolVar(&args.verbose, "v", args.verbose, "enables debug logging")
	flags.BoolVar(&args.inspect, "inspect", args.inspect, "print format and value range of existing luts instead of generating one")
}

func main() {
	registerFlags(flag.CommandLine)
	flag.Usage = printGeneralUsage
	flag.Parse()

	log = libutil.NewDefaultLogger(os.Stdout, os.Stderr, args.quiet, args.verbose)

	if args.inspect {
		if flag.NArg() == 0 {
			printGeneralUsage()
		}
		runInspect(gatherInputFiles(flag.Args()))
		return
	}

	out := args.out
	if out == "" && flag.NArg() == 1 {
		out = flag.Arg(0)
	} else if flag.NArg() != 0 {
		printGeneralUsage()
	}
	if out == "" {
		printGeneralUsage()
	}

	err := validateArgs(out, args.size, args.samples, args.compression, args.previewScale)
	harderr(err)
	if args.compression != int(libio.FloatImageCompressionNone) && !strings.EqualFold(filepath.Ext(out), ".f32") {
		log.Warnf("compression %v is ignored for %s files", libio.FloatImageCompression(args.compression), filepath.Ext(out))
	}

	gen := createGenerator()
	defer gen.Release()

	lut, err := gen.Generate(args.size, args.samples)
	harderr(err)
	log.Infof("%d bit, [%d x %d] BRDF LUT generated using %d samples.", lut.Bits(), lut.Size, lut.Size, lut.Samples)

	for _, o := range lutOutputs(lut.Texture, out, args.grayscale) {
		saveLut(o.tex, o.path)
	}
}

// validateArgs fails before any work is done, so a bad extension does not waste an integration.
func validateArgs(out string, size, samples, compression, previewScale int) error {
	if err := ibl.ValidateLutParams(size, samples); err != nil {
		return err
	}
	if _, err := libio.ContainerForPath(out); err != nil {
		return err
	}
	if compression < int(libio.FloatImageCompressionNone) || compression > int(libio.FloatImageCompressionZstd) {
		return fmt.Errorf("compression %d is not supported", compression)
	}
	if previewScale < 1 {
		return fmt.Errorf("preview scale must be positive, is %d", previewScale)
	}
	return nil
}

func createGenerator() ibl.LutGenerator {
	options := []ibl.LutOption{
		ibl.OptBits(int(args.bits)),
		ibl.OptWorkers(args.workers),
		ibl.OptLogger(log),
	}

	if args.impl == implCl {
		gen, err := iblcl.NewClLutGenerator(args.device.DeviceType, options...)
		if err == nil {
			log.Debugf("using opencl implementation")
			return gen
		}
		softerr(fmt.Errorf("opencl implementation failed, falling back to software: %w", err))
	}

	gen, err := ibl.NewSwLutGenerator(options...)
	harderr(err)
	log.Debugf("using software implementation")
	return gen
}

type lutOutput struct {
	path string
	tex  *libio.Texture
}

// lutOutputs names the files written for a lut.
// In grayscale mode A and B go to <name>_r and <name>_g.
func lutOutputs(tex *libio.Texture, out string, grayscale bool) []lutOutput {
	if !grayscale {
		return []lutOutput{{path: out, tex: tex}}
	}

	fileext := filepath.Ext(out)
	filename := strings.TrimSuffix(out, fileext)
	return []lutOutput{
		{path: filename + "_r" + fileext, tex: tex.Channel(0)},
		{path: filename + "_g" + fileext, tex: tex.Channel(1)},
	}
}

func saveLut(tex *libio.Texture, p string) {
	err := libio.SaveTexture(p, tex, libio.OptCompression(libio.FloatImageCompression(args.compression)), libio.OptCompress(args.compress))
	harderr(err)
	log.Infof("Saved LUT to %s.", p)

	if !args.preview {
		return
	}

	img := tex.FloatImage()
	if img.Channels == 1 {
		img = img.Shuffle([]int{0, 0, 0})
	}

	previewPath := strings.TrimSuffix(p, filepath.Ext(p)) + ".png"
	file, err := os.OpenFile(previewPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	harderr(err)
	defer file.Close()

	err = libio.EncodePreview(file, img, args.previewScale)
	harderr(err)
	log.Infof("Saved preview to %s.", previewPath)
}

func runInspect(files []string) {
	for _, p := range files {
		container, err := libio.ContainerForPath(p)
		if err != nil {
			softerr(err)
			continue
		}
		tex, err := libio.LoadTexture(p)
		if err != nil {
			softerr(fmt.Errorf("%s: %w", p, err))
			continue
		}

		fmt.Printf("%s: %s, %v, %d x %d\n", p, container.Name, tex.Format, tex.Width, tex.Height)
		img := tex.FloatImage()
		for ch := 0; ch < img.Channels; ch++ {
			min, max := img.Range(ch)
			fmt.Printf("    %s: min %g, max %g\n", channelNames[ch], min, max)
		}
	}
}

func gatherInputFiles(globs []string) []string {
	matched := []string{}

	for _, g := range globs {
		m, err := filepath.Glob(g)
		softerr(err)
		if len(m) == 0 && err == nil {
			softerr(fmt.Errorf("no files match %q", g))
		}
		matched = append(matched, m...)
	}

	return matched
}

func softerr(err error) bool {
	if err != nil && !args.supress {
		log.Warnf("%v", err)
		return true
	}
	return false
}

func harderr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
