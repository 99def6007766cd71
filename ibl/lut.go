package ibl

import (
	"brdfgen/libio"
	"brdfgen/libutil"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

var (
	ErrInvalidSize    = errors.New("lut size must be positive")
	ErrInvalidSamples = errors.New("sample count must be positive")
)

// Lut is a fully populated split-sum lookup table.
//
// Pixel (x, y) holds the result for roughness (x+0.5)/Size and NdotV (y+0.5)/Size.
// In the texture it is stored in column y and row Size-1-x.
type Lut struct {
	Size    int
	Samples int
	Texture *libio.Texture
}

// PixelParams maps a pixel to the center of its cell in the unit square.
func PixelParams(x, y, size int) (ndotv, roughness float32) {
	ndotv = (float32(y) + 0.5) / float32(size)
	roughness = (float32(x) + 0.5) / float32(size)
	return ndotv, roughness
}

// TexelCoord returns the texture column and row of pixel (x, y).
func TexelCoord(x, y, size int) (col, row int) {
	return y, size - 1 - x
}

func (lut *Lut) At(x, y int) IntegrationResult {
	col, row := TexelCoord(x, y, lut.Size)
	a, b := lut.Texture.Load(col, row)
	return IntegrationResult{A: a, B: b}
}

func (lut *Lut) Bits() int {
	return lut.Texture.Format.Bits()
}

// LutConfig is shared by all generators, see the Opt functions.
type LutConfig struct {
	Format  libio.TextureFormat
	Workers int
	Log     libutil.Logger
}

type LutOption func(cfg *LutConfig) error

// NewLutConfig applies the options over the defaults:
// 16 bit channels, every cpu, no logging.
func NewLutConfig(options ...LutOption) (*LutConfig, error) {
	cfg := &LutConfig{
		Format:  libio.FormatRG16Float,
		Workers: runtime.NumCPU(),
		Log:     libutil.NopLogger{},
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// OptBits sets the storage precision, 16 or 32 bits per channel.
func OptBits(bits int) LutOption {
	return func(cfg *LutConfig) error {
		format, err := libio.FormatForBits(bits)
		if err != nil {
			return err
		}
		cfg.Format = format
		return nil
	}
}

// OptWorkers sets the number of goroutines integrating rows. Zero or less uses every cpu.
func OptWorkers(workers int) LutOption {
	return func(cfg *LutConfig) error {
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		cfg.Workers = workers
		return nil
	}
}

func OptLogger(log libutil.Logger) LutOption {
	return func(cfg *LutConfig) error {
		if log == nil {
			log = libutil.NopLogger{}
		}
		cfg.Log = log
		return nil
	}
}

type swLutGenerator struct {
	LutConfig
}

// NewSwLutGenerator integrates on the cpu.
func NewSwLutGenerator(options ...LutOption) (LutGenerator, error) {
	cfg, err := NewLutConfig(options...)
	if err != nil {
		return nil, err
	}

	return &swLutGenerator{LutConfig: *cfg}, nil
}

func (gen *swLutGenerator) Generate(size, samples int) (*Lut, error) {
	if err := ValidateLutParams(size, samples); err != nil {
		return nil, err
	}

	tex := libio.NewTexture(gen.Format, size, size)
	workers := libutil.MinI(gen.Workers, size)
	start := time.Now()
	gen.Log.Debugf("integrating %dx%d lut with %d samples on %d workers", size, size, samples, workers)

	// every x owns texture row size-1-x, so workers never share texels
	rows := make(chan int, size)
	for x := 0; x < size; x++ {
		rows <- x
	}
	close(rows)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for x := range rows {
				integrateLutRow(tex, x, size, samples)
			}
		}()
	}
	wg.Wait()

	gen.Log.Debugf("integrated lut in %v", time.Since(start))

	return &Lut{
		Size:    size,
		Samples: samples,
		Texture: tex,
	}, nil
}

func integrateLutRow(tex *libio.Texture, x, size, samples int) {
	for y := 0; y < size; y++ {
		ndotv, roughness := PixelParams(x, y, size)
		res := IntegrateBrdf(IntegrationInputs{
			NdotV:     ndotv,
			Roughness: roughness,
			Samples:   samples,
		})
		col, row := TexelCoord(x, y, size)
		tex.Store(col, row, res.A, res.B)
	}
}

func (gen *swLutGenerator) Release() {
}

// ValidateLutParams rejects non-positive sizes and sample counts.
func ValidateLutParams(size, samples int) error {
	if size < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if samples < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidSamples, samples)
	}
	return nil
}
