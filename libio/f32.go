package libio

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const MagicNumberF32 = 0x6d16837d

type FloatImageVersion uint32

const (
	F32Version1_001_000 = FloatImageVersion(1_001_000)
)

type FloatImageCompression uint32

const (
	FloatImageCompressionNone = FloatImageCompression(iota)
	FloatImageCompressionFixedPoint16Lz4
	FloatImageCompressionLz4
	FloatImageCompressionZstd
)

func (c FloatImageCompression) String() string {
	switch c {
	case FloatImageCompressionNone:
		return "none"
	case FloatImageCompressionFixedPoint16Lz4:
		return "fixed-point16+lz4"
	case FloatImageCompressionLz4:
		return "lz4"
	case FloatImageCompressionZstd:
		return "zstd"
	}
	return fmt.Sprintf("FloatImageCompression(%d)", uint32(c))
}

type FloatImageHeader struct {
	Check         uint32
	Version       FloatImageVersion
	Width, Height uint32
	Channels      uint8
	Compression   FloatImageCompression
	Unused        [14]uint8
}

type EncodeContext struct {
	Compression FloatImageCompression
	Lz4Level    lz4.CompressionLevel
	ZstdLevel   zstd.EncoderLevel
}

type EncodeOption func(ctx *EncodeContext) error

var errCompressionConfigured = errors.New("compression already configured")

// OptCompression selects the pixel compression of the f32 container.
// Other containers ignore it.
func OptCompression(compression FloatImageCompression) EncodeOption {
	return func(ctx *EncodeContext) error {
		if ctx.Compression != FloatImageCompressionNone {
			return errCompressionConfigured
		}
		switch compression {
		case FloatImageCompressionNone, FloatImageCompressionFixedPoint16Lz4, FloatImageCompressionLz4, FloatImageCompressionZstd:
		default:
			return fmt.Errorf("f32 compression id %d unsupported", compression)
		}
		ctx.Compression = compression
		return nil
	}
}

// OptCompress sets the compression level from 0 (fastest) to 9 (smallest).
// A negative level leaves the defaults.
func OptCompress(level int) EncodeOption {
	levels := []lz4.CompressionLevel{lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9}
	if level < 0 {
		return nil
	}

	if level >= len(levels) {
		level = len(levels) - 1
	}

	return func(ctx *EncodeContext) error {
		ctx.Lz4Level = levels[level]
		ctx.ZstdLevel = zstd.EncoderLevelFromZstd(level*2 + 1)
		return nil
	}
}

func newEncodeContext(options []EncodeOption) (*EncodeContext, error) {
	ctx := &EncodeContext{
		Compression: FloatImageCompressionNone,
		Lz4Level:    lz4.Fast,
		ZstdLevel:   zstd.SpeedDefault,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		if err := opt(ctx); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}
