package libio

import (
	"encoding/binary"
	"fmt"
	"io"
)

const MagicNumberDDS = 0x20534444 // "DDS "

const (
	ddsdCaps        = 0x1
	ddsdHeight      = 0x2
	ddsdWidth       = 0x4
	ddsdPitch       = 0x8
	ddsdPixelFormat = 0x1000
	ddsdMipMapCount = 0x20000

	ddpfFourCC = 0x4

	ddsCapsTexture = 0x1000

	fourCCDX10 = 0x30315844 // "DX10"

	dxgiDimensionTexture2D = 3
)

// legacy D3DFORMAT values, stored as numeric FourCC
const (
	d3dfmtR16F    = 111
	d3dfmtG16R16F = 112
	d3dfmtR32F    = 114
	d3dfmtG32R32F = 115
)

const (
	dxgiFormatR32G32Float = 16
	dxgiFormatR16G16Float = 34
	dxgiFormatR32Float    = 41
	dxgiFormatR16Float    = 54
)

type ddsPixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

type DdsHeader struct {
	Check             uint32
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       ddsPixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

type ddsHeaderDX10 struct {
	DxgiFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

func ddsFourCC(format TextureFormat) uint32 {
	switch format {
	case FormatR16Float:
		return d3dfmtR16F
	case FormatRG16Float:
		return d3dfmtG16R16F
	case FormatR32Float:
		return d3dfmtR32F
	case FormatRG32Float:
		return d3dfmtG32R32F
	}
	return 0
}

func ddsFormat(fourCC uint32) TextureFormat {
	switch fourCC {
	case d3dfmtR16F:
		return FormatR16Float
	case d3dfmtG16R16F:
		return FormatRG16Float
	case d3dfmtR32F:
		return FormatR32Float
	case d3dfmtG32R32F:
		return FormatRG32Float
	}
	return FormatUndefined
}

func dxgiFormat(dxgi uint32) TextureFormat {
	switch dxgi {
	case dxgiFormatR16Float:
		return FormatR16Float
	case dxgiFormatR16G16Float:
		return FormatRG16Float
	case dxgiFormatR32Float:
		return FormatR32Float
	case dxgiFormatR32G32Float:
		return FormatRG32Float
	}
	return FormatUndefined
}

// EncodeDds writes the texture as a single level DDS file.
// Float formats are identified by their legacy D3DFORMAT FourCC.
func EncodeDds(w io.Writer, tex *Texture, options ...EncodeOption) (err error) {
	fourCC := ddsFourCC(tex.Format)
	if fourCC == 0 {
		return fmt.Errorf("%w: %v cannot be stored in dds", ErrInvalidFormat, tex.Format)
	}

	bw := &BinaryWriter{
		Dst:   w,
		Order: binary.LittleEndian,
	}

	header := DdsHeader{
		Check:             MagicNumberDDS,
		Size:              124,
		Flags:             ddsdCaps | ddsdHeight | ddsdWidth | ddsdPitch | ddsdPixelFormat | ddsdMipMapCount,
		Height:            uint32(tex.Height),
		Width:             uint32(tex.Width),
		PitchOrLinearSize: uint32(tex.Width * tex.Format.TexelBytes()),
		MipMapCount:       1,
		PixelFormat: ddsPixelFormat{
			Size:   32,
			Flags:  ddpfFourCC,
			FourCC: fourCC,
		},
		Caps: ddsCapsTexture,
	}

	if !bw.WriteRef(header) {
		return fmt.Errorf("could not write dds header: %w", bw.Err)
	}

	if !bw.WriteBytes(tex.Pix) {
		return fmt.Errorf("could not write dds texels: %w", bw.Err)
	}

	return nil
}

func DecodeDds(r io.Reader) (tex *Texture, err error) {
	br := &BinaryReader{
		Src:   r,
		Order: binary.LittleEndian,
	}

	header := DdsHeader{}
	if !br.ReadRef(&header) {
		return nil, fmt.Errorf("expected dds header: %w", br.Err)
	}

	if header.Check != MagicNumberDDS || header.Size != 124 {
		return nil, fmt.Errorf("dds header is corrupt; byte 0x%08x", br.LastIndex)
	}

	if header.PixelFormat.Flags&ddpfFourCC == 0 {
		return nil, fmt.Errorf("%w: dds without fourcc", ErrInvalidFormat)
	}

	format := ddsFormat(header.PixelFormat.FourCC)
	if header.PixelFormat.FourCC == fourCCDX10 {
		ext := ddsHeaderDX10{}
		if !br.ReadRef(&ext) {
			return nil, fmt.Errorf("expected dds dx10 header: %w", br.Err)
		}
		if ext.ResourceDimension != dxgiDimensionTexture2D {
			return nil, fmt.Errorf("%w: dds resource dimension %d", ErrInvalidFormat, ext.ResourceDimension)
		}
		format = dxgiFormat(ext.DxgiFormat)
	}

	if format == FormatUndefined {
		return nil, fmt.Errorf("%w: dds fourcc 0x%08x", ErrInvalidFormat, header.PixelFormat.FourCC)
	}

	tex = NewTexture(format, int(header.Width), int(header.Height))
	if !br.ReadBytes(len(tex.Pix)) {
		return nil, fmt.Errorf("expected %d dds texel bytes: %w", len(tex.Pix), br.Err)
	}
	copy(tex.Pix, br.buf)

	return tex, nil
}
