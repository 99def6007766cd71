package libio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/x448/float16"
)

var ErrInvalidFormat = errors.New("invalid texture format")

// TextureFormat describes the channel layout of a float texture.
type TextureFormat uint32

const (
	FormatUndefined = TextureFormat(iota)
	FormatR16Float
	FormatRG16Float
	FormatR32Float
	FormatRG32Float
)

// FormatForBits returns the two channel float format with the given bits per channel.
func FormatForBits(bits int) (TextureFormat, error) {
	switch bits {
	case 16:
		return FormatRG16Float, nil
	case 32:
		return FormatRG32Float, nil
	}
	return FormatUndefined, fmt.Errorf("%w: %d bits per channel, expected 16 or 32", ErrInvalidFormat, bits)
}

func (f TextureFormat) Channels() int {
	switch f {
	case FormatR16Float, FormatR32Float:
		return 1
	case FormatRG16Float, FormatRG32Float:
		return 2
	}
	return 0
}

func (f TextureFormat) Bits() int {
	switch f {
	case FormatR16Float, FormatRG16Float:
		return 16
	case FormatR32Float, FormatRG32Float:
		return 32
	}
	return 0
}

// TexelBytes is the size of one texel in bytes.
func (f TextureFormat) TexelBytes() int {
	return f.Channels() * f.Bits() / 8
}

// WithChannels returns the format with the same precision and nr channels.
func (f TextureFormat) WithChannels(nr int) TextureFormat {
	switch {
	case f.Bits() == 16 && nr == 1:
		return FormatR16Float
	case f.Bits() == 16 && nr == 2:
		return FormatRG16Float
	case f.Bits() == 32 && nr == 1:
		return FormatR32Float
	case f.Bits() == 32 && nr == 2:
		return FormatRG32Float
	}
	return FormatUndefined
}

func (f TextureFormat) String() string {
	switch f {
	case FormatR16Float:
		return "R16_SFLOAT"
	case FormatRG16Float:
		return "RG16_SFLOAT"
	case FormatR32Float:
		return "R32_SFLOAT"
	case FormatRG32Float:
		return "RG32_SFLOAT"
	}
	return fmt.Sprintf("TextureFormat(%d)", uint32(f))
}

// Texture is a single level 2D float texture.
// Texels are stored row after row, little endian, row 0 first.
type Texture struct {
	Format        TextureFormat
	Width, Height int
	Pix           []byte
}

func NewTexture(format TextureFormat, width, height int) *Texture {
	if format.Channels() == 0 {
		panic(fmt.Sprintf("libio: %v", format))
	}
	return &Texture{
		Format: format,
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*format.TexelBytes()),
	}
}

// Offset calculates the byte offset of the texel in column col and row row.
func (tex *Texture) Offset(col, row int) int {
	return (row*tex.Width + col) * tex.Format.TexelBytes()
}

// Set stores v in channel ch of the texel, converting it to the texture precision.
// Conversion to 16 bit rounds to nearest even.
func (tex *Texture) Set(col, row, ch int, v float32) {
	o := tex.Offset(col, row)
	if tex.Format.Bits() == 16 {
		binary.LittleEndian.PutUint16(tex.Pix[o+ch*2:], float16.Fromfloat32(v).Bits())
	} else {
		binary.LittleEndian.PutUint32(tex.Pix[o+ch*4:], math.Float32bits(v))
	}
}

func (tex *Texture) Get(col, row, ch int) float32 {
	o := tex.Offset(col, row)
	if tex.Format.Bits() == 16 {
		return float16.Frombits(binary.LittleEndian.Uint16(tex.Pix[o+ch*2:])).Float32()
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(tex.Pix[o+ch*4:]))
}

// Store writes a two channel texel.
func (tex *Texture) Store(col, row int, r, g float32) {
	tex.Set(col, row, 0, r)
	tex.Set(col, row, 1, g)
}

// Load reads a two channel texel.
func (tex *Texture) Load(col, row int) (r, g float32) {
	return tex.Get(col, row, 0), tex.Get(col, row, 1)
}

// Channel extracts a single channel into a new texture of the same precision.
func (tex *Texture) Channel(ch int) *Texture {
	dst := NewTexture(tex.Format.WithChannels(1), tex.Width, tex.Height)
	size := tex.Format.Bits() / 8
	for row := 0; row < tex.Height; row++ {
		for col := 0; col < tex.Width; col++ {
			so := tex.Offset(col, row) + ch*size
			do := dst.Offset(col, row)
			copy(dst.Pix[do:do+size], tex.Pix[so:so+size])
		}
	}
	return dst
}

// FloatImage decodes all texels to float32.
func (tex *Texture) FloatImage() *FloatImage {
	channels := tex.Format.Channels()
	pix := make([]float32, tex.Width*tex.Height*channels)
	for row := 0; row < tex.Height; row++ {
		for col := 0; col < tex.Width; col++ {
			i := (row*tex.Width + col) * channels
			for ch := 0; ch < channels; ch++ {
				pix[i+ch] = tex.Get(col, row, ch)
			}
		}
	}
	return NewFloatImage(pix, channels, tex.Width, tex.Height)
}

// NewTextureFromFloatImage converts a one or two channel float image.
func NewTextureFromFloatImage(img *FloatImage, bits int) (*Texture, error) {
	format, err := FormatForBits(bits)
	if err != nil {
		return nil, err
	}
	format = format.WithChannels(img.Channels)
	if format == FormatUndefined {
		return nil, fmt.Errorf("%w: %d channel images are not supported", ErrInvalidFormat, img.Channels)
	}

	tex := NewTexture(format, img.Width, img.Height)
	for row := 0; row < img.Height; row++ {
		for col := 0; col < img.Width; col++ {
			i := img.Index(col, row)
			for ch := 0; ch < img.Channels; ch++ {
				tex.Set(col, row, ch, img.Pix[i+ch])
			}
		}
	}
	return tex, nil
}
