package libio

import (
	goimg "image"

	"github.com/chewxy/math32"
)

type image struct {
	Channels      int
	Width, Height int
}

// Calculates the tuple index into the images data.
//
// Note that the origin (0,0) is in the bottom left, as opposed to Go's top left origin
func (img *image) Index(x, y int) int {
	return x*img.Channels + y*img.Channels*img.Width
}

func (img *image) Count() int {
	return img.Width * img.Height
}

type IntImage struct {
	image
	Pix []uint8
}

func NewIntImage(pix []uint8, channels int, width, height int) *IntImage {
	return &IntImage{
		Pix: pix,
		image: image{
			Channels: channels,
			Width:    width,
			Height:   height,
		},
	}
}

func (img *IntImage) ToRGBA() *goimg.RGBA {
	rgba := goimg.NewRGBA(goimg.Rect(0, 0, img.Width, img.Height))

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := (x + y*img.Width) * img.Channels
			// flipped vertically
			j := (x + (img.Height-y-1)*img.Width) * 4
			for c := 0; c < img.Channels && c < 4; c++ {
				rgba.Pix[j+c] = img.Pix[i+c]
			}
			for c := img.Channels; c < 3; c++ {
				rgba.Pix[j+c] = 0
			}
			if img.Channels < 4 {
				rgba.Pix[j+3] = 0xff
			}
		}
	}

	return rgba
}

type FloatImage struct {
	image
	Pix []float32
}

func NewFloatImage(pix []float32, channels int, width, height int) *FloatImage {
	return &FloatImage{
		Pix: pix,
		image: image{
			Channels: channels,
			Width:    width,
			Height:   height,
		},
	}
}

func (img *FloatImage) Bytes() int {
	return img.Width * img.Height * img.Channels * 4
}

// Shuffle builds a new image from the listed source channels, in order.
// The same channel may be listed more than once.
func (img *FloatImage) Shuffle(channels []int) *FloatImage {
	dstCh := len(channels)
	dst := make([]float32, img.Count()*dstCh)
	for i := 0; i < img.Count(); i++ {
		for c, src := range channels {
			dst[i*dstCh+c] = img.Pix[i*img.Channels+src]
		}
	}
	return NewFloatImage(dst, dstCh, img.Width, img.Height)
}

// Range returns the smallest and largest finite value of channel ch.
func (img *FloatImage) Range(ch int) (min, max float32) {
	min, max = math32.Inf(1), math32.Inf(-1)
	for i := 0; i < img.Count(); i++ {
		v := img.Pix[i*img.Channels+ch]
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Normalize remaps every channel to [0,1] in place.
func (img *FloatImage) Normalize() {
	for ch := 0; ch < img.Channels; ch++ {
		min, max := img.Range(ch)
		r := max - min
		for i := 0; i < img.Count(); i++ {
			j := i*img.Channels + ch
			if r <= 0 || math32.IsInf(r, 0) {
				img.Pix[j] = 0
				continue
			}
			img.Pix[j] = (img.Pix[j] - min) / r
		}
	}
}

func (img *FloatImage) ToIntImage(gamma, scale float32) *IntImage {
	pix := make([]uint8, len(img.Pix))

	for i := 0; i < len(img.Pix); i++ {
		pix[i] = uint8(tonemap(img.Pix[i], 1.0/gamma, scale) * 0xff)
	}

	return NewIntImage(pix, img.Channels, img.Width, img.Height)
}

func tonemap(value, gamma, scale float32) float32 {
	value = math32.Pow(value, gamma) * scale
	if math32.IsNaN(value) {
		return 0
	}
	return math32.Min(math32.Max(0.0, value), 1.0)
}
