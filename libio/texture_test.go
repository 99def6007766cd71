package libio

import (
	"errors"
	"math"
	"testing"
)

// testTexture fills a texture with values that are exact in every precision.
func testTexture(format TextureFormat, width, height int) *Texture {
	tex := NewTexture(format, width, height)
	i := 0
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			for ch := 0; ch < format.Channels(); ch++ {
				tex.Set(col, row, ch, float32(i%61)/8-2)
				i++
			}
		}
	}
	return tex
}

func assertTexturesEqual(t *testing.T, should, is *Texture) {
	t.Helper()
	if is.Format != should.Format {
		t.Fatalf("format should be %v but is %v", should.Format, is.Format)
	}
	if is.Width != should.Width || is.Height != should.Height {
		t.Fatalf("size should be %dx%d but is %dx%d", should.Width, should.Height, is.Width, is.Height)
	}
	if len(is.Pix) != len(should.Pix) {
		t.Fatalf("texel data should be %d bytes but is %d", len(should.Pix), len(is.Pix))
	}
	for i := range should.Pix {
		if is.Pix[i] != should.Pix[i] {
			t.Fatalf("texel byte %d should be 0x%02x but is 0x%02x", i, should.Pix[i], is.Pix[i])
		}
	}
}

func TestFormatForBits(t *testing.T) {
	if f, err := FormatForBits(16); err != nil || f != FormatRG16Float {
		t.Errorf("16 bits should be %v but is %v (%v)", FormatRG16Float, f, err)
	}
	if f, err := FormatForBits(32); err != nil || f != FormatRG32Float {
		t.Errorf("32 bits should be %v but is %v (%v)", FormatRG32Float, f, err)
	}
	if _, err := FormatForBits(8); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("8 bits should fail with ErrInvalidFormat but got %v", err)
	}
}

func TestTextureFormat(t *testing.T) {
	cases := []struct {
		format   TextureFormat
		channels int
		bits     int
		texel    int
	}{
		{FormatR16Float, 1, 16, 2},
		{FormatRG16Float, 2, 16, 4},
		{FormatR32Float, 1, 32, 4},
		{FormatRG32Float, 2, 32, 8},
		{FormatUndefined, 0, 0, 0},
	}
	for _, c := range cases {
		if c.format.Channels() != c.channels || c.format.Bits() != c.bits || c.format.TexelBytes() != c.texel {
			t.Errorf("%v should have %d channels, %d bits and %d bytes", c.format, c.channels, c.bits, c.texel)
		}
	}

	if f := FormatRG16Float.WithChannels(1); f != FormatR16Float {
		t.Errorf("single channel of %v should be %v but is %v", FormatRG16Float, FormatR16Float, f)
	}
	if f := FormatR32Float.WithChannels(2); f != FormatRG32Float {
		t.Errorf("two channels of %v should be %v but is %v", FormatR32Float, FormatRG32Float, f)
	}
	if f := FormatR32Float.WithChannels(3); f != FormatUndefined {
		t.Errorf("three channels should be undefined but is %v", f)
	}
}

func TestTextureStoreLoad(t *testing.T) {
	tex := NewTexture(FormatRG32Float, 3, 2)
	tex.Store(2, 1, 0.1, float32(math.NaN()))

	r, g := tex.Load(2, 1)
	if r != 0.1 {
		t.Errorf("r should be 0.1 but is %v", r)
	}
	if !math.IsNaN(float64(g)) {
		t.Errorf("g should be NaN but is %v", g)
	}
	if o := tex.Offset(2, 1); o != 40 {
		t.Errorf("offset should be 40 but is %d", o)
	}
	if r, g := tex.Load(0, 0); r != 0 || g != 0 {
		t.Errorf("untouched texel should be zero but is (%v, %v)", r, g)
	}
}

func TestTextureHalfRounding(t *testing.T) {
	tex := NewTexture(FormatRG16Float, 1, 1)

	// 1 + 2^-11 is halfway between 1 and the next half, ties go to even
	tex.Store(0, 0, 1+1.0/2048, 1+3.0/2048)
	r, g := tex.Load(0, 0)
	if r != 1 {
		t.Errorf("r should round down to 1 but is %v", r)
	}
	if g != 1+4.0/2048 {
		t.Errorf("g should round up to %v but is %v", 1+4.0/2048, g)
	}

	tex.Store(0, 0, 0.5, 70000)
	r, g = tex.Load(0, 0)
	if r != 0.5 {
		t.Errorf("r should be 0.5 but is %v", r)
	}
	if !math.IsInf(float64(g), 1) {
		t.Errorf("g should overflow to +Inf but is %v", g)
	}
}

func TestTextureChannel(t *testing.T) {
	tex := testTexture(FormatRG16Float, 4, 3)
	for ch := 0; ch < 2; ch++ {
		single := tex.Channel(ch)
		if single.Format != FormatR16Float {
			t.Fatalf("channel format should be %v but is %v", FormatR16Float, single.Format)
		}
		for row := 0; row < 3; row++ {
			for col := 0; col < 4; col++ {
				if is, should := single.Get(col, row, 0), tex.Get(col, row, ch); is != should {
					t.Errorf("channel %d texel (%d, %d) should be %v but is %v", ch, col, row, should, is)
				}
			}
		}
	}
}

func TestTextureFloatImage(t *testing.T) {
	tex := testTexture(FormatRG32Float, 5, 4)
	img := tex.FloatImage()
	if img.Channels != 2 || img.Width != 5 || img.Height != 4 {
		t.Fatalf("image should be 5x4 with 2 channels but is %dx%d with %d", img.Width, img.Height, img.Channels)
	}

	back, err := NewTextureFromFloatImage(img, 32)
	if err != nil {
		t.Fatal(err)
	}
	assertTexturesEqual(t, tex, back)

	half, err := NewTextureFromFloatImage(img, 16)
	if err != nil {
		t.Fatal(err)
	}
	assertTexturesEqual(t, testTexture(FormatRG16Float, 5, 4), half)

	if _, err := NewTextureFromFloatImage(NewFloatImage(make([]float32, 3), 3, 1, 1), 32); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("three channel image should fail with ErrInvalidFormat but got %v", err)
	}
}

func TestNewTextureUndefined(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("undefined format should panic")
		}
	}()
	NewTexture(FormatUndefined, 1, 1)
}
