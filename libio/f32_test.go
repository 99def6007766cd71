package libio

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

func randomFloatImage(channels, width, height int) *FloatImage {
	rnd := rand.New(rand.NewSource(42))
	pix := make([]float32, channels*width*height)
	for i := range pix {
		pix[i] = rnd.Float32()*2 - 0.5
	}
	return NewFloatImage(pix, channels, width, height)
}

func encodeDecodeF32(t *testing.T, img *FloatImage, options ...EncodeOption) *FloatImage {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if err := EncodeFloatImage(buf, img, options...); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeFloatImage(buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Channels != img.Channels || decoded.Width != img.Width || decoded.Height != img.Height {
		t.Fatalf("image should be %dx%dx%d but is %dx%dx%d", img.Width, img.Height, img.Channels, decoded.Width, decoded.Height, decoded.Channels)
	}
	return decoded
}

func TestF32Lossless(t *testing.T) {
	img := randomFloatImage(2, 17, 9)
	img.Pix[3] = math32.NaN()
	img.Pix[4] = math32.Inf(1)

	for _, c := range []FloatImageCompression{FloatImageCompressionNone, FloatImageCompressionLz4, FloatImageCompressionZstd} {
		for _, level := range []int{-1, 0, 9} {
			decoded := encodeDecodeF32(t, img, OptCompression(c), OptCompress(level))
			for i := range img.Pix {
				if math32.Float32bits(decoded.Pix[i]) != math32.Float32bits(img.Pix[i]) {
					t.Fatalf("%v level %d: pixel %d should be %v but is %v", c, level, i, img.Pix[i], decoded.Pix[i])
				}
			}
		}
	}
}

func TestF32FixedPoint16(t *testing.T) {
	img := randomFloatImage(2, 16, 16)
	decoded := encodeDecodeF32(t, img, OptCompression(FloatImageCompressionFixedPoint16Lz4))

	for ch := 0; ch < 2; ch++ {
		min, max := img.Range(ch)
		tolerance := (max - min) / 0xffff
		for i := ch; i < len(img.Pix); i += 2 {
			if d := math32.Abs(decoded.Pix[i] - img.Pix[i]); d > tolerance {
				t.Errorf("pixel %d should be: %.6f but is %.6f", i, img.Pix[i], decoded.Pix[i])
			}
		}
	}
}

func TestF32FixedPoint16Constant(t *testing.T) {
	img := NewFloatImage([]float32{0.25, 1, 0.25, 2, 0.25, 3}, 2, 3, 1)
	decoded := encodeDecodeF32(t, img, OptCompression(FloatImageCompressionFixedPoint16Lz4))

	for i := 0; i < len(img.Pix); i += 2 {
		if decoded.Pix[i] != 0.25 {
			t.Errorf("constant channel pixel %d should be 0.25 but is %v", i, decoded.Pix[i])
		}
	}
}

func TestF32Options(t *testing.T) {
	if OptCompress(-1) != nil {
		t.Error("negative compression level should yield no option")
	}

	ctx, err := newEncodeContext([]EncodeOption{OptCompress(20)})
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Lz4Level != lz4.Level9 {
		t.Errorf("lz4 level should be clamped to %v but is %v", lz4.Level9, ctx.Lz4Level)
	}
	if ctx.ZstdLevel != zstd.SpeedBestCompression {
		t.Errorf("zstd level should be %v but is %v", zstd.SpeedBestCompression, ctx.ZstdLevel)
	}

	_, err = newEncodeContext([]EncodeOption{OptCompression(FloatImageCompressionLz4), OptCompression(FloatImageCompressionZstd)})
	if err == nil {
		t.Error("configuring the compression twice should fail")
	}

	_, err = newEncodeContext([]EncodeOption{OptCompression(FloatImageCompression(7))})
	if err == nil {
		t.Error("unknown compression should fail")
	}
}

func TestF32DecodeInvalid(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	if err := EncodeFloatImage(buf, randomFloatImage(1, 4, 4)); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	bad := append([]byte(nil), data...)
	bad[0] ^= 0xff
	if _, err := DecodeFloatImage(bytes.NewReader(bad)); err == nil {
		t.Error("f32 with bad magic should fail")
	}

	bad = append([]byte(nil), data...)
	bad[17] = 9
	if _, err := DecodeFloatImage(bytes.NewReader(bad)); err == nil {
		t.Error("f32 with unknown compression should fail")
	}

	if _, err := DecodeFloatImage(bytes.NewReader(data[:len(data)-4])); err == nil {
		t.Error("truncated f32 should fail")
	}
}

func BenchmarkEncodeF32Zstd(b *testing.B) {
	img := randomFloatImage(2, 128, 128)
	buf := bytes.NewBuffer(nil)
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := EncodeFloatImage(buf, img, OptCompression(FloatImageCompressionZstd)); err != nil {
			b.Fatal(err)
		}
	}
}
