package libio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

func EncodeFloatImage(w io.Writer, img *FloatImage, options ...EncodeOption) (err error) {
	ctx, err := newEncodeContext(options)
	if err != nil {
		return err
	}

	var bw *BinaryWriter
	var ok bool

	if bw, ok = w.(*BinaryWriter); !ok {
		bw = &BinaryWriter{
			Dst:   w,
			Order: binary.LittleEndian,
		}

		defer func() {
			if bw.Err != nil {
				if err == nil {
					err = bw.Err
				} else {
					err = fmt.Errorf("%v: %w", err, bw.Err)
				}
			}
		}()
	}

	header := FloatImageHeader{
		Check:       MagicNumberF32,
		Version:     F32Version1_001_000,
		Width:       uint32(img.Width),
		Height:      uint32(img.Height),
		Channels:    uint8(img.Channels),
		Compression: ctx.Compression,
	}

	if !bw.WriteRef(header) {
		return fmt.Errorf("could not write f32 header: %w", bw.Err)
	}

	var data []byte

	switch ctx.Compression {
	case FloatImageCompressionNone:
		data = float32Bytes(img.Pix)
	case FloatImageCompressionFixedPoint16Lz4:
		data, err = compressFixedPoint16(img.Channels, img.Count(), img.Pix)
		if err != nil {
			break
		}
		data, err = compressLz4(data, ctx.Lz4Level)
	case FloatImageCompressionLz4:
		data, err = compressLz4(float32Bytes(img.Pix), ctx.Lz4Level)
	case FloatImageCompressionZstd:
		data, err = compressZstd(float32Bytes(img.Pix), ctx.ZstdLevel)
	}

	if err != nil {
		return fmt.Errorf("could not compress f32 pixels: %w", err)
	}

	if !bw.WriteBytes(data) {
		return fmt.Errorf("could not write f32 encoded pixels: %w", bw.Err)
	}

	return nil
}

func float32Bytes(pix []float32) []byte {
	buf := make([]byte, len(pix)*4)
	for i, v := range pix {
		binary.LittleEndian.PutUint32(buf[i*4:], math32.Float32bits(v))
	}
	return buf
}

func compressLz4(data []byte, level lz4.CompressionLevel) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	lzw := lz4.NewWriter(buf)
	err := lzw.Apply(lz4.CompressionLevelOption(level))
	if err != nil {
		return nil, err
	}
	_, err = lzw.Write(data)
	if err != nil {
		return nil, err
	}
	err = lzw.Close()
	return buf.Bytes(), err
}

func compressZstd(data []byte, level zstd.EncoderLevel) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	zw, err := zstd.NewWriter(buf, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, err
	}
	_, err = zw.Write(data)
	if err != nil {
		zw.Close()
		return nil, err
	}
	err = zw.Close()
	return buf.Bytes(), err
}

func compressFixedPoint16(channels int, count int, pix []float32) ([]byte, error) {
	rangeBytes := 4 * 2 * channels
	dataBytes := count * channels * 2
	buf := bytes.NewBuffer(make([]byte, 0, rangeBytes+dataBytes))
	bw := &BinaryWriter{Order: binary.LittleEndian, Dst: buf}
	for ch := 0; ch < channels; ch++ {
		compressChannelFixedPoint16(channels, count, pix, bw, ch)
		if bw.Err != nil {
			return nil, bw.Err
		}
	}
	return buf.Bytes(), nil
}

func compressChannelFixedPoint16(channels int, count int, pix []float32, bw *BinaryWriter, ch int) {
	var min, max float32 = math32.Inf(1), math32.Inf(-1)

	for i := 0; i < count; i++ {
		v := pix[i*channels+ch]
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	bw.WriteUInt32(math32.Float32bits(min))
	bw.WriteUInt32(math32.Float32bits(max))

	r := max - min
	for i := 0; i < count; i++ {
		var fix uint16
		// a constant channel is stored as all zeros
		if r > 0 {
			flt := pix[i*channels+ch]
			fix = uint16(((flt-min)/r)*0xffff + 0.5)
		}
		bw.WriteUInt16(fix)
	}
}
