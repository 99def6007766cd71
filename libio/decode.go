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

func DecodeFloatImage(r io.Reader) (img *FloatImage, err error) {
	var br *BinaryReader
	var ok bool

	if br, ok = r.(*BinaryReader); !ok {
		br = &BinaryReader{
			Src:   r,
			Order: binary.LittleEndian,
		}

		defer func() {
			if br.Err != nil {
				if err == nil {
					err = br.Err
				} else {
					err = fmt.Errorf("%v: %w", err, br.Err)
				}
			}
		}()
	}

	header := FloatImageHeader{}
	if !br.ReadRef(&header) {
		return nil, fmt.Errorf("expected f32 header; byte 0x%08x", br.LastIndex)
	}

	if header.Check != MagicNumberF32 {
		return nil, fmt.Errorf("f32 header is corrupt; byte 0x%08x", br.LastIndex)
	}

	if header.Version != F32Version1_001_000 {
		return nil, fmt.Errorf("f32 version %d unsupported; byte 0x%08x", header.Version, br.LastIndex)
	}

	count := int(header.Width * header.Height)
	channels := int(header.Channels)
	var data []float32

	switch header.Compression {
	case FloatImageCompressionNone:
		data, err = readFloat32(br.Src, count*channels)
	case FloatImageCompressionFixedPoint16Lz4:
		rangeBytes := 4 * 2 * channels
		dataBytes := count * channels * 2
		buf := make([]byte, rangeBytes+dataBytes)
		lzr := lz4.NewReader(br.Src)
		_, err = io.ReadFull(lzr, buf)
		if err != nil {
			break
		}
		data, err = decompressFixedPoint16(channels, count, buf)
	case FloatImageCompressionLz4:
		data, err = readFloat32(lz4.NewReader(br.Src), count*channels)
	case FloatImageCompressionZstd:
		var zr *zstd.Decoder
		zr, err = zstd.NewReader(br.Src)
		if err != nil {
			break
		}
		data, err = readFloat32(zr, count*channels)
		zr.Close()
	default:
		return nil, fmt.Errorf("f32 compression id %d unsupported; byte 0x%08x", header.Compression, br.LastIndex)
	}

	if err != nil {
		return nil, fmt.Errorf("could not decompress f32 pixels: %w", err)
	}

	return NewFloatImage(data, channels, int(header.Width), int(header.Height)), nil
}

func readFloat32(r io.Reader, n int) ([]float32, error) {
	buf := make([]byte, n*4)
	_, err := io.ReadFull(r, buf)
	if err != nil {
		return nil, err
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = math32.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return data, nil
}

func decompressFixedPoint16(channels, count int, data []byte) ([]float32, error) {
	result := make([]float32, count*channels)
	br := &BinaryReader{
		Src:   bytes.NewBuffer(data),
		Order: binary.LittleEndian,
	}
	for ch := 0; ch < channels; ch++ {
		decompressChannelFixedPoint16(channels, count, result, br, ch)
		if br.Err != nil {
			return nil, br.Err
		}
	}
	return result, nil
}

func decompressChannelFixedPoint16(channels, count int, pix []float32, br *BinaryReader, ch int) {
	var imin, imax uint32
	br.ReadUInt32(&imin)
	br.ReadUInt32(&imax)

	min := math32.Float32frombits(imin)
	max := math32.Float32frombits(imax)

	data := make([]uint16, count)
	br.ReadRef(data)

	r := max - min
	for i := 0; i < count; i++ {
		fix := data[i]
		flt := (float32(fix)/0xffff)*r + min
		pix[i*channels+ch] = flt
	}
}
