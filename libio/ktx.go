package libio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

var ktxIdentifier = [12]byte{0xAB, 0x4B, 0x54, 0x58, 0x20, 0x31, 0x31, 0xBB, 0x0D, 0x0A, 0x1A, 0x0A}

const ktxEndianness = 0x04030201

// OpenGL enums used by the KTX header
const (
	glHalfFloat = 0x140B
	glFloat     = 0x1406
	glRed       = 0x1903
	glRG        = 0x8227
	glR16F      = 0x822D
	glR32F      = 0x822E
	glRG16F     = 0x822F
	glRG32F     = 0x8230
)

type KtxHeader struct {
	Identifier            [12]byte
	Endianness            uint32
	GlType                uint32
	GlTypeSize            uint32
	GlFormat              uint32
	GlInternalFormat      uint32
	GlBaseInternalFormat  uint32
	PixelWidth            uint32
	PixelHeight           uint32
	PixelDepth            uint32
	NumberOfArrayElements uint32
	NumberOfFaces         uint32
	NumberOfMipmapLevels  uint32
	BytesOfKeyValueData   uint32
}

func ktxGlFormat(format TextureFormat) (glType, glTypeSize, glFormat, glInternalFormat uint32) {
	switch format {
	case FormatR16Float:
		return glHalfFloat, 2, glRed, glR16F
	case FormatRG16Float:
		return glHalfFloat, 2, glRG, glRG16F
	case FormatR32Float:
		return glFloat, 4, glRed, glR32F
	case FormatRG32Float:
		return glFloat, 4, glRG, glRG32F
	}
	return 0, 0, 0, 0
}

func ktxFormat(glInternalFormat uint32) TextureFormat {
	switch glInternalFormat {
	case glR16F:
		return FormatR16Float
	case glRG16F:
		return FormatRG16Float
	case glR32F:
		return FormatR32Float
	case glRG32F:
		return FormatRG32Float
	}
	return FormatUndefined
}

// ktxKeyValues encodes the key/value section, each entry padded to 4 bytes.
func ktxKeyValues(pairs [][2]string) []byte {
	buf := bytes.NewBuffer(nil)
	bw := &BinaryWriter{Dst: buf, Order: binary.LittleEndian}
	for _, kv := range pairs {
		entry := kv[0] + "\x00" + kv[1] + "\x00"
		bw.WriteUInt32(uint32(len(entry)))
		bw.WriteBytes([]byte(entry))
		bw.WritePadding(len(entry), 4)
	}
	return buf.Bytes()
}

// EncodeKtx writes the texture as a single level KTX 1.1 file.
func EncodeKtx(w io.Writer, tex *Texture, options ...EncodeOption) (err error) {
	glType, glTypeSize, glFormat, glInternalFormat := ktxGlFormat(tex.Format)
	if glInternalFormat == 0 {
		return fmt.Errorf("%w: %v cannot be stored in ktx", ErrInvalidFormat, tex.Format)
	}

	bw := &BinaryWriter{
		Dst:   w,
		Order: binary.LittleEndian,
	}

	kvd := ktxKeyValues([][2]string{{"KTXwriter", "brdflut"}})

	header := KtxHeader{
		Identifier:           ktxIdentifier,
		Endianness:           ktxEndianness,
		GlType:               glType,
		GlTypeSize:           glTypeSize,
		GlFormat:             glFormat,
		GlInternalFormat:     glInternalFormat,
		GlBaseInternalFormat: glFormat,
		PixelWidth:           uint32(tex.Width),
		PixelHeight:          uint32(tex.Height),
		NumberOfFaces:        1,
		NumberOfMipmapLevels: 1,
		BytesOfKeyValueData:  uint32(len(kvd)),
	}

	if !bw.WriteRef(header) {
		return fmt.Errorf("could not write ktx header: %w", bw.Err)
	}
	bw.WriteBytes(kvd)

	// rows are 4 byte aligned, only R16 textures of odd width need padding
	rowBytes := tex.Width * tex.Format.TexelBytes()
	paddedRow := rowBytes + (4-rowBytes%4)%4
	bw.WriteUInt32(uint32(paddedRow * tex.Height))
	for row := 0; row < tex.Height; row++ {
		o := tex.Offset(0, row)
		bw.WriteBytes(tex.Pix[o : o+rowBytes])
		bw.WritePadding(rowBytes, 4)
	}

	if bw.Err != nil {
		return fmt.Errorf("could not write ktx texels: %w", bw.Err)
	}

	return nil
}

func DecodeKtx(r io.Reader) (tex *Texture, err error) {
	br := &BinaryReader{
		Src:   r,
		Order: binary.LittleEndian,
	}

	header := KtxHeader{}
	if !br.ReadRef(&header) {
		return nil, fmt.Errorf("expected ktx header: %w", br.Err)
	}

	if header.Identifier != ktxIdentifier {
		return nil, fmt.Errorf("ktx identifier is corrupt; byte 0x%08x", br.LastIndex)
	}

	if header.Endianness != ktxEndianness {
		return nil, fmt.Errorf("big endian ktx files are unsupported")
	}

	if header.NumberOfFaces > 1 || header.NumberOfArrayElements > 0 || header.PixelDepth > 0 {
		return nil, fmt.Errorf("%w: ktx is not a plain 2d texture", ErrInvalidFormat)
	}

	format := ktxFormat(header.GlInternalFormat)
	if format == FormatUndefined {
		return nil, fmt.Errorf("%w: ktx internal format 0x%04x", ErrInvalidFormat, header.GlInternalFormat)
	}

	if !br.Skip(int(header.BytesOfKeyValueData)) {
		return nil, fmt.Errorf("expected ktx key/value data: %w", br.Err)
	}

	var imageSize uint32
	if !br.ReadUInt32(&imageSize) {
		return nil, fmt.Errorf("expected ktx image size: %w", br.Err)
	}

	tex = NewTexture(format, int(header.PixelWidth), int(header.PixelHeight))
	rowBytes := tex.Width * format.TexelBytes()
	paddedRow := rowBytes + (4-rowBytes%4)%4
	if int(imageSize) != paddedRow*tex.Height {
		return nil, fmt.Errorf("ktx image size %d does not match %dx%d %v", imageSize, tex.Width, tex.Height, format)
	}

	for row := 0; row < tex.Height; row++ {
		if !br.ReadBytes(paddedRow) {
			return nil, fmt.Errorf("expected ktx row %d: %w", row, br.Err)
		}
		o := tex.Offset(0, row)
		copy(tex.Pix[o:o+rowBytes], br.buf[:rowBytes])
	}

	return tex, nil
}
