package libio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

var ErrUnsupportedContainer = errors.New("unsupported texture container")

// Container encodes and decodes textures of one file format.
type Container struct {
	Name   string
	Ext    string
	Encode func(w io.Writer, tex *Texture, options ...EncodeOption) error
	Decode func(r io.Reader) (*Texture, error)
}

var containers = []*Container{
	{Name: "DirectDraw Surface", Ext: ".dds", Encode: EncodeDds, Decode: DecodeDds},
	{Name: "Khronos Texture", Ext: ".ktx", Encode: EncodeKtx, Decode: DecodeKtx},
	{Name: "Float Image", Ext: ".f32", Encode: encodeF32Texture, Decode: decodeF32Texture},
}

// ContainerExtensions lists the supported file extensions in sorted order.
func ContainerExtensions() []string {
	exts := make([]string, len(containers))
	for i, c := range containers {
		exts[i] = c.Ext
	}
	slices.Sort(exts)
	return exts
}

// ContainerForPath picks the container from the file extension, ignoring case.
func ContainerForPath(p string) (*Container, error) {
	ext := strings.ToLower(filepath.Ext(p))
	i := slices.IndexFunc(containers, func(c *Container) bool {
		return c.Ext == ext
	})
	if i < 0 {
		return nil, fmt.Errorf("%w: %q, expected one of %s", ErrUnsupportedContainer, ext, strings.Join(ContainerExtensions(), ", "))
	}
	return containers[i], nil
}

// SaveTexture encodes the texture into a temporary file next to p and renames it on success,
// so a failed encode never leaves a partial file behind.
func SaveTexture(p string, tex *Texture, options ...EncodeOption) (err error) {
	container, err := ContainerForPath(p)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	err = container.Encode(tmp, tex, options...)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", container.Name, err)
	}

	// temp files are created 0600
	err = tmp.Chmod(0644)
	if err != nil {
		return err
	}

	err = tmp.Close()
	if err != nil {
		return err
	}

	return os.Rename(tmp.Name(), p)
}

func LoadTexture(p string) (*Texture, error) {
	container, err := ContainerForPath(p)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tex, err := container.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", container.Name, err)
	}
	return tex, nil
}

func encodeF32Texture(w io.Writer, tex *Texture, options ...EncodeOption) error {
	return EncodeFloatImage(w, tex.FloatImage(), options...)
}

// decodeF32Texture always yields a 32 bit texture, the f32 container has no precision field.
func decodeF32Texture(r io.Reader) (*Texture, error) {
	img, err := DecodeFloatImage(r)
	if err != nil {
		return nil, err
	}
	return NewTextureFromFloatImage(img, 32)
}
