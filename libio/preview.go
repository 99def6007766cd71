package libio

import (
	goimg "image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// EncodePreview normalizes the image in place and writes it as png.
// Each pixel becomes a scale × scale block.
func EncodePreview(w io.Writer, img *FloatImage, scale int) error {
	img.Normalize()
	rgba := img.ToIntImage(1.0, 1.0).ToRGBA()

	if scale > 1 {
		dst := goimg.NewRGBA(goimg.Rect(0, 0, rgba.Rect.Dx()*scale, rgba.Rect.Dy()*scale))
		draw.NearestNeighbor.Scale(dst, dst.Rect, rgba, rgba.Rect, draw.Src, nil)
		rgba = dst
	}

	return png.Encode(w, rgba)
}
