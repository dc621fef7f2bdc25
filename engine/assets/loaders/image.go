package loaders

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

// ImageLoader decodes any format registered with the image package into
// straight-alpha RGBA8 pixels.
type ImageLoader struct{}

func (il *ImageLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, core.ErrTextureDecode, err)
	}
	res, err := il.Decode(path, data, params)
	if err != nil {
		return nil, err
	}
	res.FullPath = path
	return res, nil
}

func (il *ImageLoader) Decode(name string, data []byte, params interface{}) (*metadata.Resource, error) {
	typedParams, _ := params.(*metadata.ImageResourceParams)
	if typedParams == nil {
		typedParams = &metadata.ImageResourceParams{}
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", name, core.ErrTextureDecode, err)
	}
	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%s is empty: %w", name, core.ErrTextureDecode)
	}

	width, height := fitWithin(bounds.Dx(), bounds.Dy(), int(typedParams.MaxDimension))
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	if n, ok := src.(*image.NRGBA); ok && width == bounds.Dx() && height == bounds.Dy() {
		for y := 0; y < height; y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+width*4], n.Pix[n.PixOffset(bounds.Min.X, bounds.Min.Y+y):])
		}
	} else if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	} else {
		core.LogDebug("downscaling image", "name", name, "format", format, "from", bounds.Size(), "to", dst.Bounds().Size())
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	}
	if typedParams.FlipY {
		flipRows(dst)
	}

	return &metadata.Resource{
		Name:     name,
		DataSize: uint64(len(dst.Pix)),
		Data: &metadata.ImageResourceData{
			ChannelCount:    4,
			Width:           uint32(width),
			Height:          uint32(height),
			Pixels:          dst.Pix,
			HasTransparency: hasTransparency(dst),
		},
	}, nil
}

func (il *ImageLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

// fitWithin scales (w, h) down, keeping the aspect ratio, so neither side
// exceeds max. A max of zero leaves the size alone.
func fitWithin(w, h, max int) (int, int) {
	if max <= 0 || (w <= max && h <= max) {
		return w, h
	}
	if w >= h {
		return max, imax(1, h*max/w)
	}
	return imax(1, w*max/h), max
}

func imax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func flipRows(img *image.NRGBA) {
	h := img.Bounds().Dy()
	row := make([]uint8, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}

func hasTransparency(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			return true
		}
	}
	return false
}
