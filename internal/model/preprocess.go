package model

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes any of the registered upload formats.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Preprocess converts an image to the tensor the model expects: a square
// ImageSize x ImageSize resize, 8-bit channels scaled to [0,1], laid out and
// ordered according to the metadata.
func Preprocess(img image.Image, meta Metadata) ([]float32, error) {
	size := meta.ImageSize
	if size <= 0 {
		return nil, fmt.Errorf("invalid image size %d", size)
	}

	resized := resize.Resize(uint(size), uint(size), img, resize.Bilinear)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height

	const channels = 3
	inputData := make([]float32, channels*plane)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			px := [channels]float32{
				float32(r>>8) / 255.0,
				float32(g>>8) / 255.0,
				float32(b>>8) / 255.0,
			}
			if meta.ChannelOrder != ChannelsRGB {
				px[0], px[2] = px[2], px[0]
			}

			pixelIndex := y*width + x
			for c := 0; c < channels; c++ {
				if meta.Layout == LayoutCHW {
					inputData[c*plane+pixelIndex] = px[c]
				} else {
					inputData[pixelIndex*channels+c] = px[c]
				}
			}
		}
	}

	if want := meta.InputSize(); want != 0 && want != len(inputData) {
		return nil, fmt.Errorf("preprocessed %d values, model expects %d", len(inputData), want)
	}

	return inputData, nil
}
