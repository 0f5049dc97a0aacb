package model

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPreprocessBGRHWC(t *testing.T) {
	meta := Metadata{ImageSize: 4, ChannelOrder: ChannelsBGR, Layout: LayoutHWC, InputShape: []int64{1, 4, 4, 3}}
	data, err := Preprocess(solidImage(10, 10, color.RGBA{R: 255, G: 0, B: 51, A: 255}), meta)
	require.NoError(t, err)
	require.Len(t, data, 48)

	assert.InDelta(t, 0.2, data[0], 0.01)
	assert.InDelta(t, 0.0, data[1], 0.01)
	assert.InDelta(t, 1.0, data[2], 0.01)
}

func TestPreprocessRGBCHW(t *testing.T) {
	meta := Metadata{ImageSize: 2, ChannelOrder: ChannelsRGB, Layout: LayoutCHW}
	data, err := Preprocess(solidImage(8, 8, color.RGBA{R: 255, G: 0, B: 51, A: 255}), meta)
	require.NoError(t, err)
	require.Len(t, data, 12)

	for i := 0; i < 4; i++ {
		assert.InDelta(t, 1.0, data[i], 0.01)
		assert.InDelta(t, 0.0, data[4+i], 0.01)
		assert.InDelta(t, 0.2, data[8+i], 0.01)
	}
}

func TestPreprocessShapeMismatch(t *testing.T) {
	meta := Metadata{ImageSize: 4, InputShape: []int64{1, 256, 256, 3}}
	_, err := Preprocess(solidImage(4, 4, color.White), meta)
	assert.Error(t, err)
}

func TestDecodeImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(3, 2, color.Black)))

	img, format, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 3, img.Bounds().Dx())

	_, _, err = DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestDecide(t *testing.T) {
	p, err := Decide([]float32{0.2, 0.8}, []string{"No Tumor", "Tumor Detected"})
	require.NoError(t, err)
	assert.Equal(t, "Tumor Detected", p.Result)
	assert.InDelta(t, 80.0, p.Confidence, 0.0001)
	assert.InDelta(t, 20.0, p.Predictions["No Tumor"], 0.0001)

	_, err = Decide(nil, []string{"a"})
	assert.Error(t, err)
}

func TestLoadMetadataDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"input_shape":[1,256,256,3],"output_shape":[1,2],"classes":["No Tumor","Tumor Detected"]}`), 0o644))

	meta, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, 256, meta.ImageSize)
	assert.Equal(t, ChannelsBGR, meta.ChannelOrder)
	assert.Equal(t, LayoutHWC, meta.Layout)
	assert.Equal(t, 196608, meta.InputSize())

	require.NoError(t, os.WriteFile(path, []byte(`{"classes":[]}`), 0o644))
	_, err = LoadMetadata(path)
	assert.Error(t, err)
}
