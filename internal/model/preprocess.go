package model

import (
	"image"

	"github.com/nfnt/resize"
)

// Preprocess resamples img to ImageSize×ImageSize with nearest-neighbour
// interpolation and returns it as a [1, ImageSize, ImageSize, 3] float32
// tensor in row-major (NHWC) order with channel values scaled to [0, 1].
func Preprocess(img image.Image) []float32 {
	resized := resize.Resize(ImageSize, ImageSize, img, resize.NearestNeighbor)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	const channels = 3
	data := make([]float32, width*height*channels)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			offset := (y*width + x) * channels
			data[offset] = float32(r>>8) / 255.0
			data[offset+1] = float32(g>>8) / 255.0
			data[offset+2] = float32(b>>8) / 255.0
		}
	}

	return data
}

// toChannelsFirst reorders an NHWC tensor of size×size×3 into NCHW planes.
func toChannelsFirst(data []float32, size int) []float32 {
	plane := size * size
	out := make([]float32, len(data))
	for i := 0; i < plane; i++ {
		out[i] = data[i*3]
		out[plane+i] = data[i*3+1]
		out[2*plane+i] = data[i*3+2]
	}
	return out
}
