//go:build gocv
// +build gocv

package imaging

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// decodeBytes uses OpenCV, which also understands WebP, BMP and TIFF uploads.
func decodeBytes(data []byte) (image.Image, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, errors.New("failed to decode image")
	}
	return mat.ToImage()
}
