//go:build !gocv
// +build !gocv

package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// decodeBytes uses the standard library codecs: JPEG, PNG and GIF.
func decodeBytes(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid image format, supported: JPEG, PNG, GIF: %w", err)
	}
	return img, nil
}
