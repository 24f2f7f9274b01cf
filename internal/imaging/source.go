// Package imaging decodes uploaded image sources into drawable images.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"
)

// ErrEmptySource is returned for zero-length input.
var ErrEmptySource = errors.New("empty image source")

// Decode turns an encoded image buffer, or a "data:" URL as produced by a
// browser FileReader, into an image.Image.
func Decode(src []byte) (image.Image, error) {
	trimmed := bytes.TrimSpace(src)
	if len(trimmed) == 0 {
		return nil, ErrEmptySource
	}

	if bytes.HasPrefix(trimmed, []byte("data:")) {
		payload, err := parseDataURL(string(trimmed))
		if err != nil {
			return nil, err
		}
		src = payload
	}

	img, err := decodeBytes(src)
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New("image has no pixels")
	}
	return img, nil
}

func parseDataURL(s string) ([]byte, error) {
	meta, data, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URL")
	}
	if mediaType, _, _ := strings.Cut(meta, ";"); mediaType != "" && !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("unsupported data URL media type %q", mediaType)
	}

	if strings.HasSuffix(meta, ";base64") {
		payload, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("decode base64 payload: %w", err)
		}
		return payload, nil
	}

	payload, err := url.PathUnescape(data)
	if err != nil {
		return nil, fmt.Errorf("unescape data URL payload: %w", err)
	}
	return []byte(payload), nil
}
