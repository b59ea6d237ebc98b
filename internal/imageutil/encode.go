package imageutil

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	// register decoders for every allowed attachment format
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrNotDataURI is returned when an upload candidate is not an inline image.
var ErrNotDataURI = errors.New("not an image data URI")

// DecodeDataURI splits a data URI into its MIME type and decoded payload.
// Only base64-encoded image URIs are accepted.
func DecodeDataURI(s string) (mime string, data []byte, err error) {
	if !strings.HasPrefix(s, DataURIPrefix) {
		return "", nil, ErrNotDataURI
	}
	head, body, found := strings.Cut(s, ",")
	if !found {
		return "", nil, ErrNotDataURI
	}
	head = strings.TrimPrefix(head, "data:")
	mime, enc, found := strings.Cut(head, ";")
	if !found || enc != "base64" {
		return "", nil, ErrNotDataURI
	}
	data, err = base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", nil, fmt.Errorf("decoding data URI payload: %w", err)
	}
	return mime, data, nil
}

// EncodeDataURI builds a base64 data URI from a MIME type and payload.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// SniffFormat identifies an image payload by magic bytes. Returns one of
// "jpeg", "png", "gif", "webp", "bmp" or "" when unrecognized.
func SniffFormat(data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "jpeg"
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "png"
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "gif"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp"
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return "bmp"
	default:
		return ""
	}
}

// ExtensionForFormat maps a sniffed format to a filename extension for the
// multipart upload part. Unknown formats fall back to .jpg.
func ExtensionForFormat(format string) string {
	switch format {
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	case "webp":
		return ".webp"
	case "bmp":
		return ".bmp"
	default:
		return ".jpg"
	}
}

// RecompressJPEG re-encodes an oversized image as JPEG, stepping the quality
// down until the payload fits maxBytes. All allowed attachment formats
// (jpeg, png, gif, webp, bmp) decode. Fails rather than degrading below the
// quality floor.
func RecompressJPEG(data []byte, maxBytes int) ([]byte, error) {
	if len(data) <= maxBytes {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image for recompression: %w", err)
	}

	for quality := 85; quality >= 30; quality -= 10 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("re-encoding image at quality %d: %w", quality, err)
		}
		if buf.Len() <= maxBytes {
			return buf.Bytes(), nil
		}
	}

	return nil, fmt.Errorf("image still exceeds %d bytes at minimum quality", maxBytes)
}
