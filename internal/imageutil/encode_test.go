package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestDecodeDataURI(t *testing.T) {
	mime, data, err := DecodeDataURI("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte("hello"), data)
}

func TestDecodeDataURI_Rejects(t *testing.T) {
	cases := []string{
		"https://example.com/a.png",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png,rawbody",
		"data:image/png;base64",
		"data:image/png;base64,%%%invalid%%%",
	}
	for _, in := range cases {
		_, _, err := DecodeDataURI(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	uri := EncodeDataURI("image/jpeg", payload)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	mime, data, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, payload, data)
}

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, "png"},
		{"gif87", []byte("GIF87a...."), "gif"},
		{"gif89", []byte("GIF89a...."), "gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "webp"},
		{"bmp", []byte("BM\x00\x00"), "bmp"},
		{"unknown", []byte("<html>"), ""},
		{"short", []byte{0xFF}, ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffFormat(tt.data))
		})
	}
}

func TestExtensionForFormat(t *testing.T) {
	assert.Equal(t, ".png", ExtensionForFormat("png"))
	assert.Equal(t, ".jpg", ExtensionForFormat("jpeg"))
	assert.Equal(t, ".jpg", ExtensionForFormat(""))
}

// noisyPNG builds a PNG that compresses poorly, so the JPEG recompression
// loop has real work to do.
func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRecompressJPEG_AlreadySmall(t *testing.T) {
	data := []byte("tiny payload")
	out, err := RecompressJPEG(data, 1024)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestRecompressJPEG_ShrinksOversized(t *testing.T) {
	src := noisyPNG(t, 200, 200)
	limit := len(src) / 2

	out, err := RecompressJPEG(src, limit)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), limit)
	assert.Equal(t, "jpeg", SniffFormat(out))
}

// noisyBMP builds an uncompressed BMP; bitmaps are the worst case for
// oversized attachments and decode through the x/image decoder.
func noisyBMP(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(2))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))
	return buf.Bytes()
}

func TestRecompressJPEG_ShrinksBMP(t *testing.T) {
	src := noisyBMP(t, 200, 200)
	require.Equal(t, "bmp", SniffFormat(src))
	limit := len(src) / 2

	out, err := RecompressJPEG(src, limit)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), limit)
	assert.Equal(t, "jpeg", SniffFormat(out))
}

func TestRecompressJPEG_UndecodableInput(t *testing.T) {
	junk := bytes.Repeat([]byte("not an image "), 100)
	_, err := RecompressJPEG(junk, 16)
	assert.Error(t, err)
}

func TestRecompressJPEG_ImpossibleTarget(t *testing.T) {
	src := noisyPNG(t, 200, 200)
	_, err := RecompressJPEG(src, 64)
	assert.Error(t, err)
}
