package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

// createTestGIF builds a two-frame animation: a black first frame and a
// white second frame.
func createTestGIF(w, h int) []byte {
	anim := &gif.GIF{}
	for _, c := range []color.Color{color.Black, color.White} {
		frame := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				frame.Set(x, y, c)
			}
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 10)
	}
	var buf bytes.Buffer
	gif.EncodeAll(&buf, anim)
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return img
}

func TestThumbnailJPEG(t *testing.T) {
	thumb, err := Thumbnail(createTestJPEG(100, 100), 0)
	if err != nil {
		t.Fatalf("Thumbnail JPEG: %v", err)
	}
	if thumb.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", thumb.MIME)
	}
	if len(thumb.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestThumbnailPNG(t *testing.T) {
	thumb, err := Thumbnail(createTestPNG(100, 100), 0)
	if err != nil {
		t.Fatalf("Thumbnail PNG: %v", err)
	}
	if thumb.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg (always outputs JPEG), got %s", thumb.MIME)
	}
}

func TestThumbnailGIFUsesFirstFrame(t *testing.T) {
	thumb, err := Thumbnail(createTestGIF(360, 360), 0)
	if err != nil {
		t.Fatalf("Thumbnail GIF: %v", err)
	}
	if thumb.Width != MaxDimension || thumb.Height != MaxDimension {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension, thumb.Width, thumb.Height)
	}

	r, g, b, _ := decode(t, thumb.Data).At(MaxDimension/2, MaxDimension/2).RGBA()
	if r>>8 > 40 || g>>8 > 40 || b>>8 > 40 {
		t.Errorf("expected the dark first frame, got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestThumbnailDownscale(t *testing.T) {
	thumb, err := Thumbnail(createTestJPEG(1024, 512), 0)
	if err != nil {
		t.Fatalf("Thumbnail large image: %v", err)
	}

	bounds := decode(t, thumb.Data).Bounds()
	if bounds.Dx() != MaxDimension || bounds.Dy() != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, bounds.Dx(), bounds.Dy())
	}
}

func TestThumbnailCustomSize(t *testing.T) {
	thumb, err := Thumbnail(createTestPNG(300, 600), 64)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if thumb.Width != 32 || thumb.Height != 64 {
		t.Errorf("expected 32x64, got %dx%d", thumb.Width, thumb.Height)
	}
}

func TestThumbnailSmallImageNotUpscaled(t *testing.T) {
	thumb, err := Thumbnail(createTestJPEG(50, 50), 0)
	if err != nil {
		t.Fatalf("Thumbnail small image: %v", err)
	}

	bounds := decode(t, thumb.Data).Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("small image should not be resized: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestThumbnailTransparentPNGOnWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	var buf bytes.Buffer
	png.Encode(&buf, img)

	thumb, err := Thumbnail(buf.Bytes(), 0)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	r, g, b, _ := decode(t, thumb.Data).At(10, 10).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected white background, got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestThumbnailInvalidFormat(t *testing.T) {
	if _, err := Thumbnail([]byte("not an image"), 0); err == nil {
		t.Error("expected error for invalid format")
	}
	if _, err := Thumbnail([]byte("GIF89a truncated"), 0); err == nil {
		t.Error("expected error for a truncated GIF")
	}
}
