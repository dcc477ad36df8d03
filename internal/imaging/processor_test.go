package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestProcessImage(t *testing.T) {
	p := NewProcessor(t.TempDir())

	data := testJPEG(t, 120, 80)
	result, err := p.ProcessImage(bytes.NewReader(data), "test-uuid", "kuva.jpg")
	if err != nil {
		t.Fatalf("ProcessImage() error = %v", err)
	}

	if result.Width != 120 || result.Height != 80 {
		t.Errorf("dimensions = %dx%d, want 120x80", result.Width, result.Height)
	}
	if result.MimeType != MimeTypeJPEG {
		t.Errorf("MimeType = %q, want %q", result.MimeType, MimeTypeJPEG)
	}
	if _, err := os.Stat(result.FilePath); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}

func TestProcessImageRejectsNonImage(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if _, err := p.ProcessImage(bytes.NewReader([]byte("not an image")), "u", "f.jpg"); err == nil {
		t.Error("ProcessImage() error = nil for non-image data")
	}
}

func TestCreateVariantCropsThumbnail(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	src := filepath.Join(dir, "src.jpg")
	if err := os.WriteFile(src, testJPEG(t, 800, 600), 0644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	result, err := p.CreateVariant(src, "test-uuid", "kuva.jpg", Variants["thumb"], "thumb")
	if err != nil {
		t.Fatalf("CreateVariant() error = %v", err)
	}
	if result == nil {
		t.Fatal("CreateVariant() = nil for larger source")
	}
	if result.Width != 300 || result.Height != 300 {
		t.Errorf("thumb = %dx%d, want 300x300", result.Width, result.Height)
	}
}

func TestCreateVariantSkipsSmallSource(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	src := filepath.Join(dir, "src.jpg")
	if err := os.WriteFile(src, testJPEG(t, 100, 100), 0644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	result, err := p.CreateVariant(src, "test-uuid", "kuva.jpg", Variants["web"], "web")
	if err != nil {
		t.Fatalf("CreateVariant() error = %v", err)
	}
	if result != nil {
		t.Errorf("CreateVariant() = %+v, want nil for source smaller than target", result)
	}
}

func TestDetectMimeType(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if got := p.DetectMimeType(testJPEG(t, 10, 10)); got != MimeTypeJPEG {
		t.Errorf("DetectMimeType(jpeg) = %q", got)
	}

	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if got := p.DetectMimeType(buf.Bytes()); got != MimeTypePNG {
		t.Errorf("DetectMimeType(png) = %q", got)
	}
}

func TestIsImage(t *testing.T) {
	p := NewProcessor(t.TempDir())
	tests := []struct {
		mime string
		want bool
	}{
		{MimeTypeJPEG, true},
		{MimeTypePNG, true},
		{MimeTypeWebP, true},
		{"application/pdf", false},
		{"image/tiff", false},
	}
	for _, tt := range tests {
		if got := p.IsImage(tt.mime); got != tt.want {
			t.Errorf("IsImage(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}
}

func TestSaveImageFileRejectsTraversal(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if _, err := p.saveImageFile("../outside", "f.jpg", []byte("x")); err == nil {
		t.Error("saveImageFile() error = nil for traversal subdir")
	}
	if _, err := p.saveImageFile("ok", "", []byte("x")); err == nil {
		t.Error("saveImageFile() error = nil for empty filename")
	}
}
