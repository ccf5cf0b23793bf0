package platform

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
)

// EncodeImage writes img to w as a PNG or a lossless WebP.
func EncodeImage(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "webp":
		return nativewebp.Encode(w, img, nil)
	}
	return fmt.Errorf("unsupported screenshot format %q", format)
}

// SaveScreenshot writes img into dir under a timestamped name and returns the file's path.
func SaveScreenshot(img image.Image, dir, format string, now time.Time) (string, error) {

	ext := strings.ToLower(format)
	path := filepath.Join(dir, "screenshot-"+now.Format("2006-01-02-15-04-05.000")+"."+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("saving screenshot: %w", err)
	}

	if err := EncodeImage(f, img, format); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("saving screenshot: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("saving screenshot: %w", err)
	}

	return path, nil

}
