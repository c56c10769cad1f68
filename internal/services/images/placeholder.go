package images

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/saadbenchakroun/auto-video-generator/internal/fileutil"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
)

// WritePlaceholder writes a solid black PNG at the configured frame size.
// It stands in for frames whose generation failed beyond repair so assembly
// still receives a full set of inputs.
func WritePlaceholder(outputPath string, width, height int) error {
	if width < 1 || height < 1 {
		return services.Wrap(services.ErrPermanent, "images", "placeholder", "invalid dimensions", nil)
	}
	frame := image.NewRGBA(image.Rect(0, 0, width, height))
	black := color.RGBA{A: 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			frame.SetRGBA(x, y, black)
		}
	}
	if err := fileutil.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return services.Wrap(services.ErrTransient, "images", "placeholder", "ensure output dir", err)
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "images", "placeholder", "create file", err)
	}
	defer file.Close()
	if err := png.Encode(file, frame); err != nil {
		return services.Wrap(services.ErrTransient, "images", "placeholder", "encode png", err)
	}
	return file.Close()
}
