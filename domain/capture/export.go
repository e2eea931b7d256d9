package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultMaskFile is the file name used when no mask path is configured.
const DefaultMaskFile = "fence_mask.png"

// SaveMask writes the mask as a single-channel image. The format follows the file
// extension; parent directories are created as needed.
func SaveMask(path string, mask *image.Gray) error {
	if mask == nil {
		return fmt.Errorf("save mask: nil image")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save mask: %w", err)
		}
	}
	if err := imaging.Save(mask, path, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		return fmt.Errorf("save mask %s: %w", path, err)
	}
	return nil
}
