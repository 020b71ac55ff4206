package upload

import (
	"fmt"

	"github.com/tumorvision/tumorvision/internal/domain/analysis"
)

const MaxUploadBytes = 10 << 20 // 10MiB

var allowedContentTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/jpg":  {},
	"image/gif":  {},
	"image/bmp":  {},
	"image/tiff": {},
	"image/webp": {},
}

// ValidateFile rejects anything outside the image allow-list or over the size
// cap. A rejected file never enters the pipeline.
func ValidateFile(file analysis.FileMeta) error {
	if _, ok := allowedContentTypes[file.ContentType]; !ok {
		return fmt.Errorf("%w: %s", analysis.ErrUnsupportedFileType, file.ContentType)
	}
	if file.Size > MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes", analysis.ErrFileTooLarge, file.Size)
	}
	return nil
}
