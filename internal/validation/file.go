package validation

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrFileEmpty    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file too large")
	ErrFileType     = errors.New("file type not accepted")
)

// AttachmentTypes maps the accepted content types to their extensions.
// It matches the accept attribute of the upload picker.
var AttachmentTypes = map[string][]string{
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/png":       {".png"},
	"application/pdf": {".pdf"},
}

// ValidateAttachment checks an uploaded file by its content, not by the
// type the browser claimed. maxSize <= 0 disables the size check.
// It returns the detected content type.
func ValidateAttachment(name string, data []byte, maxSize int64) (string, error) {
	if len(data) == 0 {
		return "", ErrFileEmpty
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", fmt.Errorf("%w: maximum is %d MB", ErrFileTooLarge, maxSize>>20)
	}

	detected := http.DetectContentType(data)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}

	exts, ok := AttachmentTypes[detected]
	if !ok {
		return "", fmt.Errorf("%w: detected %s", ErrFileType, detected)
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range exts {
		if ext == allowed {
			return detected, nil
		}
	}

	return "", fmt.Errorf("%w: extension %q", ErrFileType, ext)
}
