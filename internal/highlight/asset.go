// Package highlight implements the client side of the highlight pipeline:
// input validation, the segment generation stage, and the clip selection
// stage. The remote service owns the processing; this package owns the
// workflow state and its preconditions.
package highlight

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"
)

const (
	// VideoMIMEType is the only accepted video media type.
	VideoMIMEType = "video/mp4"

	// SubtitleExtension is the only accepted subtitle file extension.
	SubtitleExtension = ".srt"
)

var (
	ErrInvalidVideo    = errors.New("not a valid MP4 video file")
	ErrInvalidSubtitle = errors.New("not a valid SRT subtitle file")
)

// Asset is a transient reference to a locally chosen file. It exists only
// until submission and is never persisted.
type Asset struct {
	Name        string
	Path        string
	ContentType string
}

// DetectAsset builds an Asset for a local path, deriving the media type from
// the file extension.
func DetectAsset(path string) Asset {
	name := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	// mime registries return parameters for some types; the validator
	// compares the bare media type.
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return Asset{Name: name, Path: path, ContentType: contentType}
}

// ValidateVideo accepts iff the asset's declared media type is video/mp4.
// Pure decision function; it never touches stage state.
func ValidateVideo(a Asset) error {
	if a.ContentType != VideoMIMEType {
		return ErrInvalidVideo
	}
	return nil
}

// ValidateSubtitle accepts iff the file name ends with .srt.
func ValidateSubtitle(a Asset) error {
	if !strings.HasSuffix(a.Name, SubtitleExtension) {
		return ErrInvalidSubtitle
	}
	return nil
}
