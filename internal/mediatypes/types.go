package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind is the broad media classification of an indexed file.
type Kind string

const (
	// KindImage is a still image.
	KindImage Kind = "image"
	// KindVideo is a video file.
	KindVideo Kind = "video"
	// KindOther is anything the indexer does not record.
	KindOther Kind = "other"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".ts":   true,
}

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",

	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".ts":   "video/mp2t",
}

// formats maps extensions to the short format name stored on content
// records ("jpeg", not ".jpg" or "image/jpeg").
var formats = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
	".bmp":  "bmp",
	".webp": "webp",
	".tiff": "tiff",
	".tif":  "tiff",
	".heic": "heic",
	".heif": "heif",
	".mp4":  "mp4",
	".mkv":  "mkv",
	".avi":  "avi",
	".mov":  "mov",
	".wmv":  "wmv",
	".webm": "webm",
	".m4v":  "m4v",
	".mpeg": "mpeg",
	".mpg":  "mpeg",
	".ts":   "mpegts",
}

// Ext returns the lowercase extension of path, including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// KindOf classifies a lowercase extension (with leading dot).
func KindOf(ext string) Kind {
	if imageExtensions[ext] {
		return KindImage
	}
	if videoExtensions[ext] {
		return KindVideo
	}
	return KindOther
}

// MimeType returns the MIME type for an extension, or empty when
// unknown.
func MimeType(ext string) string {
	return mimeTypes[ext]
}

// Format returns the short format name for an extension, or empty
// when unknown.
func Format(ext string) string {
	return formats[ext]
}
