package models

import (
	"path/filepath"
	"strings"
)

// typeGroups maps lower-case extensions (without dot) to coarse groups used
// by cleanup profiles and report statistics.
var typeGroups = map[string]string{
	"jpg": "image", "jpeg": "image", "png": "image", "gif": "image",
	"bmp": "image", "webp": "image", "svg": "image",

	"mp4": "video", "avi": "video", "mov": "video", "mkv": "video",
	"flv": "video", "wmv": "video", "webm": "video",

	"mp3": "audio", "wav": "audio", "flac": "audio", "aac": "audio",
	"ogg": "audio", "m4a": "audio",

	"pdf": "document", "doc": "document", "docx": "document",
	"odt": "document", "xls": "document", "xlsx": "document",
	"ods": "document", "ppt": "document", "pptx": "document",
	"odp": "document",

	"zip": "archive", "rar": "archive", "7z": "archive", "tar": "archive",
	"gz": "archive", "bz2": "archive", "xz": "archive",

	"exe": "executable", "msi": "executable", "deb": "executable",
	"rpm": "executable", "dmg": "executable", "pkg": "executable",

	"log": "log",

	"bak": "backup", "backup": "backup", "old": "backup",

	"tmp": "temp", "temp": "temp", "cache": "temp", "swp": "temp",

	"txt": "text", "md": "text", "cfg": "text", "ini": "text",
	"conf": "text",

	"html": "web", "htm": "web", "css": "web", "js": "web",
	"json": "web", "xml": "web",

	"c": "code", "cpp": "code", "h": "code", "py": "code",
	"java": "code", "rs": "code", "go": "code",
}

// TypeGroup classifies a path into a coarse file type group by extension.
// Unknown extensions map to "other", extension-less files to "none".
func TypeGroup(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return "none"
	}
	if group, ok := typeGroups[ext]; ok {
		return group
	}
	return "other"
}
