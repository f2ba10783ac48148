package exporter

import (
	"path/filepath"
	"strings"
)

// Container keywords matched against the preset filename, checked in order.
// The queue-based export lets the encoder infer the container from the
// preset, but the in-editor direct render does not, so the extension has to
// be derived here.
var extensionKeywords = []struct {
	keyword string
	ext     string
}{
	{"prores", "mov"},
	{"dnxh", "mov"},
	{"dnx", "mov"},
	{"cineform", "mov"},
	{"quicktime", "mov"},
	{"mxf", "mxf"},
	{"h.264", "mp4"},
	{"h264", "mp4"},
	{"hevc", "mp4"},
	{"h265", "mp4"},
	{"youtube", "mp4"},
	{"vimeo", "mp4"},
	{"twitter", "mp4"},
	{"facebook", "mp4"},
	{"match source", "mp4"},
	{"mp3", "mp3"},
	{"aac", "m4a"},
}

// ExtensionForPreset infers the output container extension from the preset's
// filename, falling back on hasVideo when no keyword matches.
func ExtensionForPreset(presetPath string, hasVideo bool) string {
	name := strings.ToLower(filepath.Base(presetPath))
	for _, k := range extensionKeywords {
		if strings.Contains(name, k.keyword) {
			return k.ext
		}
	}
	if hasVideo {
		return "mp4"
	}
	return "wav"
}
