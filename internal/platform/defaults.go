// Package platform supplies the OS-dependent fallback paths used when the
// corresponding settings entries are empty: built-in encoder presets and the
// user's Downloads folder.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	winVideoPreset = `C:\Program Files\Adobe\Adobe Media Encoder 2025\Support Files\MediaIO\systempresets\Match Source - Adaptive High Bitrate.epr`
	winAudioPreset = `C:\Program Files\Adobe\Adobe Media Encoder 2025\Support Files\MediaIO\systempresets\WAV 48 kHz 16-bit.epr`

	macVideoPreset = "/Applications/Adobe Media Encoder 2025/Adobe Media Encoder 2025.app/Contents/MediaIO/systempresets/Match Source - Adaptive High Bitrate.epr"
	macAudioPreset = "/Applications/Adobe Media Encoder 2025/Adobe Media Encoder 2025.app/Contents/MediaIO/systempresets/WAV 48 kHz 16-bit.epr"
)

type Defaults interface {
	VideoPresetPath() string
	AudioPresetPath() string
	DownloadsPath() string
	IsWindows() bool
}

// OSDefaults resolves defaults from the running OS.
type OSDefaults struct {
	goos string
	home string
}

func NewDefaults() *OSDefaults {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &OSDefaults{goos: runtime.GOOS, home: home}
}

func (d *OSDefaults) IsWindows() bool {
	return d.goos == "windows"
}

func (d *OSDefaults) VideoPresetPath() string {
	if d.IsWindows() {
		return winVideoPreset
	}
	return macVideoPreset
}

func (d *OSDefaults) AudioPresetPath() string {
	if d.IsWindows() {
		return winAudioPreset
	}
	return macAudioPreset
}

func (d *OSDefaults) DownloadsPath() string {
	return filepath.Join(d.home, "Downloads")
}
