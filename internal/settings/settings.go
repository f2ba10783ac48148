// Package settings persists the export panel's settings as a flat string
// key-value store. Core logic reads a Snapshot at the start of each export
// action and never writes back; only the settings API mutates the store.
package settings

import (
	"context"
	"strconv"
)

// Settings keys. Booleans are persisted as the strings "true"/"false",
// matching what the panel writes.
const (
	KeyVideoPresetPath   = "video_preset_path"
	KeyAudioPresetPath   = "audio_preset_path"
	KeyNamingPattern     = "naming_pattern"
	KeyExportFolderName  = "export_folder_name"
	KeyExportFolderDepth = "export_folder_depth"
	KeyFixedFolder       = "fixed_folder"
	KeyUseFixedFolder    = "use_fixed_folder"
	KeyExportInOutOnly   = "export_in_out_only"
	KeyDirectExport      = "direct_export"

	// Agent-internal keys, not exposed through the settings API.
	KeyAuthToken = "auth_token"
	KeyDeviceID  = "device_id"

	DefaultNamingPattern    = "{SEQ}_V{V}"
	DefaultExportFolderName = "EXPORTS"
)

// ExportKeys lists the keys the settings API accepts.
var ExportKeys = []string{
	KeyVideoPresetPath,
	KeyAudioPresetPath,
	KeyNamingPattern,
	KeyExportFolderName,
	KeyExportFolderDepth,
	KeyFixedFolder,
	KeyUseFixedFolder,
	KeyExportInOutOnly,
	KeyDirectExport,
}

// IsExportKey reports whether key may be read or written through the API.
func IsExportKey(key string) bool {
	for _, k := range ExportKeys {
		if k == key {
			return true
		}
	}
	return false
}

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Snapshot is the typed view of the settings at the moment an export action
// starts. Defaults are applied here, not in the store.
type Snapshot struct {
	VideoPresetPath   string
	AudioPresetPath   string
	NamingPattern     string
	ExportFolderName  string
	ExportFolderDepth int
	FixedFolder       string
	UseFixedFolder    bool
	ExportInOutOnly   bool
	DirectExport      bool
}

func snapshotFrom(values map[string]string) Snapshot {
	snap := Snapshot{
		VideoPresetPath:  values[KeyVideoPresetPath],
		AudioPresetPath:  values[KeyAudioPresetPath],
		NamingPattern:    values[KeyNamingPattern],
		ExportFolderName: values[KeyExportFolderName],
		FixedFolder:      values[KeyFixedFolder],
		UseFixedFolder:   values[KeyUseFixedFolder] == "true",
		ExportInOutOnly:  values[KeyExportInOutOnly] == "true",
		DirectExport:     values[KeyDirectExport] == "true",
	}

	if snap.NamingPattern == "" {
		snap.NamingPattern = DefaultNamingPattern
	}
	if snap.ExportFolderName == "" {
		snap.ExportFolderName = DefaultExportFolderName
	}

	if depth, err := strconv.Atoi(values[KeyExportFolderDepth]); err == nil && depth > 0 {
		snap.ExportFolderDepth = depth
	}

	return snap
}
