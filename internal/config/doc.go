// Package config provides configuration management for trackyear.
//
// This package handles:
//   - Loading and saving settings from TOML files
//   - Default configuration values
//   - Environment overrides for secrets
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Reads ~/Documents/rekordbox/rekordbox.xml
//	// Keeps tracks under "music-library" in the DJ genre folders
//	// One oracle call at a time
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/trackyear.toml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.Workers = 4
//	err := settings.Save("/path/to/trackyear.toml")
//
// # Environment
//
// TRACKYEAR_API_KEY overrides oracle_api_key so the key does not have to
// live in the file.
package config
