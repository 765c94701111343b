// Package storage keeps the standalone host's configuration and data
// directories: config.json, the default firmware directory, save states
// and screenshots.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

var appName string

// Init sets the data directory name. Call it before anything else here.
func Init(dataDirName string) {
	appName = dataDirName
}

const (
	configFile    = "config.json"
	systemDir     = "system"
	savesDir      = "saves"
	screenshotDir = "screenshots"
)

// dataDirs are created under the base directory by EnsureDirectories.
var dataDirs = []string{systemDir, savesDir, screenshotDir}

// GetBaseDir returns the per-user data directory named by Init:
//   - macOS: ~/Library/Application Support/<name>
//   - Windows: %APPDATA%/<name>
//   - elsewhere: $XDG_DATA_HOME/<name>, or ~/.local/share/<name>
func GetBaseDir() (string, error) {
	return resolveBaseDir(runtime.GOOS, os.Getenv, os.UserHomeDir)
}

func resolveBaseDir(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	if appName == "" {
		return "", errors.New("storage not initialized")
	}

	switch goos {
	case "windows":
		appData := getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA environment variable not set")
		}
		return filepath.Join(appData, appName), nil
	case "darwin":
		h, err := home()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(h, "Library", "Application Support", appName), nil
	}

	if dataHome := getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	h, err := home()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(h, ".local", "share", appName), nil
}

// EnsureDirectories creates the base directory and its data directories.
func EnsureDirectories() error {
	baseDir, err := GetBaseDir()
	if err != nil {
		return err
	}
	for _, name := range append([]string{""}, dataDirs...) {
		dir := filepath.Join(baseDir, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetConfigPath returns the path of config.json
func GetConfigPath() (string, error) {
	return subPath(configFile)
}

// GetSystemDir returns the default firmware directory
func GetSystemDir() (string, error) {
	return subPath(systemDir)
}

// GetSavesDir returns the default save state root
func GetSavesDir() (string, error) {
	return subPath(savesDir)
}

// GetScreenshotDir returns the screenshot directory
func GetScreenshotDir() (string, error) {
	return subPath(screenshotDir)
}

func subPath(name string) (string, error) {
	baseDir, err := GetBaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, name), nil
}

// StorageSaveDir returns the save directory for one storage image under
// root. The image's base name without extension names the directory.
func StorageSaveDir(root, imagePath string) string {
	base := filepath.Base(imagePath)
	name := base[:len(base)-len(filepath.Ext(base))]
	if name == "" {
		name = base
	}
	return filepath.Join(root, name)
}

// AtomicWriteJSON writes data as indented JSON with AtomicWriteFile.
func AtomicWriteJSON(path string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return AtomicWriteFile(path, jsonData)
}

// AtomicWriteFile writes data to a temporary file next to path and renames
// it into place, so readers never see a partial file. Missing parent
// directories are created.
func AtomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0644)
	}
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ReadJSON reads and unmarshals a JSON file
func ReadJSON(path string, data interface{}) error {
	jsonData, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(jsonData, data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}
