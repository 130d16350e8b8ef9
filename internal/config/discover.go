package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const configFileName = "config.yaml"
const configDirName = "ike"

// ProjectDirName is the directory next to ike.toml holding project settings.
const ProjectDirName = ".ike"

// ConfigLevel represents the precedence level of a configuration file.
type ConfigLevel string

const (
	LevelSystem  ConfigLevel = "system"
	LevelUser    ConfigLevel = "user"
	LevelProject ConfigLevel = "project"
	LevelFile    ConfigLevel = "file"
)

// ConfigLayerInfo describes a discovered config file and its load status.
type ConfigLayerInfo struct {
	Err    error // non-nil if the file exists but failed to load
	Path   string
	Level  ConfigLevel
	Loaded bool
}

// DiscoverOptions controls how config paths are discovered.
type DiscoverOptions struct {
	// ProjectDir is the directory holding ike.toml. Empty skips the project layer.
	ProjectDir string

	// SystemConfigPath overrides the default system config path.
	// Empty means use the OS default. Set to a nonexistent path to skip.
	SystemConfigPath string

	// UserConfigPath overrides the default user config path.
	// Empty means use the OS default. Set to a nonexistent path to skip.
	UserConfigPath string

	// NoInherit skips the system and user layers.
	NoInherit bool
}

// ProjectConfigPath returns the project settings file for a manifest directory.
func ProjectConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ProjectDirName, configFileName)
}

// DiscoverPaths returns the ordered list of config file paths to check,
// from lowest precedence (system) to highest (project).
// Paths are deduplicated by resolved absolute path.
func DiscoverPaths(opts DiscoverOptions) []ConfigLayerInfo {
	var layers []ConfigLayerInfo
	seen := make(map[string]bool)

	addLayer := func(level ConfigLevel, path string) {
		if path == "" {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		layers = append(layers, ConfigLayerInfo{
			Path:  path,
			Level: level,
		})
	}

	if !opts.NoInherit {
		sysPath := opts.SystemConfigPath
		if sysPath == "" {
			sysPath = defaultSystemConfigPath()
		}
		addLayer(LevelSystem, sysPath)

		userPath := opts.UserConfigPath
		if userPath == "" {
			userPath = defaultUserConfigPath()
		}
		addLayer(LevelUser, userPath)
	}

	if opts.ProjectDir != "" {
		addLayer(LevelProject, ProjectConfigPath(opts.ProjectDir))
	}

	return layers
}

// defaultSystemConfigPath returns the platform-standard system config path.
func defaultSystemConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		pd := os.Getenv("ProgramData")
		if pd == "" {
			pd = `C:\ProgramData`
		}
		return filepath.Join(pd, configDirName, configFileName)
	default: // linux, darwin, etc.
		return filepath.Join("/etc", configDirName, configFileName)
	}
}

// defaultUserConfigPath returns the platform-standard user config path.
func defaultUserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configDirName, configFileName)
}

// EnvNoInherit returns true if IKE_NO_INHERIT is set to "1" or "true".
func EnvNoInherit() bool {
	return envBoolTrue("IKE_NO_INHERIT")
}

// envBoolTrue returns true if the env var is set to "1" or "true" (case-insensitive).
func envBoolTrue(key string) bool {
	v := os.Getenv(key)
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "1" || v == "true"
}
