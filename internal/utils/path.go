package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver resolves data and config locations relative to the running
// binary, with working-directory fallbacks for development.
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver locates the executable and the platform config dir.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		homeDir:       homeDir,
		configDir:     getConfigDir(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

// getConfigDir returns the appropriate config directory for the platform.
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "darwin", "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "wordvec")
		}
		return filepath.Join(homeDir, ".config", "wordvec")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "wordvec")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "wordvec")
	default:
		return filepath.Join(homeDir, ".wordvec")
	}
}

// GetDataDir resolves the directory holding embedding files, trying the
// user-specified path, then the same path relative to the executable, then
// relative to the working directory.
func (pr *PathResolver) GetDataDir(userSpecifiedPath string) (string, error) {
	var candidates []string
	if filepath.IsAbs(userSpecifiedPath) {
		candidates = append(candidates, userSpecifiedPath)
	}
	candidates = append(candidates, filepath.Join(pr.executableDir, userSpecifiedPath))
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, userSpecifiedPath))
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("no embeddings directory found, tried: %v", candidates)
}

// GetConfigPath returns the full path for a config file, ensuring the
// config directory exists.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	if result := CheckDirStatus(pr.configDir); result.Writable {
		return filepath.Join(pr.configDir, filename), nil
	}
	// Fall back next to the binary when the config dir is unusable.
	if result := CheckDirStatus(pr.executableDir); result.Writable {
		return filepath.Join(pr.executableDir, filename), nil
	}
	return "", fmt.Errorf("no writable location for %s", filename)
}
