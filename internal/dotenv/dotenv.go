// Package dotenv locates and loads .env files for the CLI and for
// integration tests. Variables already present in the environment win.
package dotenv

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// maxParentLevels bounds the upward search for a .env / go.mod.
const maxParentLevels = 6

// LoadDotEnv loads variables from a .env file if present.
// With explicit paths they are loaded as given. Otherwise the current
// directory is tried first, then the nearest project root (a directory
// holding go.mod), walking up at most maxParentLevels directories.
func LoadDotEnv(paths ...string) error {
	if len(paths) > 0 {
		return godotenv.Load(paths...)
	}
	if err := godotenv.Load(); err == nil {
		return nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return err
	}
	envPath := filepath.Join(root, ".env")
	if _, err := os.Stat(envPath); err != nil {
		return os.ErrNotExist
	}
	return godotenv.Load(envPath)
}

// FindProjectRoot walks up from start until it finds a directory that
// contains go.mod.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for range maxParentLevels + 1 {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errors.New("project root not found")
}

// GetEnv returns the environment variable value if set, or the default.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
