package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreDiskv  = "diskv"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	Store       string `json:"store" mapstructure:"store"`     // diskv | sqlite | memory
	DataDir     string `json:"dataDir" mapstructure:"dataDir"` // root for the kv store
	HooksDir    string `json:"hooksDir" mapstructure:"hooksDir"`
	ExportDir   string `json:"exportDir" mapstructure:"exportDir"` // default archive destination
	LogFile     string `json:"logFile" mapstructure:"logFile"`
	FuzzySearch bool   `json:"fuzzySearch" mapstructure:"fuzzySearch"`
	Title       string `json:"title" mapstructure:"title"`
	Debug       bool   `json:"debug" mapstructure:"debug"`
}

func Default() Config {
	base := filepath.Join(UserHome(), ".config", "chatbar")
	return Config{
		Store:    StoreDiskv,
		DataDir:  filepath.Join(base, "data"),
		HooksDir: filepath.Join(base, "hooks"),
		// CWD by default; callers fall back to "." when empty
		ExportDir: "",
		LogFile:   filepath.Join(os.TempDir(), "chatbar.log"),
		Title:     "Chatbar",
	}
}

// DefaultPath is the config file consulted when none is given.
func DefaultPath() string {
	return filepath.Join(UserHome(), ".config", "chatbar.json")
}

// Load layers defaults, the JSON file at path (if it exists) and CHATBAR_*
// environment variables, in that order.
func Load(path string) (Config, error) {
	def := Default()
	v := viper.New()
	v.SetDefault("store", def.Store)
	v.SetDefault("dataDir", def.DataDir)
	v.SetDefault("hooksDir", def.HooksDir)
	v.SetDefault("exportDir", def.ExportDir)
	v.SetDefault("logFile", def.LogFile)
	v.SetDefault("fuzzySearch", def.FuzzySearch)
	v.SetDefault("title", def.Title)
	v.SetDefault("debug", def.Debug)
	v.SetEnvPrefix("CHATBAR")
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return def, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return def, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return def, fmt.Errorf("decode config: %w", err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreDiskv, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q (want %s, %s or %s)", c.Store, StoreDiskv, StoreSQLite, StoreMemory)
	}
	if c.Store != StoreMemory && c.DataDir == "" {
		return errors.New("dataDir is required")
	}
	return nil
}

func Save(path string, c Config) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func UserHome() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	if runtime.GOOS == "windows" {
		if h := os.Getenv("USERPROFILE"); h != "" {
			return h
		}
	}
	return "."
}

// EnsureDir creates path and any missing parents.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}
