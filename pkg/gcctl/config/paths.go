package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName  = "gcctl"
	defaultConfigFile     = "config.yaml"
	defaultCredentialFile = "auth.json"
)

func DefaultConfigPath() string {
	if env := os.Getenv("GCCTL_CONFIG"); env != "" {
		return env
	}
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultConfigFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".gcctl", defaultConfigFile)
}

func DefaultCredentialPath() string {
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultCredentialFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".gcctl", defaultCredentialFile)
}
