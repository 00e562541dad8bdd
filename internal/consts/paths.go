package consts

import (
	"os"
	"path/filepath"
)

const (
	BeaconDirName    = ".beacon"
	ConfigFileName   = "config.yaml"
	DatabaseFileName = "beacon.db"
)

func BeaconHomeDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, BeaconDirName)
}

func DefaultConfigPath() string {
	return filepath.Join(BeaconHomeDir(), ConfigFileName)
}

func DefaultDatabasePath() string {
	return filepath.Join(BeaconHomeDir(), DatabaseFileName)
}
