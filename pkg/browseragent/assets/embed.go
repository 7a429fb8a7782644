package assets

import (
	"embed"
	"io/fs"
	"path/filepath"
)

//go:embed all:driver_scripts
var driverScriptsFS embed.FS

const (
	driverDirInEmbed = "driver_scripts"
	RunScriptFile    = "run.sh"
	DriverPyFile     = "driver.py"
	RequirementsFile = "requirements.txt"
)

func GetDriverScriptContent(filename string) ([]byte, error) {
	return driverScriptsFS.ReadFile(filepath.Join(driverDirInEmbed, filename))
}

func GetDriverScriptsFS() fs.FS {
	subFS, err := fs.Sub(driverScriptsFS, driverDirInEmbed)
	if err != nil {
		panic("Failed to get sub-filesystem for driver scripts: " + err.Error())
	}
	return subFS
}
