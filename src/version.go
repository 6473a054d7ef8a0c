package lfdemod

import (
	"fmt"
	"runtime/debug"
	"strconv"
)

// Set at build time via `-ldflags "-X 'github.com/RfidResearchGroup/proxmark3-sub006/src.LFDEMOD_VERSION=X'"`
var LFDEMOD_VERSION string

func buildSetting(bi *debug.BuildInfo, key string, defaultValue string) string {
	if bi == nil {
		return defaultValue
	}

	for _, bs := range bi.Settings {
		if bs.Key == key {
			return bs.Value
		}
	}

	return defaultValue
}

// versionString describes the binary: release, VCS revision and build time where known.
func versionString(tool string) string {
	var buildInfo, _ = debug.ReadBuildInfo()

	var revision = buildSetting(buildInfo, "vcs.revision", "UNKNOWN")
	var modified, modifiedErr = strconv.ParseBool(buildSetting(buildInfo, "vcs.modified", "INVALID"))

	if modified {
		revision += "-DIRTY"
	} else if modifiedErr != nil {
		revision += "-UNKNOWNDIRTY"
	}

	var version = LFDEMOD_VERSION
	if version == "" {
		version = "!UNKNOWN!"
	}

	return fmt.Sprintf("%s - Version %s (revision %s, built at %s)", tool, version, revision, buildSetting(buildInfo, "vcs.time", "UNKNOWN"))
}

func printVersion(tool string, verbose bool) {
	fmt.Println(versionString(tool))

	if verbose {
		var buildInfo, _ = debug.ReadBuildInfo()
		fmt.Printf("\nBuildInfo: %+v\n", buildInfo)
	}
}
