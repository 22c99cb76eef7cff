package utils

import (
	"context"
	"os/exec"
	"runtime/debug"
	"strings"
	"time"
)

const (
	unknownVersion        = "unknown"
	developmentVersion    = "(devel)"
	versionCommandTimeout = 2 * time.Second
)

// ApplicationVersion may be set at link time with -ldflags "-X".
var ApplicationVersion string

// GetApplicationVersion reports the link-time version, then the module version recorded in the
// build information, then the nearest git tag of the working directory.
func GetApplicationVersion() string {
	if ApplicationVersion != "" {
		return ApplicationVersion
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != developmentVersion {
		return buildInfo.Main.Version
	}

	versionContext, cancel := context.WithTimeout(context.Background(), versionCommandTimeout)
	defer cancel()
	// #nosec G204
	describeOutput, describeError := exec.CommandContext(versionContext, "git", "describe", "--tags", "--always", "--dirty").Output()
	if describeError == nil {
		if describedVersion := strings.TrimSpace(string(describeOutput)); describedVersion != "" {
			return describedVersion
		}
	}
	return unknownVersion
}
