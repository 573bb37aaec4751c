package packager

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/chatgpt-extension-packager/internal/logger"
)

const (
	// MarkerFilename marks that a packaging run is in progress to avoid parallel execution.
	MarkerFilename = "extension-packager-marker.bin"

	// markerLifetime is how long a marker is trusted without checking
	// whether its owner is still alive.
	markerLifetime = 30 * time.Second

	// executableBaseName is the name other packager instances run under.
	executableBaseName = "extension-packager"
)

// IsPackagerRunningNow checks presence of a marker file and attempts recovery if it looks stale.
func IsPackagerRunningNow(ctx context.Context) bool {
	logger.Info(ctx, "Checking for the presence of a run marker")

	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The run marker is old, checking for a live packager process")

		if isProcessAlive(packagerExecutable()) {
			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			logger.Infof(ctx, "Unable to remove stale run marker: %v", err)

			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Run marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read run marker: %v", err)

	return false
}

// isProcessAlive reports whether a process with the given executable name
// exists besides the current one.
func isProcessAlive(executableName string) bool {
	processList, err := ps.Processes()
	if err != nil {
		// Can't inspect processes, assume the marker owner is alive.
		return true
	}

	currentProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == currentProcessID {
			continue
		}

		if process.Executable() == executableName {
			return true
		}
	}

	return false
}

// packagerExecutable returns the packager executable name for the current platform.
func packagerExecutable() string {
	return executableBaseName + getExecutableExtension()
}

// getExecutableExtension returns ".exe" on Windows and an empty string on other platforms.
func getExecutableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}
