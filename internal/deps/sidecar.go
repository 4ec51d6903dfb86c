package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFprobe returns the ffprobe binary to pair with ffmpegCommand.
//
// Static ffmpeg builds ship ffprobe in the same directory, so when ffprobe is
// left at its bare default and ffmpeg resolves to a directory that holds an
// executable ffprobe, that sidecar wins. Anything explicitly configured is
// returned unchanged.
func ResolveFFprobe(ffmpegCommand, ffprobeCommand string) string {
	ffprobeCommand = strings.TrimSpace(ffprobeCommand)
	if ffprobeCommand != "" && ffprobeCommand != "ffprobe" {
		return ffprobeCommand
	}
	if resolved, err := exec.LookPath(strings.TrimSpace(ffmpegCommand)); err == nil {
		candidate := filepath.Join(filepath.Dir(resolved), executableName("ffprobe"))
		if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
			return candidate
		}
	}
	return "ffprobe"
}

func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
