package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	binDir     string
	fontsDir   string
	outputDir  string
	cacheDir   string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub executables are shell scripts")
	}
	t.Setenv("CAPTIONFORGE_STORAGE_BACKEND", "")
	t.Setenv("CAPTIONFORGE_PUBLIC_BASE_URL", "")

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		binDir:     filepath.Join(base, "bin"),
		fontsDir:   filepath.Join(base, "fonts"),
		outputDir:  filepath.Join(base, "output"),
		cacheDir:   filepath.Join(base, "cache"),
		configPath: filepath.Join(base, "config.toml"),
	}
	if err := os.MkdirAll(env.fontsDir, 0o755); err != nil {
		t.Fatalf("create fonts dir: %v", err)
	}
	for _, name := range []string{"Roboto.ttf", "Arial.otf"} {
		if err := os.WriteFile(filepath.Join(env.fontsDir, name), []byte("font"), 0o644); err != nil {
			t.Fatalf("write font: %v", err)
		}
	}
	makeStubExecutables(t, env.binDir, "ffmpeg", "ffprobe", "fc-list")
	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
staging_dir = %q
fonts_dir = %q
log_dir = %q
cache_dir = %q

[fonts]
default_family = "Roboto"

[render]
ffmpeg_binary = %q
ffprobe_binary = %q
fc_list_binary = %q

[storage]
backend = "local"
local_dir = %q

[cache]
enabled = true
backend = "file"
ttl_hours = 1

[logging]
level = "error"
`,
		filepath.Join(env.baseDir, "staging"),
		env.fontsDir,
		filepath.Join(env.baseDir, "logs"),
		env.cacheDir,
		filepath.Join(env.binDir, "ffmpeg"),
		filepath.Join(env.binDir, "ffprobe"),
		filepath.Join(env.binDir, "fc-list"),
		env.outputDir,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// makeStubExecutables writes shell stand-ins. The ffmpeg stub appends to
// ffmpeg.calls, reports progress, and writes its last argument.
func makeStubExecutables(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create stub bin dir: %v", err)
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		var script string
		switch name {
		case "ffmpeg":
			script = `#!/bin/sh
echo "$@" >> "$(dirname "$0")/ffmpeg.calls"
for arg; do out="$arg"; done
printf 'frame=12\nprogress=continue\nframe=24\nprogress=end\n'
printf 'rendered' > "$out"
`
		case "ffprobe":
			script = `#!/bin/sh
cat <<'JSON'
{"streams":[{"index":0,"codec_type":"video","width":1280,"height":720,"nb_frames":"24","avg_frame_rate":"24/1"}],"format":{"duration":"1.000000"}}
JSON
`
		case "fc-list":
			script = "#!/bin/sh\nprintf 'Roboto\\nDejaVu Sans\\n'\n"
		default:
			script = "#!/bin/sh\nexit 0\n"
		}
		if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func ffmpegCalls(t *testing.T, env *cliTestEnv) int {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(env.binDir, "ffmpeg.calls"))
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("read ffmpeg calls: %v", err)
	}
	return len(strings.Split(strings.TrimSpace(string(data)), "\n"))
}
