package fonts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFontFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("font"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestDiscoverFiltersExtensionsCaseInsensitively(t *testing.T) {
	dir := t.TempDir()
	writeFontFiles(t, dir, "Roboto.ttf", "Impact.TTF", "Lobster.otf", "readme.txt", ".ttf")
	if err := os.Mkdir(filepath.Join(dir, "nested.ttf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	catalog, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	want := []string{"Impact", "Lobster", "Roboto"}
	if got := catalog.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected names: got %v want %v", got, want)
	}
	if path, ok := catalog.Lookup("Impact"); !ok || path != filepath.Join(dir, "Impact.TTF") {
		t.Fatalf("unexpected Impact lookup: %q %v", path, ok)
	}
	if _, ok := catalog.AllowList()["Roboto"]; !ok {
		t.Fatal("expected Roboto in allow-list")
	}
}

func TestDiscoverMissingDirectoryFails(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if _, err := Discover("  "); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestLookupFoldsCase(t *testing.T) {
	catalog := NewCatalog("/fonts", map[string]string{"Roboto": "/fonts/Roboto.ttf"})
	if !catalog.Allowed("roboto") {
		t.Fatal("expected case-insensitive match")
	}
	if catalog.Allowed("Robot") {
		t.Fatal("unexpected prefix match")
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	catalog := NewCatalog("/fonts", map[string]string{
		"Arial":  "/fonts/Arial.ttf",
		"Roboto": "/fonts/Roboto.ttf",
	})

	res := catalog.Resolve("Roboto", "Arial")
	if res.Fallback || res.Path != "/fonts/Roboto.ttf" {
		t.Fatalf("unexpected resolution: %+v", res)
	}

	res = catalog.Resolve("Comic Sans", "Arial")
	if !res.Fallback || res.Name != "Arial" || res.Path != "/fonts/Arial.ttf" {
		t.Fatalf("unexpected fallback resolution: %+v", res)
	}

	res = NewCatalog("/fonts", nil).Resolve("Comic Sans", "Arial")
	if !res.Fallback || res.Path != "" {
		t.Fatalf("expected empty path when fallback is missing: %+v", res)
	}
}

func TestResolveInstalledNames(t *testing.T) {
	setHelperCommand(t, "families")
	catalog := NewCatalog("/fonts", map[string]string{
		"Roboto": "/fonts/Roboto.ttf",
		"Impact": "/fonts/Impact.ttf",
	})

	names, err := catalog.ResolveInstalledNames(context.Background(), "fc-list")
	if err != nil {
		t.Fatalf("ResolveInstalledNames returned error: %v", err)
	}
	want := []string{"IMPACT", "Roboto", "Roboto Condensed"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("unexpected families: got %v want %v", names, want)
	}
}

func TestResolveInstalledNamesFailure(t *testing.T) {
	setHelperCommand(t, "failure")
	catalog := NewCatalog("/fonts", map[string]string{"Roboto": "/fonts/Roboto.ttf"})
	if _, err := catalog.ResolveInstalledNames(context.Background(), ""); err == nil {
		t.Fatal("expected error when fc-list fails")
	}
}

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("FCLIST_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("FCLIST_HELPER_MODE") {
	case "families":
		fmt.Println("/usr/share/fonts/custom/Roboto.ttf: Roboto:style=Regular")
		fmt.Println("/usr/share/fonts/custom/Roboto.ttf: Roboto:style=Regular")
		fmt.Println("/usr/share/fonts/custom/RobotoCondensed.ttf: Roboto Condensed:style=Bold")
		fmt.Println("IMPACT")
		fmt.Println("DejaVu Sans")
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "fontconfig unavailable")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
