package fonts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

var commandContext = exec.CommandContext

// ResolveInstalledNames runs fc-list and returns the sorted, deduplicated family
// names whose fontconfig entry contains a catalog font name (case-insensitive
// substring match). The result is diagnostic only.
func (c *Catalog) ResolveInstalledNames(ctx context.Context, binary string) ([]string, error) {
	if strings.TrimSpace(binary) == "" {
		binary = "fc-list"
	}
	cmd := commandContext(ctx, binary, ":family") //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%s: %w: %s", binary, err, detail)
		}
		return nil, fmt.Errorf("%s: %w", binary, err)
	}
	return c.matchFamilies(stdout.String()), nil
}

func (c *Catalog) matchFamilies(output string) []string {
	lines := make(map[string]struct{})
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines[line] = struct{}{}
		}
	}

	unique := make(map[string]struct{})
	for _, name := range c.Names() {
		needle := fold(name)
		for line := range lines {
			if !strings.Contains(fold(line), needle) {
				continue
			}
			if family := familyField(line); family != "" {
				unique[family] = struct{}{}
			}
		}
	}

	families := make([]string, 0, len(unique))
	for family := range unique {
		families = append(families, family)
	}
	sort.Strings(families)
	return families
}

// familyField extracts the family column from either "path: Family:style=..."
// or bare "Family" output lines.
func familyField(line string) string {
	parts := strings.Split(line, ":")
	if len(parts) >= 2 {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(parts[0])
}
