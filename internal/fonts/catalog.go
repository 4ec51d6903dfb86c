package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

var fontExtensions = map[string]struct{}{
	".ttf": {},
	".otf": {},
}

// fold builds a fresh Caser per call; Casers are stateful and not safe for
// concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Catalog maps font names (file stems) to asset paths.
type Catalog struct {
	dir    string
	assets map[string]string
	folded map[string]string
}

// Discover scans dir for font files. Extensions match case-insensitively and the
// font name is the file name without its extension. An unreadable directory is
// returned as an error; callers treat it as fatal at startup.
func Discover(dir string) (*Catalog, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("fonts directory not configured")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fonts directory %q: %w", dir, err)
	}
	assets := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if _, ok := fontExtensions[strings.ToLower(ext)]; !ok {
			continue
		}
		stem := strings.TrimSuffix(name, ext)
		if stem == "" {
			continue
		}
		assets[stem] = filepath.Join(dir, name)
	}
	return NewCatalog(dir, assets), nil
}

// NewCatalog builds a catalog from an explicit name to path mapping.
func NewCatalog(dir string, assets map[string]string) *Catalog {
	c := &Catalog{
		dir:    dir,
		assets: make(map[string]string, len(assets)),
		folded: make(map[string]string, len(assets)),
	}
	for name, path := range assets {
		c.assets[name] = path
		c.folded[fold(name)] = name
	}
	return c
}

// Dir returns the scanned directory.
func (c *Catalog) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Len reports how many fonts were discovered.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.assets)
}

// Assets returns a copy of the name to path mapping.
func (c *Catalog) Assets() map[string]string {
	out := make(map[string]string, c.Len())
	if c == nil {
		return out
	}
	for name, path := range c.assets {
		out[name] = path
	}
	return out
}

// Names returns the sorted font names.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.assets))
	for name := range c.assets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllowList returns the set of font names accepted by option validation.
func (c *Catalog) AllowList() map[string]struct{} {
	set := make(map[string]struct{}, c.Len())
	if c == nil {
		return set
	}
	for name := range c.assets {
		set[name] = struct{}{}
	}
	return set
}

// Allowed reports whether name is in the allow-list. Matching ignores case.
func (c *Catalog) Allowed(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Lookup returns the asset path for name, matching exactly first and then
// case-insensitively.
func (c *Catalog) Lookup(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	if path, ok := c.assets[name]; ok {
		return path, true
	}
	canonical, ok := c.folded[fold(strings.TrimSpace(name))]
	if !ok {
		return "", false
	}
	return c.assets[canonical], true
}

// Resolution describes the outcome of Resolve.
type Resolution struct {
	Requested string
	Name      string
	Path      string
	Fallback  bool
}

// Resolve maps a requested font to an asset. When the font is unknown the
// fallback family is used and Fallback is set so callers can warn. Path is empty
// when neither font has an asset.
func (c *Catalog) Resolve(requested, fallback string) Resolution {
	if path, ok := c.Lookup(requested); ok {
		return Resolution{Requested: requested, Name: requested, Path: path}
	}
	res := Resolution{Requested: requested, Name: fallback, Fallback: true}
	if path, ok := c.Lookup(fallback); ok {
		res.Path = path
	}
	return res
}
