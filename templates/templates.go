// Package templates ships the card designs built into the binary.
package templates

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed *.svg
var files embed.FS

// Template is one embedded design.
type Template struct {
	Name    string // file name without extension
	Content string
}

// List returns the embedded templates sorted by name. Files whose name
// starts with "dev" are work in progress and are not listed.
func List() []Template {
	names, err := fs.Glob(files, "*.svg")
	if err != nil {
		return nil
	}
	sort.Strings(names)

	out := make([]Template, 0, len(names))
	for _, n := range names {
		if strings.HasPrefix(n, "dev") {
			continue
		}
		data, err := files.ReadFile(n)
		if err != nil {
			continue
		}
		out = append(out, Template{Name: strings.TrimSuffix(n, path.Ext(n)), Content: string(data)})
	}
	return out
}

// ByName finds a listed template.
func ByName(name string) (Template, bool) {
	for _, t := range List() {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}
