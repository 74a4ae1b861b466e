package card

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/buffos/go-trackcard/internal/log"
	"github.com/buffos/go-trackcard/internal/template"
)

// Extensions FileAssets looks for, in order.
var assetExtensions = []string{".png", ".jpg", ".jpeg", ".svg"}

// FileAssets serves image_<name> placeholders from <Dir>/<name>.<ext> as
// data URIs, so a template can pull in a logo or photo per ride.
type FileAssets struct {
	Dir string
}

// Image implements template.AssetProvider. The requested pixel size is not
// used; the file is embedded as is.
func (f FileAssets) Image(req template.ImageRequest) (string, bool) {
	if f.Dir == "" {
		return "", false
	}
	name := strings.TrimPrefix(req.ID, template.ImagePrefix)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}

	for _, ext := range assetExtensions {
		path := filepath.Join(f.Dir, name+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		log.Debugf("embedding %s for %s", path, req.ID)
		return fmt.Sprintf("data:%s;base64,%s", getMimeType(path), base64.StdEncoding.EncodeToString(data)), true
	}
	return "", false
}

// getMimeType maps a file extension to its MIME type.
func getMimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		switch ext {
		case ".jpg", ".jpeg":
			return "image/jpeg"
		case ".png":
			return "image/png"
		case ".svg":
			return "image/svg+xml"
		default:
			return "application/octet-stream"
		}
	}
	return mimeType
}

// Assets asks each provider in turn and returns the first answer.
func Assets(providers ...template.AssetProvider) template.AssetProvider {
	return template.AssetFunc(func(req template.ImageRequest) (string, bool) {
		for _, p := range providers {
			if p == nil {
				continue
			}
			if href, ok := p.Image(req); ok {
				return href, true
			}
		}
		return "", false
	})
}
