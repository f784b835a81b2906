package commands

import (
	"embed"
	"os"
	"path"
)

//go:embed templates
var templateFS embed.FS

// writeTemplate copies an embedded template to target. An existing file is
// left alone unless force is set; the result reports whether it was written.
func writeTemplate(name, target string, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(target); err == nil {
			return false, nil
		}
	}

	content, err := templateFS.ReadFile(path.Join("templates", name))
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(target, content, 0600); err != nil {
		return false, err
	}
	return true, nil
}
