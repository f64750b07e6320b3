package config

import (
	"os"
	"path/filepath"
	"strings"
)

// resolvePath expands $VAR references and a leading ~ in p, then makes it
// absolute. Relative paths are taken against base, or the working directory
// when base is empty. An empty p stays empty.
func resolvePath(p, base string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	if !filepath.IsAbs(p) && base != "" {
		p = filepath.Join(base, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return p
}
