package boarddir

import (
	"path/filepath"
	"testing"
)

func TestPaths(t *testing.T) {
	base := filepath.Join("home", "me", ".taskboard")
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"store", StorePath(base), filepath.Join(base, "store")},
		{"db", DBPath(base), filepath.Join(base, "taskboard.db")},
		{"logs", LogPath(base), filepath.Join(base, "logs")},
		{"config", ConfigPath(base), filepath.Join(base, "taskboard.toml")},
		{"empty falls back to Dir", StorePath(""), filepath.Join(".taskboard", "store")},
		{"dot falls back to Dir", DBPath("."), filepath.Join(".taskboard", "taskboard.db")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
