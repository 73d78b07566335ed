package utils

import (
	"path/filepath"
	"testing"
)

func TestGetAbsolutePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		baseDir string
		want    string
	}{
		{"absolute", "/test/file.txt", "/base/dir", "/test/file.txt"},
		{"relative", "relative/file.txt", "/base/dir", "/base/dir/relative/file.txt"},
		{"dot", "./file.txt", "/base/dir", "/base/dir/file.txt"},
		{"double dot", "../file.txt", "/base/dir", "/base/file.txt"},
		{"empty path", "", "/base/dir", "/base/dir"},
		{"empty base", "file.txt", "", "file.txt"},
		{"cleaning", "a//b/../c/file.txt", "/base//dir", "/base/dir/a/c/file.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetAbsolutePath(tt.path, tt.baseDir); got != tt.want {
				t.Errorf("GetAbsolutePath(%q, %q) = %q, want %q", tt.path, tt.baseDir, got, tt.want)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/a/b", filepath.Join(home, "a/b")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~user/x", "~user/x"},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
