package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// TestCacheClearCmd tests the cache clear command against an isolated
// cache directory.
func TestCacheClearCmd(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "cache")

	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetArgs([]string{"cache", "clear", "--cache-dir", dir})

	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Cache cleared") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
