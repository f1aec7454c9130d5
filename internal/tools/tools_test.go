package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and optionally fails or runs a hook.
type fakeRunner struct {
	calls  [][]string
	err    error
	onRun  func(name string, args []string)
	stdout string
	stderr string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	call := append([]string{name}, args...)
	r.calls = append(r.calls, call)
	if r.onRun != nil {
		r.onRun(name, args)
	}
	if r.err != nil {
		return r.stdout, r.stderr, r.err
	}
	return r.stdout, r.stderr, nil
}

// fakeIconConverter returns <src>.ico without invoking anything.
type fakeIconConverter struct {
	converted []string
	err       error
}

func (c *fakeIconConverter) Convert(ctx context.Context, sourcePath string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.converted = append(c.converted, sourcePath)
	icoPath := sourcePath + ".ico"
	if err := os.WriteFile(icoPath, []byte("ico"), 0644); err != nil {
		return "", err
	}
	return icoPath, nil
}

// makeBundleTree lays out a minimal modern-Electron bundle.
func makeBundleTree(t *testing.T, name, version, title string) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"MyApp.exe":                  "exe bytes",
		"notification_helper.exe":    "helper",
		"resources.pak":              "pak",
		"resources/app/package.json": `{"name": "` + name + `", "version": "` + version + `"}`,
		"resources/app/index.html":   "<html><head><title>" + title + "</title></head></html>",
		"resources/app/icon.png":     "png bytes",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}
