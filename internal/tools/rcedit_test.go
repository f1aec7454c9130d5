package tools

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func newTestFixer(runner *fakeRunner, icons *fakeIconConverter) *MetadataFixer {
	fixer := NewMetadataFixer("rcedit", runner, icons)
	fixer.now = fixedClock
	return fixer
}

func TestMetadataFixerBuildArgs(t *testing.T) {
	root := makeBundleTree(t, "myapp", "2.0.0", "My App")
	runner := &fakeRunner{}
	icons := &fakeIconConverter{}
	fixer := newTestFixer(runner, icons)

	args, err := fixer.BuildArgs(context.Background(), root)
	require.NoError(t, err)

	icoPath := filepath.Join(root, "resources", "app", "icon.png.ico")
	expected := []string{
		filepath.Join(root, "MyApp.exe"),
		"--set-icon", icoPath,
		"--set-version-string", "ProductName", "My App",
		"--set-version-string", "InternalName", "My App",
		"--set-version-string", "OriginalFilename", "",
		"--set-version-string", "FileDescription", "My App",
		"--set-product-version", "2.0.0",
		"--set-file-version", "2.0.0.0",
		"--set-version-string", "LegalCopyright", "Copyright (C) 2024",
	}
	assert.Equal(t, expected, args)
	assert.Equal(t, []string{filepath.Join(root, "resources", "app", "icon.png")}, icons.converted)
}

func TestMetadataFixerStripsNonASCIITitle(t *testing.T) {
	root := makeBundleTree(t, "myapp", "1.0.0", "Café ☕")
	fixer := newTestFixer(&fakeRunner{}, &fakeIconConverter{})

	args, err := fixer.BuildArgs(context.Background(), root)
	require.NoError(t, err)

	assert.Contains(t, args, "ProductName")
	for i, arg := range args {
		if arg == "ProductName" {
			assert.Equal(t, "Caf", args[i+1])
		}
	}
}

func TestMetadataFixerWhollyNonASCIITitle(t *testing.T) {
	// A title that strips to nothing must not emit ProductName at all,
	// but FileDescription is still set (to the empty string).
	root := makeBundleTree(t, "myapp", "1.0.0", "アプリ")
	fixer := newTestFixer(&fakeRunner{}, &fakeIconConverter{})

	args, err := fixer.BuildArgs(context.Background(), root)
	require.NoError(t, err)

	assert.NotContains(t, args, "ProductName")
	assert.Contains(t, args, "FileDescription")
}

func TestMetadataFixerInvalidPackageVersion(t *testing.T) {
	root := makeBundleTree(t, "myapp", "1.2", "My App")
	fixer := newTestFixer(&fakeRunner{}, &fakeIconConverter{})

	_, err := fixer.BuildArgs(context.Background(), root)
	require.Error(t, err)
}

func TestMetadataFixerRunsRcedit(t *testing.T) {
	root := makeBundleTree(t, "myapp", "2.0.0", "My App")
	runner := &fakeRunner{}
	fixer := newTestFixer(runner, &fakeIconConverter{})

	require.NoError(t, fixer.Fix(context.Background(), root))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "rcedit", runner.calls[0][0])
	assert.Equal(t, filepath.Join(root, "MyApp.exe"), runner.calls[0][1])
}

func TestMetadataFixerPropagatesToolError(t *testing.T) {
	root := makeBundleTree(t, "myapp", "2.0.0", "My App")
	toolErr := &ToolError{Tool: "rcedit", ExitCode: 1, Output: "bad resource"}
	runner := &fakeRunner{err: toolErr}
	fixer := newTestFixer(runner, &fakeIconConverter{})

	err := fixer.Fix(context.Background(), root)
	require.Error(t, err)

	var got *ToolError
	require.ErrorAs(t, err, &got)
	assert.Contains(t, got.Error(), "bad resource")
}
