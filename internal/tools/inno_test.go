package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderScript(t *testing.T) {
	root := makeBundleTree(t, "myapp", "2.0.0", "My App")
	builder := NewInstallerBuilder("iscc", &fakeRunner{}, &fakeIconConverter{})

	script, outputName, err := builder.RenderScript(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, "myapp Setup", outputName)
	assert.Contains(t, script, `#define PACKAGE_NAME "myapp"`)
	assert.Contains(t, script, `#define VERSION "2.0.0"`)
	assert.Contains(t, script, `#define TITLE "My App"`)
	assert.Contains(t, script, `#define EXECUTABLE "MyApp.exe"`)
	assert.Contains(t, script, "AppName={#PACKAGE_NAME}")
	assert.Contains(t, script, "AppVersion={#VERSION}")
	assert.Contains(t, script, "OutputDir=Generated Installer")
	assert.Contains(t, script, "OutputBaseFilename=myapp Setup")
	assert.Contains(t, script, "SetupIconFile="+filepath.Join("resources", "app", "icon.png.ico"))
}

func TestRenderScriptEscapesInnoValues(t *testing.T) {
	root := makeBundleTree(t, "myapp", "1.0.0", `My {Cool} "App"`)
	builder := NewInstallerBuilder("iscc", &fakeRunner{}, &fakeIconConverter{})

	script, _, err := builder.RenderScript(context.Background(), root)
	require.NoError(t, err)

	assert.Contains(t, script, `#define TITLE "My {{Cool} App"`)
}

func TestRenderScriptRejectsUnsafePackageName(t *testing.T) {
	root := makeBundleTree(t, "my/app", "1.0.0", "My App")
	builder := NewInstallerBuilder("iscc", &fakeRunner{}, &fakeIconConverter{})

	_, _, err := builder.RenderScript(context.Background(), root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "should not use the characters")
}

func TestBuildProducesInstaller(t *testing.T) {
	root := makeBundleTree(t, "myapp", "2.0.0", "My App")

	runner := &fakeRunner{}
	runner.onRun = func(name string, args []string) {
		if name != "iscc" {
			return
		}
		// The compiler would write the installer; the fake does the same.
		outDir := filepath.Join(root, InstallerOutputDir)
		if err := os.MkdirAll(outDir, 0755); err != nil {
			t.Fatalf("failed to create output dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(outDir, "myapp Setup.exe"), []byte("installer"), 0644); err != nil {
			t.Fatalf("failed to write installer: %v", err)
		}
	}

	builder := NewInstallerBuilder("iscc", runner, &fakeIconConverter{})
	installer, err := builder.Build(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, InstallerOutputDir, "myapp Setup.exe"), installer)

	// The script is written where the compiler was pointed, UTF-8 with BOM.
	require.Len(t, runner.calls, 1)
	scriptPath := runner.calls[0][1]
	assert.Equal(t, filepath.Join(root, "config.iss"), scriptPath)

	data, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\xef\xbb\xbf"), "script missing UTF-8 BOM")
}

func TestBuildMissingOutput(t *testing.T) {
	root := makeBundleTree(t, "myapp", "2.0.0", "My App")

	// Compiler "succeeds" but writes nothing.
	builder := NewInstallerBuilder("iscc", &fakeRunner{}, &fakeIconConverter{})
	_, err := builder.Build(context.Background(), root)
	require.Error(t, err)

	var missing *MissingOutputError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Path, "myapp Setup.exe")
}

func TestBuildPropagatesCompilerFailure(t *testing.T) {
	root := makeBundleTree(t, "myapp", "2.0.0", "My App")
	toolErr := &ToolError{Tool: "iscc", ExitCode: 2, Output: "syntax error in script"}
	builder := NewInstallerBuilder("iscc", &fakeRunner{err: toolErr}, &fakeIconConverter{})

	_, err := builder.Build(context.Background(), root)
	require.Error(t, err)

	var got *ToolError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 2, got.ExitCode)
}
