package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/makutaku/bundlefix/internal/bundle"
	"github.com/makutaku/bundlefix/internal/version"
	"github.com/makutaku/bundlefix/pkg/validation"
)

const (
	// InstallerOutputDir is where the Inno Setup compiler is told to place
	// its output, relative to the bundle root.
	InstallerOutputDir = "Generated Installer"

	innoScriptName = "config.iss"
)

// InstallerBuilder generates an Inno Setup definition for a bundle and
// compiles it into an installer executable.
type InstallerBuilder struct {
	// IsccPath is the Inno Setup command-line compiler executable.
	IsccPath string
	Runner   Runner
	Icons    IconConverter
}

// NewInstallerBuilder wires a builder around the given collaborators.
func NewInstallerBuilder(isccPath string, runner Runner, icons IconConverter) *InstallerBuilder {
	return &InstallerBuilder{IsccPath: isccPath, Runner: runner, Icons: icons}
}

// Build compiles an installer for the bundle at root and returns the path
// of the produced executable. The installer lands at
// "<root>/Generated Installer/<package> Setup.exe"; its absence after a
// successful compile is an error in its own right.
func (b *InstallerBuilder) Build(ctx context.Context, root string) (string, error) {
	script, outputName, err := b.RenderScript(ctx, root)
	if err != nil {
		return "", err
	}

	scriptPath := filepath.Join(root, innoScriptName)
	// Inno Setup needs UTF-8 with BOM to read non-Latin characters correctly.
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(script)...)
	if err := os.WriteFile(scriptPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write installer script: %w", err)
	}

	if _, _, err := b.Runner.Run(ctx, b.IsccPath, scriptPath); err != nil {
		return "", err
	}

	expected := filepath.Join(root, InstallerOutputDir, outputName+".exe")
	if _, err := os.Stat(expected); err != nil {
		return "", &MissingOutputError{Tool: b.IsccPath, Path: expected}
	}

	return expected, nil
}

// RenderScript produces the Inno Setup script text for the bundle at root
// along with the base name of the installer it will generate. Icon
// conversion runs here because the script references the .ico path.
func (b *InstallerBuilder) RenderScript(ctx context.Context, root string) (script, outputName string, err error) {
	executable, err := bundle.FindExecutable(root)
	if err != nil {
		return "", "", err
	}

	pkg, err := bundle.LoadPackageJSON(root)
	if err != nil {
		return "", "", err
	}
	if validation.ContainsUnsafeCharacters(pkg.Name) {
		return "", "", fmt.Errorf("package name %q should not use the characters: %s",
			pkg.Name, validation.FormattedUnsafeCharacters())
	}

	rawTitle, err := bundle.ProjectTitle(root)
	if err != nil {
		return "", "", err
	}
	title := validation.ReplaceUnsafeCharacters(rawTitle, "")

	productVersion, err := bundle.ProductVersion(pkg)
	if err != nil {
		return "", "", err
	}

	sourceIcon, err := bundle.FindIcon(root)
	if err != nil {
		return "", "", err
	}
	icon, err := b.Icons.Convert(ctx, sourceIcon)
	if err != nil {
		return "", "", err
	}
	relIcon, err := filepath.Rel(root, icon)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve icon path: %w", err)
	}

	outputName = pkg.Name + " Setup"
	script = fmt.Sprintf(innoScriptTemplate,
		version.GetVersionString(),
		escapeInnoValue(title),
		escapeInnoValue(pkg.Name),
		escapeInnoValue(executable),
		escapeInnoValue(productVersion),
		escapeInnoValue(InstallerOutputDir),
		escapeInnoValue(outputName),
		escapeInnoValue(relIcon),
		escapeInnoValue(title),
	)
	return script, outputName, nil
}

// escapeInnoValue neutralizes characters with special meaning in Inno
// Setup values: constant braces are doubled and double quotes dropped.
func escapeInnoValue(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, `"`, "")
}

const innoScriptTemplate = `; Generated by bundlefix %s

#define TITLE "%s"
#define PACKAGE_NAME "%s"
#define EXECUTABLE "%s"
#define VERSION "%s"

[Setup]
AppName={#PACKAGE_NAME}
AppVersion={#VERSION}
WizardStyle=classic
DefaultDirName={autopf}\{#PACKAGE_NAME}
UninstallDisplayIcon={app}\{#EXECUTABLE}
DefaultGroupName={#TITLE}
PrivilegesRequired=lowest
Compression=lzma2
SolidCompression=yes
OutputDir=%s
OutputBaseFilename=%s
SetupIconFile=%s

[Tasks]
Name: "desktopicon"; Description: "{cm:CreateDesktopIcon}"; GroupDescription: "{cm:AdditionalIcons}"

[Files]
Source: "*"; DestDir: "{app}"; Excludes: "*.iss"; Flags: recursesubdirs ignoreversion

[Icons]
Name: "{group}\{#TITLE}"; Filename: "{app}\{#EXECUTABLE}"
Name: "{userdesktop}\{#TITLE}"; Filename: "{app}\{#EXECUTABLE}"; Tasks: desktopicon

[Run]
Filename: "{app}\{#EXECUTABLE}"; Description: "{cm:LaunchProgram,%s}"; Flags: postinstall nowait skipifsilent

[CustomMessages]
DeleteUserData=Remove user data such as settings and saves?

[Code]
procedure CurUninstallStepChanged(CurUninstallStep: TUninstallStep);
begin
  case CurUninstallStep of
    usPostUninstall:
      begin
        if MsgBox(CustomMessage('DeleteUserData'), mbInformation, MB_YESNO or MB_DEFBUTTON2) = IDYES then
        begin
          // Electron
          DelTree(ExpandConstant('{userappdata}\{#PACKAGE_NAME}'), True, True, True);
          // NW.js
          DelTree(ExpandConstant('{localappdata}\{#PACKAGE_NAME}'), True, True, True);
        end;
      end;
  end;
end;
`
