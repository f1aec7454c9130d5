package bundle

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/makutaku/bundlefix/internal/version"
)

// PackageJSON is the subset of an Electron/NW.js package.json this tool
// reads. Modern Electron keeps it at resources/app/package.json; NW.js and
// old Electron keep it at the bundle root.
type PackageJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Window  struct {
		Icon string `json:"icon"`
	} `json:"window"`
}

// LoadPackageJSON locates and parses the bundle's package.json, trying the
// modern layout first and falling back to the legacy one.
func LoadPackageJSON(root string) (*PackageJSON, error) {
	candidates := []string{
		filepath.Join(root, "resources", "app", "package.json"),
		filepath.Join(root, "package.json"),
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var pkg PackageJSON
		if err := json.Unmarshal(data, &pkg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return &pkg, nil
	}

	return nil, fmt.Errorf("no package.json found in %s", root)
}

// ProductVersion returns the normalized three-part version from a parsed
// package.json. A missing version field maps to "1.0.0"; this fallback must
// stay for compatibility with bundles that never carried one.
func ProductVersion(pkg *PackageJSON) (string, error) {
	if pkg.Version == "" {
		return "1.0.0", nil
	}
	triple, err := version.ParseTriple(pkg.Version)
	if err != nil {
		return "", err
	}
	return triple.String(), nil
}

var titlePattern = regexp.MustCompile(`<title>(.*)</title>`)

// ProjectTitle extracts the project title from the bundle's index.html,
// trying the modern layout before the legacy one. HTML entities in the
// title are decoded.
func ProjectTitle(root string) (string, error) {
	candidates := []string{
		filepath.Join(root, "resources", "app", "index.html"),
		filepath.Join(root, "index.html"),
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}

		match := titlePattern.FindSubmatch(data)
		if match == nil {
			return "", fmt.Errorf("no <title> found in %s", path)
		}
		return html.UnescapeString(string(match[1])), nil
	}

	return "", fmt.Errorf("no index.html found in %s", root)
}

// FindExecutable returns the name of the bundle's main executable: the
// first .exe in root that is not the Electron notification helper.
func FindExecutable(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("failed to read bundle directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".exe") {
			continue
		}
		if name == "notification_helper.exe" {
			continue
		}
		return name, nil
	}

	return "", fmt.Errorf("cannot find executable in %s", root)
}

// FindIcon locates the bundle's source icon. Modern Electron and old
// Electron use fixed locations; NW.js declares it in package.json.
func FindIcon(root string) (string, error) {
	candidates := []string{
		filepath.Join(root, "resources", "app", "icon.png"),
		filepath.Join(root, "icon.png"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	pkg, err := LoadPackageJSON(root)
	if err != nil {
		return "", fmt.Errorf("cannot locate icon: %w", err)
	}
	if pkg.Window.Icon == "" {
		return "", fmt.Errorf("cannot locate icon in %s", root)
	}
	return filepath.Join(root, pkg.Window.Icon), nil
}
