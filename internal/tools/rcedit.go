package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/makutaku/bundlefix/internal/bundle"
)

// MetadataFixer repairs the icon and version metadata of a bundle's main
// executable by driving an rcedit-compatible resource editor. It does
// roughly what electron-builder does when packaging for Windows.
type MetadataFixer struct {
	// RceditPath is the resource editor executable.
	RceditPath string
	Runner     Runner
	Icons      IconConverter

	// now is overridable for tests; the copyright year comes from it.
	now func() time.Time
}

// NewMetadataFixer wires a fixer around the given collaborators.
func NewMetadataFixer(rceditPath string, runner Runner, icons IconConverter) *MetadataFixer {
	return &MetadataFixer{
		RceditPath: rceditPath,
		Runner:     runner,
		Icons:      icons,
		now:        time.Now,
	}
}

// Fix mutates the executable inside root in place. The bundle's icon is
// converted to .ico and applied, and the version strings are filled from
// package.json and the project title.
func (f *MetadataFixer) Fix(ctx context.Context, root string) error {
	args, err := f.BuildArgs(ctx, root)
	if err != nil {
		return err
	}

	if _, _, err := f.Runner.Run(ctx, f.RceditPath, args...); err != nil {
		return err
	}
	return nil
}

// BuildArgs assembles the rcedit argument vector for the bundle at root.
// Icon conversion runs as a side effect because rcedit needs the .ico path.
func (f *MetadataFixer) BuildArgs(ctx context.Context, root string) ([]string, error) {
	executable, err := bundle.FindExecutable(root)
	if err != nil {
		return nil, err
	}

	args := []string{filepath.Join(root, executable)}

	sourceIcon, err := bundle.FindIcon(root)
	if err != nil {
		return nil, err
	}
	icon, err := f.Icons.Convert(ctx, sourceIcon)
	if err != nil {
		return nil, err
	}
	args = append(args, "--set-icon", icon)

	// Non-ASCII characters make rcedit fail silently, so strip them.
	title, err := bundle.ProjectTitle(root)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(asciiOnly(title))
	if title != "" {
		args = append(args,
			"--set-version-string", "ProductName", title,
			"--set-version-string", "InternalName", title,
			"--set-version-string", "OriginalFilename", "",
		)
	}

	pkg, err := bundle.LoadPackageJSON(root)
	if err != nil {
		return nil, err
	}
	productVersion, err := bundle.ProductVersion(pkg)
	if err != nil {
		return nil, err
	}
	args = append(args,
		"--set-version-string", "FileDescription", title,
		"--set-product-version", productVersion,
		// Windows wants four numbers in a file version.
		"--set-file-version", productVersion+".0",
	)

	// No assumptions about who owns the project or what notice they want.
	year := f.now().Year()
	args = append(args,
		"--set-version-string", "LegalCopyright", fmt.Sprintf("Copyright (C) %d", year),
	)

	return args, nil
}

// asciiOnly drops every non-ASCII rune from s.
func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 127 {
			return -1
		}
		return r
	}, s)
}
