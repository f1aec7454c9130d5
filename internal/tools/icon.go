package tools

import (
	"context"
	"fmt"
	"os"
)

// IconConverter turns a source icon image into a Windows .ico file placed
// next to the source.
type IconConverter interface {
	Convert(ctx context.Context, sourcePath string) (icoPath string, err error)
}

// ExecIconConverter converts icons by delegating to an external imaging
// tool (ImageMagick by default).
type ExecIconConverter struct {
	// ToolPath is the converter executable, e.g. "magick".
	ToolPath string
	Runner   Runner
}

// Convert produces <sourcePath>.ico from sourcePath.
func (c *ExecIconConverter) Convert(ctx context.Context, sourcePath string) (string, error) {
	icoPath := sourcePath + ".ico"

	if _, _, err := c.Runner.Run(ctx, c.ToolPath, sourcePath, icoPath); err != nil {
		return "", fmt.Errorf("icon conversion failed: %w", err)
	}

	if _, err := os.Stat(icoPath); err != nil {
		return "", &MissingOutputError{Tool: c.ToolPath, Path: icoPath}
	}

	return icoPath, nil
}
