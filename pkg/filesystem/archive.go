package filesystem

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractMembers extracts only the named entries of a ZIP archive into
// destDir. Entries not listed are never written to disk.
func ExtractMembers(archivePath string, members []string, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	wanted := make(map[string]bool, len(members))
	for _, m := range members {
		wanted[m] = true
	}

	for _, file := range reader.File {
		if !wanted[file.Name] {
			continue
		}
		if err := extractFile(file, destDir); err != nil {
			return fmt.Errorf("failed to extract file %s: %w", file.Name, err)
		}
	}

	return nil
}

// extractFile extracts a single file from a ZIP archive
func extractFile(file *zip.File, destDir string) error {
	// Clean the file path to prevent directory traversal
	cleanPath := filepath.Clean(file.Name)
	if strings.Contains(cleanPath, "..") || filepath.IsAbs(cleanPath) {
		return fmt.Errorf("invalid file path: %s", file.Name)
	}

	destPath := filepath.Join(destDir, cleanPath)

	if file.FileInfo().IsDir() {
		return os.MkdirAll(destPath, file.FileInfo().Mode())
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}

	srcFile, err := file.Open()
	if err != nil {
		return err
	}
	defer srcFile.Close()

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.FileInfo().Mode())
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, srcFile)
	return err
}

// Repack creates a ZIP archive at destZip from the contents of dir.
// Entry names use forward slashes relative to dir. Symlinks are skipped.
func Repack(dir, destZip string) error {
	zipFile, err := os.Create(destZip)
	if err != nil {
		return fmt.Errorf("failed to create zip file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		if relPath == "." {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("failed to create zip header: %w", err)
		}
		header.Name = filepath.ToSlash(relPath)

		if info.IsDir() {
			header.Name += "/"
			header.Method = zip.Store
		} else {
			header.Method = zip.Deflate
		}

		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to create zip entry: %w", err)
		}
		if info.IsDir() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer file.Close()

		_, err = io.Copy(writer, file)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to walk contents directory: %w", err)
	}

	return zipWriter.Close()
}

// ReplaceArchive rebuilds the archive at archivePath from dir. The new zip
// is written to a scratch file in the same directory as the archive, then
// renamed over it, so a failure mid-write never corrupts the original.
func ReplaceArchive(dir, archivePath string) error {
	scratch, err := NewScratchFile(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create scratch file: %w", err)
	}
	defer scratch.Remove()

	if err := Repack(dir, scratch.Path()); err != nil {
		return fmt.Errorf("failed to recompress: %w", err)
	}

	if err := os.Rename(scratch.Path(), archivePath); err != nil {
		return fmt.Errorf("failed to replace archive: %w", err)
	}

	return nil
}
