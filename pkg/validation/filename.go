package validation

import "strings"

// UnsafeFilesystemCharacters are characters that cannot appear in Windows
// file or directory names. Package names flow into installer output paths,
// so they must not contain any of these.
var UnsafeFilesystemCharacters = []string{
	"/",
	"\\",
	":",
	"*",
	"?",
	"<",
	">",
	"|",
}

// ContainsUnsafeCharacters reports whether name uses any character that is
// invalid in a Windows filename.
func ContainsUnsafeCharacters(name string) bool {
	for _, c := range UnsafeFilesystemCharacters {
		if strings.Contains(name, c) {
			return true
		}
	}
	return false
}

// ReplaceUnsafeCharacters substitutes every unsafe character in name with
// replaceWith.
func ReplaceUnsafeCharacters(name, replaceWith string) string {
	for _, c := range UnsafeFilesystemCharacters {
		name = strings.ReplaceAll(name, c, replaceWith)
	}
	return name
}

// FormattedUnsafeCharacters returns the unsafe character set as a
// human-readable list for error messages.
func FormattedUnsafeCharacters() string {
	return strings.Join(UnsafeFilesystemCharacters, ", ")
}
