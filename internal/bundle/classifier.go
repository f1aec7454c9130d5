package bundle

import (
	"archive/zip"
	"fmt"
	"sort"
	"strings"
)

// MarkerFile is the file that proves a directory tree is an Electron or
// NW.js bundle rather than an unrelated zip.
const MarkerFile = "resources.pak"

// RejectKind identifies why a member list was rejected.
type RejectKind string

const (
	RejectEmptyArchive      RejectKind = "empty-archive"
	RejectNoInnerFolder     RejectKind = "no-inner-folder"
	RejectAmbiguousContents RejectKind = "ambiguous-contents"
	RejectWrongEnvironment  RejectKind = "wrong-environment"
	RejectWrongPlatform     RejectKind = "wrong-platform"
	RejectNotABundle        RejectKind = "not-a-bundle"
)

// ClassifyError describes why a zip was rejected. The message is shown to
// the user as-is, so it names the exact disqualifying file where possible.
type ClassifyError struct {
	Kind    RejectKind
	Detail  string
	message string
}

func (e *ClassifyError) Error() string {
	return e.message
}

func reject(kind RejectKind, detail, message string) *ClassifyError {
	return &ClassifyError{Kind: kind, Detail: detail, message: message}
}

// Classification is the successful result of inspecting a zip member list.
type Classification struct {
	// InnerFolder is the single top-level directory shared by all members.
	InnerFolder string
	// Members are the entry paths under InnerFolder, in archive order.
	// Extraction writes these entries and nothing else.
	Members []string
}

// electronLinuxLibraries are shipped at the root of Electron Linux builds.
var electronLinuxLibraries = []string{
	"libffmpeg.so",
	"libvk_swiftshader.so",
	"libvulkan.so.1",
}

// nwjsLinuxLibraries are shipped under lib/ in NW.js Linux builds.
var nwjsLinuxLibraries = []string{
	"lib/libnw.so",
	"lib/libnode.so",
	"lib/libGLESv2.so",
	"lib/libffmpeg.so",
	"lib/libEGL.so",
}

// Classify inspects a zip's member names and decides whether it is a
// Windows Electron/NW.js bundle. It never reads entry contents, so it is
// safe to run before any extraction.
//
// Checks run in a fixed order so that the user gets the most actionable
// diagnosis: platform and project-format misdetection are reported before
// the generic missing-marker message.
func Classify(members []string) (*Classification, error) {
	if len(members) == 0 {
		return nil, reject(RejectEmptyArchive, "", "zip is empty")
	}

	topLevel := topLevelEntries(members)
	if len(topLevel) == 0 {
		return nil, reject(RejectNoInnerFolder, "", "zip has no inner folders")
	}

	if topLevel["index.html"] {
		return nil, reject(RejectWrongEnvironment, "index.html",
			`zip appears to use a plain zip environment, but the zip must be generated using an "Electron Windows application" or "NW.js Windows application" environment (found index.html)`)
	}
	if topLevel["project.json"] {
		return nil, reject(RejectWrongEnvironment, "project.json",
			`zip appears to be a Scratch project; repackage it as an "Electron Windows application" or "NW.js Windows application" first (found project.json)`)
	}
	if len(topLevel) != 1 {
		names := make([]string, 0, len(topLevel))
		for name := range topLevel {
			names = append(names, name)
		}
		sort.Strings(names)
		joined := strings.Join(names, ", ")
		return nil, reject(RejectAmbiguousContents, joined,
			fmt.Sprintf("zip has too many inner folders: %s", joined))
	}

	var innerFolder string
	for name := range topLevel {
		innerFolder = name
	}

	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}

	for _, lib := range electronLinuxLibraries {
		if memberSet[innerFolder+"/"+lib] {
			return nil, reject(RejectWrongPlatform, lib,
				fmt.Sprintf("zip appears to be an Electron Linux app, but this tool only supports Windows apps (found %s)", lib))
		}
	}
	for _, lib := range nwjsLinuxLibraries {
		if memberSet[innerFolder+"/"+lib] {
			return nil, reject(RejectWrongPlatform, lib,
				fmt.Sprintf("zip appears to be an NW.js Linux app, but this tool only supports Windows apps (found %s)", lib))
		}
	}
	for _, m := range members {
		if strings.Contains(m, ".app/") {
			return nil, reject(RejectWrongPlatform, m,
				"zip appears to be a macOS app, but this tool only supports Windows apps (found a .app file)")
		}
	}

	if !memberSet[innerFolder+"/"+MarkerFile] {
		return nil, reject(RejectNotABundle, MarkerFile,
			"zip is not a valid Electron or NW.js application (resources.pak is missing)")
	}

	prefix := innerFolder + "/"
	selection := make([]string, 0, len(members))
	for _, m := range members {
		if strings.HasPrefix(m, prefix) {
			selection = append(selection, m)
		}
	}

	return &Classification{InnerFolder: innerFolder, Members: selection}, nil
}

// ClassifyArchive opens the zip at path and classifies its member list.
func ClassifyArchive(path string) (*Classification, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer reader.Close()

	members := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		members = append(members, file.Name)
	}

	return Classify(members)
}

// topLevelEntries returns the set of distinct first path segments.
func topLevelEntries(members []string) map[string]bool {
	entries := make(map[string]bool)
	for _, m := range members {
		first, _, _ := strings.Cut(m, "/")
		if first != "" {
			entries[first] = true
		}
	}
	return entries
}
