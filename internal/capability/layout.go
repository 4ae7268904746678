package capability

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoXcodeProject is returned when the ios directory holds no .xcodeproj.
var ErrNoXcodeProject = errors.New("no Xcode project found")

// Layout locates the files of a native iOS project.
type Layout struct {
	Root        string // project root, parent of ios/
	IOSDir      string
	ProjectName string // base name of the .xcodeproj
}

// Discover finds the Xcode project under root/ios. When there are several,
// the first in name order wins.
func Discover(root string) (*Layout, error) {
	iosDir := filepath.Join(root, "ios")
	entries, err := os.ReadDir(iosDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", iosDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), ".xcodeproj") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoXcodeProject, iosDir)
	}
	sort.Strings(names)

	return &Layout{
		Root:        root,
		IOSDir:      iosDir,
		ProjectName: strings.TrimSuffix(names[0], ".xcodeproj"),
	}, nil
}

// ProjectFile is the path of project.pbxproj.
func (l *Layout) ProjectFile() string {
	return filepath.Join(l.IOSDir, l.ProjectName+".xcodeproj", "project.pbxproj")
}

// AppDir is the directory of the app target's sources.
func (l *Layout) AppDir() string {
	return filepath.Join(l.IOSDir, l.ProjectName)
}

// InfoPlist is the app's Info.plist.
func (l *Layout) InfoPlist() string {
	return filepath.Join(l.AppDir(), "Info.plist")
}

// Entitlements is the app's entitlements file.
func (l *Layout) Entitlements() string {
	return filepath.Join(l.AppDir(), l.ProjectName+".entitlements")
}

// AppDelegate returns the app delegate, preferring AppDelegate.mm over
// AppDelegate.m. ok is false when neither exists.
func (l *Layout) AppDelegate() (path string, ok bool) {
	for _, name := range []string{"AppDelegate.mm", "AppDelegate.m"} {
		p := filepath.Join(l.AppDir(), name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// ExtensionDir is the directory holding the extension's files.
func (l *Layout) ExtensionDir(bundleName string) string {
	return filepath.Join(l.IOSDir, bundleName)
}

// ExtensionFile is {root}/ios/{bundleName}/{bundleName}{suffix}.
func (l *Layout) ExtensionFile(bundleName, suffix string) string {
	return filepath.Join(l.ExtensionDir(bundleName), bundleName+suffix)
}

// readOptional returns the content of path, or nil when it does not exist.
func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
