package capability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/petrel/internal/merge"
)

func TestPatchDelegate(t *testing.T) {
	code := "  [Foo handleToken:deviceToken];"
	imports := []string{"#import <Foo/Foo.h>", "#import <React/RCTBundleURLProvider.h>", "#import <Bar/Bar.h>"}

	got := PatchDelegate("AppDelegate.mm", appDelegate, code, imports)

	assert.Contains(t, got, merge.BeginMarker(ImportsTag, merge.SlashComment))
	assert.Contains(t, got, "#import <Foo/Foo.h>\n#import <Bar/Bar.h>\n"+merge.EndMarker(ImportsTag, merge.SlashComment))
	assert.Equal(t, 1, strings.Count(got, "#import <React/RCTBundleURLProvider.h>"), "existing import must not be repeated")

	assert.Contains(t, got, DelegateAnchor+"\n"+merge.BeginMarker(DelegateTag, merge.SlashComment)+"\n"+code+"\n")
	assert.True(t, strings.HasSuffix(got, "@end\n"))

	assert.Equal(t, got, PatchDelegate("AppDelegate.mm", got, code, imports))
}

func TestPatchDelegate_MissingAnchors(t *testing.T) {
	src := "@implementation AppDelegate\n@end\n"
	assert.Equal(t, src, PatchDelegate("AppDelegate.m", src, "  code();", []string{"#import <Foo/Foo.h>"}))
}

func TestPatchDelegate_NothingRequested(t *testing.T) {
	assert.Equal(t, appDelegate, PatchDelegate("AppDelegate.mm", appDelegate, "", nil))
}

func TestPatchDelegate_CommentFollowsFileType(t *testing.T) {
	src := "#import \"AppDelegate.h\"\n"
	imports := []string{"#import <Foo/Foo.h>"}

	objc := PatchDelegate("ios/MyApp/AppDelegate.mm", src, "", imports)
	assert.Contains(t, objc, merge.BeginMarker(ImportsTag, merge.SlashComment))

	hash := PatchDelegate("ios/Podfile", src, "", imports)
	assert.Contains(t, hash, merge.BeginMarker(ImportsTag, merge.HashComment))
	assert.NotContains(t, hash, "// @generated")
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"ios/Zeta.xcodeproj", "ios/Alpha.xcodeproj", "ios/Pods"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}

	l, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", l.ProjectName)
	assert.Equal(t, filepath.Join(root, "ios", "Alpha.xcodeproj", "project.pbxproj"), l.ProjectFile())
	assert.Equal(t, filepath.Join(root, "ios", "Alpha", "Alpha.entitlements"), l.Entitlements())
	assert.Equal(t, filepath.Join(root, "ios", "NSE", "NSE-Info.plist"), l.ExtensionFile("NSE", "-Info.plist"))

	_, ok := l.AppDelegate()
	assert.False(t, ok)

	require.NoError(t, os.MkdirAll(l.AppDir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(l.AppDir(), "AppDelegate.m"), nil, 0644))
	path, ok := l.AppDelegate()
	require.True(t, ok)
	assert.Equal(t, "AppDelegate.m", filepath.Base(path))

	require.NoError(t, os.WriteFile(filepath.Join(l.AppDir(), "AppDelegate.mm"), nil, 0644))
	path, _ = l.AppDelegate()
	assert.Equal(t, "AppDelegate.mm", filepath.Base(path))
}

func TestDiscover_NoProject(t *testing.T) {
	root := t.TempDir()

	_, err := Discover(root)
	assert.Error(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "ios"), 0755))
	_, err = Discover(root)
	assert.ErrorIs(t, err, ErrNoXcodeProject)
}
