package xcode

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/simonhull/firebird-suite/petrel/internal/pbxproj"
)

const hostTarget = "13B07F861A680F5B00A75B9A"

func loadProject(t *testing.T) *pbxproj.Project {
	t.Helper()
	p, err := pbxproj.Load(filepath.Join("..", "pbxproj", "testdata", "expo.pbxproj"))
	require.NoError(t, err)
	return p
}

func defaultSpec() TargetSpec {
	return TargetSpec{
		BundleName:              "NotificationServiceExtension",
		PrimaryBundleIdentifier: "com.example.myapp",
		PrimaryProductName:      "MyApp",
	}
}

func encode(t *testing.T, p *pbxproj.Project) string {
	t.Helper()
	out, err := p.Encode()
	require.NoError(t, err)
	return string(out)
}

func TestSynthesize_EndToEndDefaults(t *testing.T) {
	p := loadProject(t)
	before := len(p.Targets())
	s := NewSynthesizer(zaptest.NewLogger(t))

	res, err := s.Synthesize(p, defaultSpec())
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Len(t, p.Targets(), before+1)

	// Group with both manifests, attached to the root group.
	group, ok := p.FindGroupByName("NotificationServiceExtension")
	require.True(t, ok)
	assert.Len(t, p.GroupChildren(group), 2)
	_, ok = p.ChildByPath(group, "NotificationServiceExtension-Info.plist")
	assert.True(t, ok)
	_, ok = p.ChildByPath(group, "NotificationServiceExtension.entitlements")
	assert.True(t, ok)
	root, _ := p.FindRootGroup()
	assert.Contains(t, p.GroupChildren(root), group)

	// Three phases, one framework.
	target, _ := p.Target(res.TargetID)
	assert.Len(t, target.List("buildPhases"), 3)
	frameworks, ok := p.Phase(res.TargetID, pbxproj.FrameworksPhase)
	require.True(t, ok)
	assert.Len(t, p.PhaseFiles(frameworks), 1)
	sources, ok := p.Phase(res.TargetID, pbxproj.SourcesPhase)
	require.True(t, ok)
	assert.Empty(t, p.PhaseFiles(sources))
	_, ok = p.Phase(res.TargetID, pbxproj.ResourcesPhase)
	assert.True(t, ok)

	set := p.FindConfigurationsByProductName("NotificationServiceExtension")
	require.True(t, set.Complete())
	assert.Equal(t, "com.example.myapp.NotificationServiceExtension", set.Debug.BuildSettings.String("PRODUCT_BUNDLE_IDENTIFIER"))
	assert.Equal(t, "NotificationServiceExtension/NotificationServiceExtension.entitlements", set.Release.BuildSettings.String(EntitlementsKey))
}

func TestSynthesize_Idempotent(t *testing.T) {
	s := NewSynthesizer(zaptest.NewLogger(t))

	once := loadProject(t)
	_, err := s.Synthesize(once, defaultSpec())
	require.NoError(t, err)

	twice := loadProject(t)
	first, err := s.Synthesize(twice, defaultSpec())
	require.NoError(t, err)
	second, err := s.Synthesize(twice, defaultSpec())
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.TargetID, second.TargetID)
	if diff := cmp.Diff(encode(t, once), encode(t, twice)); diff != "" {
		t.Errorf("second synthesis changed the project (-once +twice):\n%s", diff)
	}
}

func TestSynthesize_ExistingTargetSkipsValidation(t *testing.T) {
	p := loadProject(t)
	spec := defaultSpec()
	spec.BundleName = "MyApp"
	spec.PrimaryBundleIdentifier = ""

	res, err := NewSynthesizer(nil).Synthesize(p, spec)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, hostTarget, res.TargetID)
}

func TestSynthesize_MissingBundleIdentifier(t *testing.T) {
	p := loadProject(t)
	before := encode(t, p)
	spec := defaultSpec()
	spec.PrimaryBundleIdentifier = ""

	_, err := NewSynthesizer(nil).Synthesize(p, spec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingBundleIdentifier))
	assert.Contains(t, err.Error(), "ios.bundleIdentifier")
	assert.Equal(t, before, encode(t, p), "project is untouched")
}

func TestSynthesize_FrameworkDedup(t *testing.T) {
	p := loadProject(t)
	spec := defaultSpec()
	spec.Frameworks = []string{"X.framework", "UserNotifications.framework", "X.framework"}

	res, err := NewSynthesizer(nil).Synthesize(p, spec)
	require.NoError(t, err)

	phase, _ := p.Phase(res.TargetID, pbxproj.FrameworksPhase)
	files := p.PhaseFiles(phase)
	require.Len(t, files, 2)

	var names []string
	for _, ref := range files {
		obj, _, _ := p.Object(ref)
		names = append(names, obj.String("name"))
	}
	assert.Equal(t, []string{"UserNotifications.framework", "X.framework"}, names)
}

func TestSynthesize_SourcesAndSwift(t *testing.T) {
	p := loadProject(t)
	spec := defaultSpec()
	spec.SourceFiles = []string{"NotificationService.swift"}

	res, err := NewSynthesizer(nil).Synthesize(p, spec)
	require.NoError(t, err)

	phase, _ := p.Phase(res.TargetID, pbxproj.SourcesPhase)
	files := p.PhaseFiles(phase)
	require.Len(t, files, 1)
	ref, _, _ := p.Object(files[0])
	assert.Equal(t, "NotificationService.swift", ref.String("path"))

	set := p.FindConfigurationsByProductName(spec.BundleName)
	require.True(t, set.Complete())
	assert.Equal(t, "5.0", set.Debug.BuildSettings.String("SWIFT_VERSION"))
}

func TestSynthesize_ReusesExistingGroup(t *testing.T) {
	p := loadProject(t)
	existing, _ := p.AddGroup([]string{"NotificationServiceExtension-Info.plist"}, "NotificationServiceExtension", "NotificationServiceExtension")

	_, err := NewSynthesizer(nil).Synthesize(p, defaultSpec())
	require.NoError(t, err)

	group, _ := p.FindGroupByName("NotificationServiceExtension")
	assert.Equal(t, existing, group)
	assert.Len(t, p.GroupChildren(group), 2)
}

func TestFrameworks(t *testing.T) {
	assert.Equal(t, []string{"UserNotifications.framework"}, Frameworks(nil))
	assert.Equal(t,
		[]string{"UserNotifications.framework", "X.framework"},
		Frameworks([]string{"X.framework", "", "UserNotifications.framework", "X.framework"}))
}

func TestTargetSpec_Swift(t *testing.T) {
	assert.False(t, TargetSpec{SourceFiles: []string{"A.m", "A.h"}}.Swift())
	assert.True(t, TargetSpec{SourceFiles: []string{"A.m", "B.swift"}}.Swift())
}
