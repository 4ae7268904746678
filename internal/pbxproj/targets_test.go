package pbxproj

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extOptions() TargetOptions {
	return TargetOptions{
		Name:             "Ext",
		ProductType:      ProductTypeAppExtension,
		BundleIdentifier: "com.example.myapp.Ext",
		InfoPlistFile:    "Ext/Ext-Info.plist",
	}
}

func TestAddTarget_ExtensionNeedsSections(t *testing.T) {
	p := loadFixture(t)
	before := p.Len()

	_, err := p.AddTarget(extOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSectionMissing))
	assert.Equal(t, before, p.Len(), "nothing is created on failure")
}

func TestAddTarget_Extension(t *testing.T) {
	p := loadFixture(t)
	p.EnsureSection("PBXTargetDependency")
	p.EnsureSection("PBXContainerItemProxy")

	id, err := p.AddTarget(extOptions())
	require.NoError(t, err)

	found, ok := p.FindTargetByName("Ext")
	require.True(t, ok)
	assert.Equal(t, id, found)
	assert.Equal(t, []string{fixtureAppTarget, id}, p.Targets())

	target, _ := p.Target(id)
	assert.Equal(t, ProductTypeAppExtension, target.String("productType"))
	assert.Empty(t, target.List("buildPhases"))

	product, _, ok := p.Object(target.String("productReference"))
	require.True(t, ok)
	assert.Equal(t, "Ext.appex", product.String("path"))
	assert.Equal(t, "wrapper.app-extension", product.String("explicitFileType"))
	assert.Contains(t, p.GroupChildren("83CBBA001A601CBA00E9B192"), target.String("productReference"))

	set := p.FindConfigurationsByProductName("Ext")
	require.True(t, set.Complete())
	assert.Equal(t, "com.example.myapp.Ext", set.Release.BuildSettings.String("PRODUCT_BUNDLE_IDENTIFIER"))
	assert.Equal(t, "Ext/Ext-Info.plist", set.Debug.BuildSettings.String("INFOPLIST_FILE"))
	assert.Equal(t, "YES", set.Debug.BuildSettings.String("SKIP_INSTALL"))
	assert.True(t, set.Debug.BuildSettings.Has("GCC_PREPROCESSOR_DEFINITIONS"))
	assert.False(t, set.Release.BuildSettings.Has("GCC_PREPROCESSOR_DEFINITIONS"))
}

func TestAddTarget_EmbedsIntoHost(t *testing.T) {
	p := loadFixture(t)
	p.EnsureSection("PBXTargetDependency")
	p.EnsureSection("PBXContainerItemProxy")

	id, err := p.AddTarget(extOptions())
	require.NoError(t, err)

	host, _ := p.Target(fixtureAppTarget)
	deps := host.List("dependencies")
	require.Len(t, deps, 1)

	dep, isa, _ := p.Object(deps[0])
	assert.Equal(t, "PBXTargetDependency", isa)
	assert.Equal(t, id, dep.String("target"))

	proxy, _, ok := p.Object(dep.String("targetProxy"))
	require.True(t, ok)
	assert.Equal(t, id, proxy.String("remoteGlobalIDString"))
	assert.Equal(t, p.RootID(), proxy.String("containerPortal"))

	phase, ok := p.copyFilesPhase(fixtureAppTarget, dstPlugIns)
	require.True(t, ok)
	target, _ := p.Target(id)
	assert.Equal(t, []string{target.String("productReference")}, p.PhaseFiles(phase))
}

func TestAddTarget_Duplicate(t *testing.T) {
	p := loadFixture(t)

	_, err := p.AddTarget(TargetOptions{Name: "MyApp", ProductType: ProductTypeApplication})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestPrimaryTarget(t *testing.T) {
	p := loadFixture(t)

	id, ok := p.PrimaryTarget()
	require.True(t, ok)
	assert.Equal(t, fixtureAppTarget, id)
}

func TestAddBuildPhase(t *testing.T) {
	p := loadFixture(t)
	p.EnsureSection("PBXTargetDependency")
	p.EnsureSection("PBXContainerItemProxy")
	target, err := p.AddTarget(extOptions())
	require.NoError(t, err)

	_, refs := p.AddGroup([]string{"NotificationService.m"}, "Ext", "Ext")
	phase, err := p.AddBuildPhase(refs, SourcesPhase, "Sources", target)
	require.NoError(t, err)

	found, ok := p.Phase(target, SourcesPhase)
	require.True(t, ok)
	assert.Equal(t, phase, found)
	assert.Equal(t, refs, p.PhaseFiles(phase))

	_, err = p.AddBuildPhase(nil, SourcesPhase, "", "MISSING")
	assert.Error(t, err)
}

func TestAddFramework_Dedup(t *testing.T) {
	p := loadFixture(t)
	p.EnsureSection("PBXTargetDependency")
	p.EnsureSection("PBXContainerItemProxy")
	target, err := p.AddTarget(extOptions())
	require.NoError(t, err)
	phase, err := p.AddBuildPhase(nil, FrameworksPhase, "Frameworks", target)
	require.NoError(t, err)

	first, err := p.AddFramework("UserNotifications.framework", target, FrameworkOptions{Link: true})
	require.NoError(t, err)
	second, err := p.AddFramework("UserNotifications.framework", target, FrameworkOptions{Link: true})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{first}, p.PhaseFiles(phase))

	ref, _, _ := p.Object(first)
	assert.Equal(t, "SDKROOT", ref.String("sourceTree"))
	assert.Equal(t, "System/Library/Frameworks/UserNotifications.framework", ref.String("path"))
	assert.Contains(t, p.GroupChildren("2D16E6871FA4F8E400B85C8A"), first)

	_, embedded := p.copyFilesPhase(target, dstFrameworks)
	assert.False(t, embedded, "link-only frameworks are not embedded")
}

func TestAddFramework_Embed(t *testing.T) {
	p := loadFixture(t)

	ref, err := p.AddFramework("Custom.framework", fixtureAppTarget, FrameworkOptions{Link: true, Embed: true, Sign: true})
	require.NoError(t, err)

	phase, ok := p.copyFilesPhase(fixtureAppTarget, dstFrameworks)
	require.True(t, ok)
	assert.Equal(t, []string{ref}, p.PhaseFiles(phase))

	linked, ok := p.Phase(fixtureAppTarget, FrameworksPhase)
	require.True(t, ok)
	assert.Equal(t, []string{ref}, p.PhaseFiles(linked))
}

func TestFindConfigurationsByProductName(t *testing.T) {
	p := loadFixture(t)

	set := p.FindConfigurationsByProductName("MyApp")
	require.True(t, set.Complete())
	assert.Equal(t, "13B07F941A680F5B00A75B9A", set.Debug.ID)
	assert.Equal(t, "13B07F951A680F5B00A75B9A", set.Release.ID, "quoted PRODUCT_NAME matches")

	set.Debug.BuildSettings["DEVELOPMENT_TEAM"] = "TEAM"
	again := p.FindConfigurationsByProductName("MyApp")
	assert.Equal(t, "TEAM", again.Debug.BuildSettings.String("DEVELOPMENT_TEAM"), "settings alias the project")

	missing := p.FindConfigurationsByProductName("Other")
	assert.False(t, missing.Complete())
	assert.Nil(t, missing.Debug)
}

func TestConfigurations_ReadOnly(t *testing.T) {
	p, err := Parse([]byte(`{ objects = {
		P = { isa = PBXProject; };
		C = { isa = XCBuildConfiguration; name = Debug; };
	}; rootObject = P; }`))
	require.NoError(t, err)
	before, err := p.Encode()
	require.NoError(t, err)

	configs := p.Configurations()
	require.Len(t, configs, 1)
	assert.Nil(t, configs[0].BuildSettings)
	assert.False(t, p.FindConfigurationsByProductName("MyApp").Complete())

	after, err := p.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.NotContains(t, string(after), "buildSettings")
}
