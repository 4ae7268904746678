package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/petrel/internal/output"
)

const request = `app:
  name: MyApp
  version: 2.3.0
  ios:
    bundleIdentifier: com.example.myapp
nse:
  appGroup: group.com.example.myapp
`

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	pbx, err := os.ReadFile(filepath.Join("..", "pbxproj", "testdata", "expo.pbxproj"))
	require.NoError(t, err)

	files := map[string]string{
		"ios/MyApp.xcodeproj/project.pbxproj": string(pbx),
		"ios/MyApp/Info.plist":                "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<plist version=\"1.0\">\n<dict/>\n</plist>\n",
		"petrel.yml":                          request,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	prev := output.SetWriter(&out)
	t.Cleanup(func() { output.SetWriter(prev) })

	cmd := RootCmd()
	cmd.AddCommand(ApplyCmd())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestApply_AddsTarget(t *testing.T) {
	root := setupProject(t)

	out, err := run(t, "apply", "--project-root", root, "--config", filepath.Join(root, "petrel.yml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Added NotificationServiceExtension target")

	ent, err := os.ReadFile(filepath.Join(root, "ios", "NotificationServiceExtension", "NotificationServiceExtension.entitlements"))
	require.NoError(t, err)
	assert.Contains(t, string(ent), "<string>group.com.example.myapp</string>")

	out, err = run(t, "apply", "--project-root", root, "--config", filepath.Join(root, "petrel.yml"))
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestApply_TeamFromEnvironment(t *testing.T) {
	root := setupProject(t)
	t.Setenv("PETREL_TEAM_ID", "ABCDE12345")

	_, err := run(t, "apply", "--project-root", root, "--config", filepath.Join(root, "petrel.yml"))
	require.NoError(t, err)

	pbx, err := os.ReadFile(filepath.Join(root, "ios", "MyApp.xcodeproj", "project.pbxproj"))
	require.NoError(t, err)
	assert.Contains(t, string(pbx), "ABCDE12345")
}

func TestApply_DryRun(t *testing.T) {
	root := setupProject(t)

	out, err := run(t, "apply", "--dry-run", "--project-root", root, "--config", filepath.Join(root, "petrel.yml"))
	require.NoError(t, err)
	assert.Contains(t, out, "[DRY RUN]")
	assert.Contains(t, out, "would change")
	assert.NoDirExists(t, filepath.Join(root, "ios", "NotificationServiceExtension"))
}

func TestApply_MissingDelegateIsReported(t *testing.T) {
	root := setupProject(t)
	cfg := filepath.Join(root, "delegate.yml")
	body := request + "  appDelegate:\n    remoteNotificationsDelegate: \"  [Foo handle:deviceToken];\"\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0644))

	out, err := run(t, "apply", "--project-root", root, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped app delegate code")
	assert.Contains(t, out, "   no AppDelegate.mm or AppDelegate.m in ios/MyApp")
	assert.Contains(t, out, "Added NotificationServiceExtension target")
}

func TestApply_InvalidRequest(t *testing.T) {
	root := setupProject(t)
	bad := filepath.Join(root, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("app:\n  name: MyApp\nnse:\n  mode: staging\n"), 0644))

	_, err := run(t, "apply", "--project-root", root, "--config", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nse.mode")
}

func TestApply_MissingBundleIdentifier(t *testing.T) {
	root := setupProject(t)
	cfg := filepath.Join(root, "nobundle.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("app:\n  name: MyApp\n"), 0644))

	_, err := run(t, "apply", "--project-root", root, "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ios.bundleIdentifier")
}
