package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appInfo = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleName</key>
	<string>My App</string>
	<key>UIBackgroundModes</key>
	<array>
		<string>audio</string>
	</array>
</dict>
</plist>
`

func TestParsePlist_Empty(t *testing.T) {
	p, err := ParsePlist(nil)
	require.NoError(t, err)

	assert.True(t, p.SetDefault(PushNotificationEntitlementKey, "development"))
	out, err := p.Encode()
	require.NoError(t, err)

	again, err := ParsePlist(out)
	require.NoError(t, err)
	v, ok := again.Get(PushNotificationEntitlementKey)
	require.True(t, ok)
	assert.Equal(t, "development", v)
}

func TestParsePlist_Invalid(t *testing.T) {
	_, err := ParsePlist([]byte("<plist><dict><key>x</dict>"))
	require.Error(t, err)
}

func TestPlist_MergeArray(t *testing.T) {
	p, err := ParsePlist([]byte(appInfo))
	require.NoError(t, err)

	assert.True(t, p.MergeArray(BackgroundModesKey, "remote-notification", "audio"))
	assert.Equal(t, []string{"audio", "remote-notification"}, p.Strings(BackgroundModesKey))

	assert.False(t, p.MergeArray(BackgroundModesKey, "remote-notification"), "second merge must be a no-op")
	assert.False(t, p.MergeArray(UserActivityTypesKey), "empty merge must be a no-op")

	assert.True(t, p.MergeArray(UserActivityTypesKey, "INSendMessageIntent"))
	assert.Equal(t, []string{"INSendMessageIntent"}, p.Strings(UserActivityTypesKey))
}

func TestPlist_MergeArrayReplacesScalar(t *testing.T) {
	p, err := ParsePlist([]byte(appInfo))
	require.NoError(t, err)

	assert.True(t, p.MergeArray("CFBundleName", "x"))
	assert.Equal(t, []string{"x"}, p.Strings("CFBundleName"))
}

func TestPlist_SetDefaultKeepsExisting(t *testing.T) {
	p, err := ParsePlist([]byte(appInfo))
	require.NoError(t, err)

	assert.False(t, p.SetDefault("CFBundleName", "Other"))
	v, _ := p.Get("CFBundleName")
	assert.Equal(t, "My App", v)
}

func TestPlist_EncodeRoundTrip(t *testing.T) {
	p, err := ParsePlist([]byte(appInfo))
	require.NoError(t, err)
	p.MergeArray(BackgroundModesKey, "fetch")

	out, err := p.Encode()
	require.NoError(t, err)

	again, err := ParsePlist(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"audio", "fetch"}, again.Strings(BackgroundModesKey))
	v, _ := again.Get("CFBundleName")
	assert.Equal(t, "My App", v)
}

func TestPlist_EncodeSortsKeys(t *testing.T) {
	p, err := ParsePlist([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>Zeta</key>
	<string>z</string>
	<key>Alpha</key>
	<string>a</string>
</dict>
</plist>
`))
	require.NoError(t, err)

	out, err := p.Encode()
	require.NoError(t, err)
	text := string(out)
	assert.Less(t, strings.Index(text, "<key>Alpha</key>"), strings.Index(text, "<key>Zeta</key>"))

	again, err := ParsePlist(out)
	require.NoError(t, err)
	second, err := again.Encode()
	require.NoError(t, err)
	assert.Equal(t, text, string(second))
}
