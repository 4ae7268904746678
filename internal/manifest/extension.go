package manifest

import (
	"fmt"
	"sort"
)

const (
	InfoFileSuffix         = "-Info.plist"
	EntitlementsFileSuffix = ".entitlements"

	AppGroupsKey                   = "com.apple.security.application-groups"
	PushNotificationEntitlementKey = "aps-environment"
	BackgroundModesKey             = "UIBackgroundModes"
	UserActivityTypesKey           = "NSUserActivityTypes"

	extensionPointIdentifier = "com.apple.usernotifications.service"
	principalClass           = "NotificationService"

	defaultShortVersion = "1.0"
	defaultBuildNumber  = "1"
)

// InfoFileName returns the Info manifest file name for an extension bundle.
func InfoFileName(bundleName string) string {
	return bundleName + InfoFileSuffix
}

// EntitlementsFileName returns the entitlements file name for an extension bundle.
func EntitlementsFileName(bundleName string) string {
	return bundleName + EntitlementsFileSuffix
}

// InfoOptions configures the extension's Info manifest.
type InfoOptions struct {
	Version     string // CFBundleShortVersionString, "1.0" when empty
	BuildNumber string // CFBundleVersion, "1" when empty

	// Swift selects a module-qualified principal class.
	Swift bool

	// Extra holds additional entries. Values are string or []string.
	// Keys are applied in sorted order; strings replace, lists merge.
	Extra map[string]any
}

// InfoDocument builds the entries of the extension's Info manifest.
func InfoDocument(opts InfoOptions) (*Document, error) {
	class := principalClass
	if opts.Swift {
		class = "$(PRODUCT_MODULE_NAME)." + principalClass
	}

	ext := NewDocument()
	ext.SetString("NSExtensionPointIdentifier", extensionPointIdentifier)
	ext.SetString("NSExtensionPrincipalClass", class)

	version := opts.Version
	if version == "" {
		version = defaultShortVersion
	}
	build := opts.BuildNumber
	if build == "" {
		build = defaultBuildNumber
	}

	doc := NewDocument()
	doc.SetDict("NSExtension", ext)
	doc.SetString("CFBundleExecutable", "$(EXECUTABLE_NAME)")
	doc.SetString("CFBundleIdentifier", "$(PRODUCT_BUNDLE_IDENTIFIER)")
	doc.SetString("CFBundleName", "$(PRODUCT_NAME)")
	doc.SetString("CFBundleShortVersionString", version)
	doc.SetString("CFBundleVersion", build)

	keys := make([]string, 0, len(opts.Extra))
	for k := range opts.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == "NSExtension" {
			return nil, fmt.Errorf("extra Info.plist key %q is managed by petrel", k)
		}
		switch v := opts.Extra[k].(type) {
		case string:
			doc.SetString(k, v)
		case []string:
			doc.AppendArray(k, v...)
		default:
			return nil, fmt.Errorf("extra Info.plist key %q: unsupported value type %T", k, v)
		}
	}

	return doc, nil
}

// InfoManifest renders the extension's Info manifest.
func InfoManifest(opts InfoOptions) (string, error) {
	doc, err := InfoDocument(opts)
	if err != nil {
		return "", err
	}
	return Generate(BaseTemplate, doc)
}

// EntitlementsManifest renders the extension's entitlements. The app group
// array is omitted when groups is empty.
func EntitlementsManifest(groups []string) (string, error) {
	doc := NewDocument()
	doc.AppendArray(AppGroupsKey, groups...)
	return Generate(BaseTemplate, doc)
}
