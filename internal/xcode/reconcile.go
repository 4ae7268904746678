package xcode

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/simonhull/firebird-suite/petrel/internal/pbxproj"
)

// Defaults used when the host application does not set a value.
const (
	DefaultDeploymentTarget = "12.0"
	DefaultMarketingVersion = "1.0"
)

// Setting keys.
const (
	DeploymentTargetKey = "IPHONEOS_DEPLOYMENT_TARGET"
	MarketingVersionKey = "MARKETING_VERSION"
	EntitlementsKey     = "CODE_SIGN_ENTITLEMENTS"
	DevelopmentTeamKey  = "DEVELOPMENT_TEAM"
)

// ErrConfigurationNotFound is returned when the extension target lacks its
// Debug or Release configuration.
var ErrConfigurationNotFound = errors.New("configuration not found")

var staticSettings = map[string]any{
	"PODS_ROOT": "${SRCROOT}/Pods",
}

var swiftSettings = map[string]any{
	"SWIFT_VERSION":          "5.0",
	"CLANG_ENABLE_MODULES":   "YES",
	"SWIFT_EMIT_LOC_STRINGS": "YES",
}

// ReconcileOptions configures Reconcile.
type ReconcileOptions struct {
	BundleName         string
	PrimaryProductName string
	ExtraSettings      map[string]any
	Swift              bool
	DevelopmentTeam    string
}

// PrimaryProductName is the product name Xcode gives the app target of an
// application called appName.
func PrimaryProductName(appName string) string {
	return strings.ReplaceAll(appName, " ", "")
}

// Reconcile fills in the extension's Debug and Release build settings,
// inheriting the deployment target and marketing version from the host.
func Reconcile(model Model, opts ReconcileOptions) error {
	primary := model.FindConfigurationsByProductName(opts.PrimaryProductName)
	ext := model.FindConfigurationsByProductName(opts.BundleName)

	if ext.Debug == nil {
		return fmt.Errorf("target %s: Debug %w", opts.BundleName, ErrConfigurationNotFound)
	}
	if ext.Release == nil {
		return fmt.Errorf("target %s: Release %w", opts.BundleName, ErrConfigurationNotFound)
	}

	debugFrom := []*pbxproj.Configuration{primary.Debug, primary.Release}
	releaseFrom := []*pbxproj.Configuration{primary.Release, primary.Debug}

	apply(ext.Debug.BuildSettings, opts, map[string]any{
		DeploymentTargetKey: resolve(DeploymentTargetKey, DefaultDeploymentTarget, debugFrom...),
		MarketingVersionKey: resolve(MarketingVersionKey, DefaultMarketingVersion, debugFrom...),
	})
	apply(ext.Release.BuildSettings, opts, map[string]any{
		DeploymentTargetKey: resolve(DeploymentTargetKey, DefaultDeploymentTarget, releaseFrom...),
		MarketingVersionKey: resolve(MarketingVersionKey, DefaultMarketingVersion, releaseFrom...),
	})
	return nil
}

// resolve returns the first non-empty value of key in configs, or def.
func resolve(key, def string, configs ...*pbxproj.Configuration) string {
	for _, c := range configs {
		if c == nil {
			continue
		}
		if v := c.BuildSettings.String(key); v != "" {
			return v
		}
	}
	return def
}

// apply overlays settings in order of increasing precedence.
func apply(settings pbxproj.Object, opts ReconcileOptions, inherited map[string]any) {
	layers := []map[string]any{staticSettings, inherited}
	if opts.Swift {
		layers = append(layers, swiftSettings)
	}
	layers = append(layers, opts.ExtraSettings, map[string]any{
		EntitlementsKey: opts.BundleName + "/" + opts.BundleName + ".entitlements",
	})
	if opts.DevelopmentTeam != "" {
		layers = append(layers, map[string]any{DevelopmentTeamKey: opts.DevelopmentTeam})
	}

	for _, layer := range layers {
		keys := make([]string, 0, len(layer))
		for k := range layer {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			settings[k] = settingValue(layer[k])
		}
	}
}

// settingValue converts a value to the project's list representation.
func settingValue(v any) any {
	if list, ok := v.([]string); ok {
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out
	}
	return v
}
