// Package capability applies a notification service extension request to a
// native iOS project: it patches the app's manifests and delegate, writes the
// extension's sources and manifests, and adds the extension target.
//
// Everything is computed in memory first. Files are only written once every
// stage has succeeded, through a single generator transaction, so a failing
// run leaves the project untouched.
package capability

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/simonhull/firebird-suite/petrel/internal/config"
	"github.com/simonhull/firebird-suite/petrel/internal/generator"
	"github.com/simonhull/firebird-suite/petrel/internal/manifest"
	"github.com/simonhull/firebird-suite/petrel/internal/merge"
	"github.com/simonhull/firebird-suite/petrel/internal/pbxproj"
	"github.com/simonhull/firebird-suite/petrel/internal/xcode"
)

//go:embed assets/*
var assets embed.FS

// DefaultSources are written to the extension directory when the request
// names no source files.
var DefaultSources = []string{"NotificationService.h", "NotificationService.m"}

// Background mode values.
const (
	RemoteNotificationMode = "remote-notification"
	FetchMode              = "fetch"
)

// Invocation is everything one run needs.
type Invocation struct {
	ProjectRoot string
	App         config.App
	Request     config.CapabilityRequest
	TeamID      string // overrides App.IOS.AppleTeamID when set
	DryRun      bool
	Diff        bool
}

func (inv Invocation) team() string {
	if inv.TeamID != "" {
		return inv.TeamID
	}
	return inv.App.IOS.AppleTeamID
}

// Change is a file the run writes.
type Change struct {
	Path string
	Old  []byte // nil when the file is new
	New  []byte
}

// Report describes a run.
type Report struct {
	Target          xcode.Result
	Changes         []Change
	Operations      []string
	DelegatePatched bool
	DelegateSkipped string // why the delegate was left alone, if it was
}

// Pipeline runs invocations.
type Pipeline struct {
	log   *zap.Logger
	synth *xcode.Synthesizer
	out   io.Writer
}

// New returns a pipeline that logs to log and prints progress and diffs to
// out.
func New(log *zap.Logger, out io.Writer) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Pipeline{log: log, synth: xcode.NewSynthesizer(log), out: out}
}

// plan accumulates the changes of a run.
type plan struct {
	ops     []generator.Operation
	changes []Change
}

// write stages content for path unless the file already holds it.
func (pl *plan) write(path string, old, content []byte) {
	if old != nil && bytes.Equal(old, content) {
		return
	}
	pl.ops = append(pl.ops, &generator.WriteFileOp{Path: path, Content: content, Overwrite: true})
	pl.changes = append(pl.changes, Change{Path: path, Old: old, New: content})
}

// copy stages a copy of src to dst unless dst already holds the same bytes.
func (pl *plan) copy(src, dst string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading source file: %w", err)
	}
	old, err := readOptional(dst)
	if err != nil {
		return err
	}
	if old != nil && bytes.Equal(old, content) {
		return nil
	}
	pl.ops = append(pl.ops, &generator.CopyFileOp{Src: src, Dst: dst, Overwrite: true})
	pl.changes = append(pl.changes, Change{Path: dst, Old: old, New: content})
	return nil
}

// Apply runs inv against the project at inv.ProjectRoot.
func (p *Pipeline) Apply(ctx context.Context, inv Invocation) (*Report, error) {
	req := inv.Request
	log := p.log.With(zap.String("bundle", req.BundleName))

	if inv.App.IOS.BundleIdentifier == "" {
		return nil, &config.FieldError{Field: "app.ios.bundleIdentifier", Reason: xcode.ErrMissingBundleIdentifier.Error()}
	}
	if req.BundleName == "" {
		return nil, &config.FieldError{Field: "nse.extension.bundleName", Reason: "is required"}
	}

	layout, err := Discover(inv.ProjectRoot)
	if err != nil {
		return nil, err
	}
	log.Debug("found Xcode project", zap.String("project", layout.ProjectFile()))

	model, err := pbxproj.Load(layout.ProjectFile())
	if err != nil {
		return nil, err
	}

	report := &Report{}
	pl := &plan{}

	if err := p.patchEntitlements(layout, req, pl); err != nil {
		return nil, err
	}
	if err := p.patchInfoPlist(layout, req, pl); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := p.patchDelegate(layout, req, pl, report); err != nil {
		return nil, err
	}

	sources, err := p.stageSources(layout, req, pl)
	if err != nil {
		return nil, err
	}

	spec := xcode.TargetSpec{
		BundleName:              req.BundleName,
		PrimaryBundleIdentifier: inv.App.IOS.BundleIdentifier,
		PrimaryProductName:      xcode.PrimaryProductName(inv.App.Name),
		SourceFiles:             sources,
		Frameworks:              req.Frameworks,
		ExtraSettings:           req.ExtraBuildSettings,
		DevelopmentTeam:         inv.team(),
	}

	if err := p.stageManifests(layout, inv, spec.Swift(), pl); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Target, err = p.synth.Synthesize(model, spec)
	if err != nil {
		return nil, fmt.Errorf("adding target %s: %w", req.BundleName, err)
	}
	if report.Target.Created {
		old, err := os.ReadFile(layout.ProjectFile())
		if err != nil {
			return nil, fmt.Errorf("reading project file: %w", err)
		}
		encoded, err := model.Encode()
		if err != nil {
			return nil, err
		}
		pl.write(layout.ProjectFile(), old, encoded)
	}

	report.Changes = pl.changes
	for _, op := range pl.ops {
		report.Operations = append(report.Operations, op.Description())
	}

	if inv.Diff {
		for _, c := range pl.changes {
			if err := generator.ShowDiff(p.out, rel(layout.Root, c.Path), c.Old, c.New); err != nil {
				return nil, fmt.Errorf("showing diff: %w", err)
			}
		}
	}

	if len(pl.ops) == 0 {
		log.Debug("project already up to date")
		return report, nil
	}

	if err := generator.Execute(ctx, pl.ops, generator.ExecuteOptions{DryRun: inv.DryRun, Writer: p.out}); err != nil {
		return nil, err
	}
	return report, nil
}

// patchEntitlements sets the push environment and merges the app groups into
// the app's entitlements, creating the file when it is missing.
func (p *Pipeline) patchEntitlements(layout *Layout, req config.CapabilityRequest, pl *plan) error {
	path := layout.Entitlements()
	old, err := readOptional(path)
	if err != nil {
		return err
	}
	doc, err := manifest.ParsePlist(old)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	mode := req.Mode
	if mode == "" {
		mode = config.Development
	}
	changed := doc.SetDefault(manifest.PushNotificationEntitlementKey, string(mode))
	changed = doc.MergeArray(manifest.AppGroupsKey, req.AppGroups...) || changed
	if !changed {
		return nil
	}

	out, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	pl.write(path, old, out)
	return nil
}

// patchInfoPlist merges background modes and intents into the app's
// Info.plist.
func (p *Pipeline) patchInfoPlist(layout *Layout, req config.CapabilityRequest, pl *plan) error {
	var modes []string
	if req.RemoteNotifications {
		modes = append(modes, RemoteNotificationMode)
	}
	if req.Fetch {
		modes = append(modes, FetchMode)
	}
	if len(modes) == 0 && len(req.Intents) == 0 {
		return nil
	}

	path := layout.InfoPlist()
	old, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading app Info.plist: %w", err)
	}
	doc, err := manifest.ParsePlist(old)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	changed := doc.MergeArray(manifest.BackgroundModesKey, modes...)
	changed = doc.MergeArray(manifest.UserActivityTypesKey, req.Intents...) || changed
	if !changed {
		return nil
	}

	out, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	pl.write(path, old, out)
	return nil
}

func (p *Pipeline) patchDelegate(layout *Layout, req config.CapabilityRequest, pl *plan, report *Report) error {
	if req.DelegateCode == "" {
		return nil
	}

	path, ok := layout.AppDelegate()
	if !ok {
		report.DelegateSkipped = "no AppDelegate.mm or AppDelegate.m in " + rel(layout.Root, layout.AppDir())
		p.log.Warn("app delegate not found, skipping delegate code", zap.String("dir", layout.AppDir()))
		return nil
	}

	old, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading app delegate: %w", err)
	}
	if merge.HasRegion(string(old), DelegateTag) {
		p.log.Debug("app delegate already has a generated region",
			zap.String("path", path), zap.String("tag", DelegateTag))
	}
	patched := PatchDelegate(path, string(old), req.DelegateCode, req.DelegateImports)
	if patched == string(old) {
		p.log.Debug("app delegate unchanged", zap.String("path", path))
		return nil
	}

	report.DelegatePatched = true
	pl.write(path, old, []byte(patched))
	return nil
}

// stageSources copies the requested sources, or writes the default ones,
// into the extension directory and returns their file names.
func (p *Pipeline) stageSources(layout *Layout, req config.CapabilityRequest, pl *plan) ([]string, error) {
	dir := layout.ExtensionDir(req.BundleName)

	if len(req.SourceFiles) == 0 {
		for _, name := range DefaultSources {
			content, err := assets.ReadFile("assets/" + name)
			if err != nil {
				return nil, fmt.Errorf("reading default source %s: %w", name, err)
			}
			dst := filepath.Join(dir, name)
			old, err := readOptional(dst)
			if err != nil {
				return nil, err
			}
			pl.write(dst, old, content)
		}
		return append([]string{}, DefaultSources...), nil
	}

	names := make([]string, 0, len(req.SourceFiles))
	for _, src := range req.SourceFiles {
		name := filepath.Base(src)
		if err := pl.copy(src, filepath.Join(dir, name)); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// stageManifests regenerates the extension's Info manifest and entitlements.
func (p *Pipeline) stageManifests(layout *Layout, inv Invocation, swift bool, pl *plan) error {
	req := inv.Request

	info, err := manifest.InfoManifest(manifest.InfoOptions{
		Version:     inv.App.Version,
		BuildNumber: inv.App.IOS.BuildNumber,
		Swift:       swift,
		Extra:       req.ExtraInfoPlist,
	})
	if err != nil {
		return fmt.Errorf("generating Info manifest: %w", err)
	}
	entitlements, err := manifest.EntitlementsManifest(req.AppGroups)
	if err != nil {
		return fmt.Errorf("generating entitlements: %w", err)
	}

	files := []struct{ path, content string }{
		{layout.ExtensionFile(req.BundleName, manifest.InfoFileSuffix), info},
		{layout.ExtensionFile(req.BundleName, manifest.EntitlementsFileSuffix), entitlements},
	}
	for _, f := range files {
		old, err := readOptional(f.path)
		if err != nil {
			return err
		}
		pl.write(f.path, old, []byte(f.content))
	}
	return nil
}

func rel(root, path string) string {
	if r, err := filepath.Rel(root, path); err == nil {
		return r
	}
	return path
}
