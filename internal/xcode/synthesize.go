package xcode

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/simonhull/firebird-suite/petrel/internal/manifest"
	"github.com/simonhull/firebird-suite/petrel/internal/pbxproj"
)

// RequiredFrameworks are linked into every extension target.
var RequiredFrameworks = []string{"UserNotifications.framework"}

// ErrMissingBundleIdentifier is returned when the host application has no
// bundle identifier to derive the extension's from.
var ErrMissingBundleIdentifier = errors.New("you must provide an `ios.bundleIdentifier` of your app in your app config")

// TargetSpec describes the extension target to synthesize.
type TargetSpec struct {
	BundleName              string
	PrimaryBundleIdentifier string
	PrimaryProductName      string
	SourceFiles             []string // file names inside the extension directory
	Frameworks              []string
	ExtraSettings           map[string]any
	DevelopmentTeam         string
}

// Swift reports whether the extension is built from Swift sources.
func (s TargetSpec) Swift() bool {
	for _, f := range s.SourceFiles {
		if strings.HasSuffix(f, ".swift") {
			return true
		}
	}
	return false
}

// Result describes what Synthesize did.
type Result struct {
	TargetID string
	Created  bool
}

// Synthesizer adds extension targets to a project model.
type Synthesizer struct {
	log *zap.Logger
}

// NewSynthesizer returns a synthesizer logging to log.
func NewSynthesizer(log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{log: log}
}

// Synthesize adds the extension target described by spec to model. It does
// nothing when a target with the bundle name already exists.
func (s *Synthesizer) Synthesize(model Model, spec TargetSpec) (Result, error) {
	log := s.log.With(zap.String("target", spec.BundleName))

	if id, ok := model.FindTargetByName(spec.BundleName); ok {
		log.Debug("target already present, nothing to do", zap.String("id", id))
		return Result{TargetID: id}, nil
	}

	if spec.PrimaryBundleIdentifier == "" {
		return Result{}, ErrMissingBundleIdentifier
	}

	files := append([]string{}, spec.SourceFiles...)
	files = append(files,
		manifest.InfoFileName(spec.BundleName),
		manifest.EntitlementsFileName(spec.BundleName),
	)

	groupID, refs, err := s.group(model, spec.BundleName, files)
	if err != nil {
		return Result{}, err
	}
	if root, ok := model.FindRootGroup(); ok {
		if err := model.AddToGroup(groupID, root); err != nil {
			return Result{}, fmt.Errorf("attaching group %s: %w", spec.BundleName, err)
		}
	} else {
		log.Warn("project has no root group, extension group left unattached")
	}

	// Creating an extension target needs both sections to exist.
	model.EnsureSection("PBXTargetDependency")
	model.EnsureSection("PBXContainerItemProxy")

	targetID, err := model.AddTarget(pbxproj.TargetOptions{
		Name:             spec.BundleName,
		ProductType:      pbxproj.ProductTypeAppExtension,
		BundleIdentifier: spec.PrimaryBundleIdentifier + "." + spec.BundleName,
		InfoPlistFile:    path.Join(spec.BundleName, manifest.InfoFileName(spec.BundleName)),
	})
	if err != nil {
		return Result{}, fmt.Errorf("creating target: %w", err)
	}
	log.Debug("created target", zap.String("id", targetID))

	sources := refs[:len(spec.SourceFiles)]
	phases := []struct {
		isa, name string
		refs      []string
	}{
		{pbxproj.SourcesPhase, "Sources", sources},
		{pbxproj.FrameworksPhase, "Frameworks", nil},
		{pbxproj.ResourcesPhase, "Resources", nil},
	}
	for _, ph := range phases {
		if _, err := model.AddBuildPhase(ph.refs, ph.isa, ph.name, targetID); err != nil {
			return Result{}, fmt.Errorf("adding %s phase: %w", ph.name, err)
		}
	}

	for _, fw := range Frameworks(spec.Frameworks) {
		if _, err := model.AddFramework(fw, targetID, pbxproj.FrameworkOptions{Link: true}); err != nil {
			return Result{}, fmt.Errorf("linking %s: %w", fw, err)
		}
		log.Debug("linked framework", zap.String("framework", fw))
	}

	if err := Reconcile(model, ReconcileOptions{
		BundleName:         spec.BundleName,
		PrimaryProductName: spec.PrimaryProductName,
		ExtraSettings:      spec.ExtraSettings,
		Swift:              spec.Swift(),
		DevelopmentTeam:    spec.DevelopmentTeam,
	}); err != nil {
		return Result{}, err
	}

	return Result{TargetID: targetID, Created: true}, nil
}

// group finds or creates the extension group and returns the references of
// files in order.
func (s *Synthesizer) group(model Model, name string, files []string) (string, []string, error) {
	id, ok := model.FindGroupByName(name)
	if !ok {
		id, refs := model.AddGroup(files, name, name)
		return id, refs, nil
	}

	refs := make([]string, 0, len(files))
	for _, f := range files {
		ref, err := model.AddFile(id, f)
		if err != nil {
			return "", nil, fmt.Errorf("adding %s to group %s: %w", f, name, err)
		}
		refs = append(refs, ref)
	}
	return id, refs, nil
}

// Frameworks returns the required frameworks followed by extra, without
// duplicates.
func Frameworks(extra []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, fw := range append(append([]string{}, RequiredFrameworks...), extra...) {
		if fw == "" || seen[fw] {
			continue
		}
		seen[fw] = true
		out = append(out, fw)
	}
	return out
}
