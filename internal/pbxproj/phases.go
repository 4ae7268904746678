package pbxproj

import (
	"fmt"
	"path"
)

// Build phase kinds.
const (
	SourcesPhase    = "PBXSourcesBuildPhase"
	ResourcesPhase  = "PBXResourcesBuildPhase"
	FrameworksPhase = "PBXFrameworksBuildPhase"
)

const buildActionMask = "2147483647"

// FrameworkOptions controls how AddFramework attaches a framework.
type FrameworkOptions struct {
	Link  bool // add to the target's frameworks phase
	Embed bool // also copy into the target's Frameworks folder
	Sign  bool // code sign when embedding
}

// AddBuildPhase creates a build phase of kind isa on a target holding one
// build file per file reference.
func (p *Project) AddBuildPhase(fileRefs []string, isa, name, targetID string) (string, error) {
	t, ok := p.Target(targetID)
	if !ok {
		return "", fmt.Errorf("target %s not found", targetID)
	}

	seed := "target/" + t.String("name") + "/phase/" + isa
	files := make([]string, 0, len(fileRefs))
	for _, ref := range fileRefs {
		files = append(files, p.insert(seed+"/file/"+ref, Object{
			"isa":     "PBXBuildFile",
			"fileRef": ref,
		}))
	}

	phase := Object{
		"isa":                                isa,
		"buildActionMask":                    buildActionMask,
		"files":                              listOf(files...),
		"runOnlyForDeploymentPostprocessing": "0",
	}
	if name != "" {
		phase["name"] = name
	}
	id := p.insert(seed, phase)
	t.Append("buildPhases", id)
	return id, nil
}

// Phase returns the first build phase of kind isa on a target.
func (p *Project) Phase(targetID, isa string) (string, bool) {
	t, ok := p.Target(targetID)
	if !ok {
		return "", false
	}
	section := p.sections[isa]
	for _, id := range t.List("buildPhases") {
		if _, ok := section[id]; ok {
			return id, true
		}
	}
	return "", false
}

// PhaseFiles returns the file references a build phase builds.
func (p *Project) PhaseFiles(phaseID string) []string {
	phase, _, ok := p.Object(phaseID)
	if !ok {
		return nil
	}
	buildFiles := p.sections["PBXBuildFile"]
	var refs []string
	for _, bf := range phase.List("files") {
		if f, ok := buildFiles[bf]; ok {
			refs = append(refs, f.String("fileRef"))
		}
	}
	return refs
}

// AddFramework attaches a system framework to a target. The file reference
// is shared across targets and listed once in the Frameworks group; linking
// the same framework twice is a no-op.
func (p *Project) AddFramework(name, targetID string, opts FrameworkOptions) (string, error) {
	t, ok := p.Target(targetID)
	if !ok {
		return "", fmt.Errorf("target %s not found", targetID)
	}

	ref := p.frameworkReference(name)

	if opts.Link {
		phase, ok := p.Phase(targetID, FrameworksPhase)
		if !ok {
			var err error
			if phase, err = p.AddBuildPhase(nil, FrameworksPhase, "Frameworks", targetID); err != nil {
				return "", err
			}
		}
		if !contains(p.PhaseFiles(phase), ref) {
			bf := p.insert("target/"+t.String("name")+"/framework/"+name, Object{
				"isa":     "PBXBuildFile",
				"fileRef": ref,
			})
			p.sections[FrameworksPhase][phase].Append("files", bf)
		}
	}

	if opts.Embed {
		phase, ok := p.copyFilesPhase(targetID, dstFrameworks)
		if !ok {
			phase = p.insert("target/"+t.String("name")+"/embed-frameworks", Object{
				"isa":                                "PBXCopyFilesBuildPhase",
				"buildActionMask":                    buildActionMask,
				"dstPath":                            "",
				"dstSubfolderSpec":                   dstFrameworks,
				"files":                              []any{},
				"name":                               "Embed Frameworks",
				"runOnlyForDeploymentPostprocessing": "0",
			})
			t.Append("buildPhases", phase)
		}
		if !contains(p.PhaseFiles(phase), ref) {
			attrs := []string{"RemoveHeadersOnCopy"}
			if opts.Sign {
				attrs = append([]string{"CodeSignOnCopy"}, attrs...)
			}
			bf := p.insert("target/"+t.String("name")+"/embed-framework/"+name, Object{
				"isa":      "PBXBuildFile",
				"fileRef":  ref,
				"settings": map[string]any{"ATTRIBUTES": listOf(attrs...)},
			})
			p.sections["PBXCopyFilesBuildPhase"][phase].Append("files", bf)
		}
	}

	return ref, nil
}

// frameworkReference returns the file reference for a system framework,
// creating it and listing it in the Frameworks group when needed.
func (p *Project) frameworkReference(name string) string {
	for _, id := range p.sortedIDs("PBXFileReference") {
		ref := p.sections["PBXFileReference"][id]
		if ref.String("name") == name || path.Base(ref.String("path")) == name {
			return id
		}
	}

	id := p.insert("framework/"+name, Object{
		"isa":               "PBXFileReference",
		"lastKnownFileType": FileType(name),
		"name":              name,
		"path":              "System/Library/Frameworks/" + name,
		"sourceTree":        "SDKROOT",
	})
	if group, ok := p.FindGroupByName("Frameworks"); ok {
		_ = p.AddToGroup(id, group)
	}
	return id
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
