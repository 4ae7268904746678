package pbxproj

import (
	"fmt"
	"path"
	"strings"
)

const groupSourceTree = "<group>"

// fileTypes maps extensions to Xcode's lastKnownFileType.
var fileTypes = map[string]string{
	".h":            "sourcecode.c.h",
	".m":            "sourcecode.c.objc",
	".mm":           "sourcecode.cpp.objcpp",
	".c":            "sourcecode.c.c",
	".cpp":          "sourcecode.cpp.cpp",
	".swift":        "sourcecode.swift",
	".plist":        "text.plist.xml",
	".entitlements": "text.plist.entitlements",
	".json":         "text.json",
	".storyboard":   "file.storyboard",
	".xcassets":     "folder.assetcatalog",
	".framework":    "wrapper.framework",
	".appex":        "wrapper.app-extension",
}

// FileType returns the lastKnownFileType for a file name.
func FileType(name string) string {
	if t, ok := fileTypes[strings.ToLower(path.Ext(name))]; ok {
		return t
	}
	return "text"
}

// FindRootGroup returns the project's anonymous top-level group: the first
// group, in identifier order, that has neither a name nor a path.
func (p *Project) FindRootGroup() (string, bool) {
	for _, id := range p.sortedIDs("PBXGroup") {
		g := p.sections["PBXGroup"][id]
		if !g.Has("name") && !g.Has("path") {
			return id, true
		}
	}
	return "", false
}

// FindGroupByName returns the first group whose name, or path when it has
// no name, equals name.
func (p *Project) FindGroupByName(name string) (string, bool) {
	for _, id := range p.sortedIDs("PBXGroup") {
		g := p.sections["PBXGroup"][id]
		label := g.String("name")
		if label == "" {
			label = g.String("path")
		}
		if label == name {
			return id, true
		}
	}
	return "", false
}

// AddGroup creates a group named name at path holding a new file reference
// for every entry of files. It returns the group identifier and the file
// reference identifiers in the order of files.
func (p *Project) AddGroup(files []string, name, groupPath string) (string, []string) {
	refs := make([]string, 0, len(files))
	for _, f := range files {
		refs = append(refs, p.addFileReference(name, f))
	}

	id := p.insert("group/"+name, Object{
		"isa":        "PBXGroup",
		"children":   listOf(refs...),
		"name":       name,
		"path":       groupPath,
		"sourceTree": groupSourceTree,
	})
	return id, refs
}

// GroupChildren returns the children of a group.
func (p *Project) GroupChildren(groupID string) []string {
	g, ok := p.sections["PBXGroup"][groupID]
	if !ok {
		return nil
	}
	return g.List("children")
}

// ChildByPath returns the file reference in a group whose path is file.
func (p *Project) ChildByPath(groupID, file string) (string, bool) {
	refs := p.sections["PBXFileReference"]
	for _, child := range p.GroupChildren(groupID) {
		if ref, ok := refs[child]; ok && ref.String("path") == file {
			return child, true
		}
	}
	return "", false
}

// AddToGroup appends child to a group unless it is already there.
func (p *Project) AddToGroup(childID, groupID string) error {
	g, ok := p.sections["PBXGroup"][groupID]
	if !ok {
		return fmt.Errorf("group %s not found", groupID)
	}
	if !g.Contains("children", childID) {
		g.Append("children", childID)
	}
	return nil
}

func (p *Project) addFileReference(scope, file string) string {
	base := path.Base(file)
	return p.insert("file/"+scope+"/"+file, Object{
		"isa":               "PBXFileReference",
		"lastKnownFileType": FileType(base),
		"path":              base,
		"sourceTree":        groupSourceTree,
	})
}

// AddFile returns the reference for file in a group, creating and attaching
// it when the group does not list it yet.
func (p *Project) AddFile(groupID, file string) (string, error) {
	g, ok := p.sections["PBXGroup"][groupID]
	if !ok {
		return "", fmt.Errorf("group %s not found", groupID)
	}
	if ref, ok := p.ChildByPath(groupID, path.Base(file)); ok {
		return ref, nil
	}
	ref := p.addFileReference(g.String("name"), file)
	g.Append("children", ref)
	return ref, nil
}
