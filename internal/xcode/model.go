// Package xcode adds a notification service extension target to an Xcode
// project and reconciles its build settings with the host application.
package xcode

import "github.com/simonhull/firebird-suite/petrel/internal/pbxproj"

// Model is the part of a project the synthesizer needs. The lookups hold the
// heuristics for reaching unnamed or loosely keyed objects.
type Model interface {
	FindRootGroup() (string, bool)
	FindGroupByName(name string) (string, bool)
	FindTargetByName(name string) (string, bool)
	FindConfigurationsByProductName(name string) pbxproj.ConfigurationSet

	EnsureSection(isa string) map[string]pbxproj.Object
	AddGroup(files []string, name, path string) (string, []string)
	AddFile(groupID, file string) (string, error)
	AddToGroup(childID, groupID string) error
	AddTarget(opts pbxproj.TargetOptions) (string, error)
	AddBuildPhase(fileRefs []string, isa, name, targetID string) (string, error)
	AddFramework(name, targetID string, opts pbxproj.FrameworkOptions) (string, error)
}

var _ Model = (*pbxproj.Project)(nil)
