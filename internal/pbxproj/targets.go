package pbxproj

import (
	"fmt"
	"path"
)

// Product types.
const (
	ProductTypeApplication  = "com.apple.product-type.application"
	ProductTypeAppExtension = "com.apple.product-type.app-extension"
)

// Copy-files destinations (dstSubfolderSpec).
const (
	dstFrameworks = "10"
	dstPlugIns    = "13"
)

// TargetOptions describes a native target to create.
type TargetOptions struct {
	Name             string
	ProductType      string
	BundleIdentifier string
	InfoPlistFile    string // relative to the project directory
}

// Targets returns the identifiers of the project's targets in project order.
func (p *Project) Targets() []string {
	return p.Root().List("targets")
}

// Target returns a native target by identifier.
func (p *Project) Target(id string) (Object, bool) {
	t, ok := p.sections["PBXNativeTarget"][id]
	return t, ok
}

// FindTargetByName returns the native target called name.
func (p *Project) FindTargetByName(name string) (string, bool) {
	for _, id := range p.sortedIDs("PBXNativeTarget") {
		if p.sections["PBXNativeTarget"][id].String("name") == name {
			return id, true
		}
	}
	return "", false
}

// PrimaryTarget returns the first application target of the project.
func (p *Project) PrimaryTarget() (string, bool) {
	for _, id := range p.Targets() {
		if t, ok := p.Target(id); ok && t.String("productType") == ProductTypeApplication {
			return id, true
		}
	}
	return "", false
}

// AddTarget creates a native target with a Debug and a Release configuration
// and a product reference. App extensions are also embedded into the primary
// application target, which needs the PBXTargetDependency and
// PBXContainerItemProxy sections to exist already.
func (p *Project) AddTarget(opts TargetOptions) (string, error) {
	if opts.Name == "" {
		return "", fmt.Errorf("target name is required")
	}
	if _, exists := p.FindTargetByName(opts.Name); exists {
		return "", fmt.Errorf("target %q already exists", opts.Name)
	}

	extension := opts.ProductType == ProductTypeAppExtension
	if extension {
		if err := p.requireSections("PBXTargetDependency", "PBXContainerItemProxy"); err != nil {
			return "", fmt.Errorf("adding target %s: %w", opts.Name, err)
		}
	}

	seed := "target/" + opts.Name
	debug := p.insert(seed+"/config/Debug", Object{
		"isa":           "XCBuildConfiguration",
		"name":          "Debug",
		"buildSettings": map[string]any(targetSettings(opts, true)),
	})
	release := p.insert(seed+"/config/Release", Object{
		"isa":           "XCBuildConfiguration",
		"name":          "Release",
		"buildSettings": map[string]any(targetSettings(opts, false)),
	})
	configList := p.insert(seed+"/configlist", Object{
		"isa":                           "XCConfigurationList",
		"buildConfigurations":           listOf(debug, release),
		"defaultConfigurationIsVisible": "0",
		"defaultConfigurationName":      "Release",
	})

	productName := opts.Name + productExtension(opts.ProductType)
	product := p.insert(seed+"/product", Object{
		"isa":              "PBXFileReference",
		"explicitFileType": FileType(productName),
		"includeInIndex":   "0",
		"path":             productName,
		"sourceTree":       "BUILT_PRODUCTS_DIR",
	})

	target := p.insert(seed, Object{
		"isa":                    "PBXNativeTarget",
		"buildConfigurationList": configList,
		"buildPhases":            []any{},
		"buildRules":             []any{},
		"dependencies":           []any{},
		"name":                   opts.Name,
		"productName":            opts.Name,
		"productReference":       product,
		"productType":            opts.ProductType,
	})

	if products, ok := p.FindGroupByName("Products"); ok {
		if err := p.AddToGroup(product, products); err != nil {
			return "", err
		}
	}

	if extension {
		if primary, ok := p.PrimaryTarget(); ok {
			if err := p.embedExtension(primary, target, product, opts.Name); err != nil {
				return "", err
			}
		}
	}

	p.Root().Append("targets", target)
	return target, nil
}

// embedExtension copies the extension product into the host's PlugIns folder
// and makes the host depend on it.
func (p *Project) embedExtension(host, target, product, name string) error {
	hostTarget, _ := p.Target(host)
	seed := "target/" + name + "/embed"

	buildFile := p.insert(seed+"/buildfile", Object{
		"isa":      "PBXBuildFile",
		"fileRef":  product,
		"settings": map[string]any{"ATTRIBUTES": listOf("RemoveHeadersOnCopy")},
	})

	phase, ok := p.copyFilesPhase(host, dstPlugIns)
	if !ok {
		phase = p.insert(seed+"/phase", Object{
			"isa":                                "PBXCopyFilesBuildPhase",
			"buildActionMask":                    buildActionMask,
			"dstPath":                            "",
			"dstSubfolderSpec":                   dstPlugIns,
			"files":                              []any{},
			"name":                               "Embed App Extensions",
			"runOnlyForDeploymentPostprocessing": "0",
		})
		hostTarget.Append("buildPhases", phase)
	}
	p.sections["PBXCopyFilesBuildPhase"][phase].Append("files", buildFile)

	proxy := p.insert(seed+"/proxy", Object{
		"isa":                  "PBXContainerItemProxy",
		"containerPortal":      p.root,
		"proxyType":            "1",
		"remoteGlobalIDString": target,
		"remoteInfo":           name,
	})
	dependency := p.insert(seed+"/dependency", Object{
		"isa":         "PBXTargetDependency",
		"target":      target,
		"targetProxy": proxy,
	})
	hostTarget.Append("dependencies", dependency)
	return nil
}

func (p *Project) copyFilesPhase(targetID, dst string) (string, bool) {
	t, _ := p.Target(targetID)
	phases := p.sections["PBXCopyFilesBuildPhase"]
	for _, id := range t.List("buildPhases") {
		if ph, ok := phases[id]; ok && ph.String("dstSubfolderSpec") == dst {
			return id, true
		}
	}
	return "", false
}

func productExtension(productType string) string {
	switch productType {
	case ProductTypeAppExtension:
		return ".appex"
	case ProductTypeApplication:
		return ".app"
	default:
		return ""
	}
}

func targetSettings(opts TargetOptions, debug bool) Object {
	info := opts.InfoPlistFile
	if info == "" {
		info = path.Join(opts.Name, opts.Name+"-Info.plist")
	}

	s := Object{
		"INFOPLIST_FILE":            info,
		"LD_RUNPATH_SEARCH_PATHS":   "$(inherited) @executable_path/Frameworks @executable_path/../../Frameworks",
		"PRODUCT_BUNDLE_IDENTIFIER": opts.BundleIdentifier,
		"PRODUCT_NAME":              opts.Name,
		"SKIP_INSTALL":              "YES",
		"TARGETED_DEVICE_FAMILY":    "1,2",
	}
	if debug {
		s["GCC_PREPROCESSOR_DEFINITIONS"] = listOf("DEBUG=1", "$(inherited)")
	}
	return s
}
