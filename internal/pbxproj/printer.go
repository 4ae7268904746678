package pbxproj

import (
	"regexp"
	"sort"
	"strings"
)

// Objects printed on one line, as Xcode does.
var singleLine = map[string]bool{
	"PBXBuildFile":     true,
	"PBXFileReference": true,
}

// Keys whose identifier values Xcode prints without a comment.
var uncommented = map[string]bool{
	"remoteGlobalIDString": true,
}

var (
	idPattern      = regexp.MustCompile(`^[0-9A-F]{24}$`)
	commentPattern = regexp.MustCompile(`\b([0-9A-F]{24}) /\* (.+?) \*/`)
	unquotedString = regexp.MustCompile(`^[A-Za-z0-9_$./]+$`)
)

// harvestComments collects the "ID /* comment */" annotations of a project
// file so they can be printed back unchanged.
func harvestComments(data []byte) map[string]string {
	out := make(map[string]string)
	for _, m := range commentPattern.FindAllSubmatch(data, -1) {
		id := string(m[1])
		if _, seen := out[id]; !seen {
			out[id] = string(m[2])
		}
	}
	return out
}

// printer writes a project in Xcode's layout: one Begin/End block per isa,
// isa first in every object, identifiers annotated with a comment.
type printer struct {
	p *Project
	b strings.Builder

	// buildFilePhase maps a build file to the phase listing it.
	buildFilePhase map[string]string
}

func newPrinter(p *Project) *printer {
	pr := &printer{p: p, buildFilePhase: make(map[string]string)}
	for isa, section := range p.sections {
		if !strings.HasSuffix(isa, "BuildPhase") {
			continue
		}
		for id, phase := range section {
			for _, bf := range phase.List("files") {
				pr.buildFilePhase[bf] = id
			}
		}
	}
	return pr
}

func (pr *printer) print() []byte {
	pr.b.WriteString(Header)
	pr.b.WriteString("\n{\n")

	keys := make([]string, 0, len(pr.p.archive)+1)
	for k := range pr.p.archive {
		keys = append(keys, k)
	}
	keys = append(keys, "objects")
	sort.Strings(keys)

	for _, k := range keys {
		if k == "objects" {
			pr.objects()
			continue
		}
		pr.b.WriteString("\t" + quote(k) + " = ")
		pr.value(k, pr.p.archive[k], 1)
		pr.b.WriteString(";\n")
	}
	pr.b.WriteString("}\n")
	return []byte(pr.b.String())
}

func (pr *printer) objects() {
	pr.b.WriteString("\tobjects = {\n")

	isas := make([]string, 0, len(pr.p.sections))
	for isa, section := range pr.p.sections {
		if len(section) > 0 {
			isas = append(isas, isa)
		}
	}
	sort.Strings(isas)

	for _, isa := range isas {
		pr.b.WriteString("\n/* Begin " + isa + " section */\n")
		for _, id := range pr.p.sortedIDs(isa) {
			obj := pr.p.sections[isa][id]
			pr.b.WriteString("\t\t" + pr.ref(id) + " = ")
			if singleLine[isa] {
				pr.inlineDict(obj)
			} else {
				pr.dict(obj, 2)
			}
			pr.b.WriteString(";\n")
		}
		pr.b.WriteString("/* End " + isa + " section */\n")
	}
	pr.b.WriteString("\t};\n")
}

// value prints v at the given depth. key is the dictionary key v is stored
// under, which decides whether identifiers get a comment.
func (pr *printer) value(key string, v any, depth int) {
	switch v := v.(type) {
	case string:
		if !uncommented[key] && pr.isObject(v) {
			pr.b.WriteString(pr.ref(v))
			return
		}
		pr.b.WriteString(quote(v))
	case []any:
		pr.list(key, v, depth)
	case map[string]any:
		pr.dict(Object(v), depth)
	case Object:
		pr.dict(v, depth)
	default:
		pr.b.WriteString(quote(""))
	}
}

func (pr *printer) list(key string, items []any, depth int) {
	indent := strings.Repeat("\t", depth)
	pr.b.WriteString("(\n")
	for _, item := range items {
		pr.b.WriteString(indent + "\t")
		pr.value(key, item, depth+1)
		pr.b.WriteString(",\n")
	}
	pr.b.WriteString(indent + ")")
}

func (pr *printer) dict(obj Object, depth int) {
	indent := strings.Repeat("\t", depth)
	pr.b.WriteString("{\n")
	for _, k := range sortedKeys(obj) {
		pr.b.WriteString(indent + "\t" + quote(k) + " = ")
		pr.value(k, obj[k], depth+1)
		pr.b.WriteString(";\n")
	}
	pr.b.WriteString(indent + "}")
}

func (pr *printer) inlineDict(obj Object) {
	pr.b.WriteString("{")
	for _, k := range sortedKeys(obj) {
		pr.b.WriteString(quote(k) + " = ")
		pr.inlineValue(k, obj[k])
		pr.b.WriteString("; ")
	}
	pr.b.WriteString("}")
}

func (pr *printer) inlineValue(key string, v any) {
	switch v := v.(type) {
	case []any:
		pr.b.WriteString("(")
		for _, item := range v {
			pr.inlineValue(key, item)
			pr.b.WriteString(", ")
		}
		pr.b.WriteString(")")
	case map[string]any:
		pr.inlineDict(Object(v))
	case Object:
		pr.inlineDict(v)
	default:
		pr.value(key, v, 0)
	}
}

func (pr *printer) isObject(s string) bool {
	if !idPattern.MatchString(s) {
		return false
	}
	_, _, ok := pr.p.Object(s)
	return ok
}

// ref prints an identifier with its comment, when it has one.
func (pr *printer) ref(id string) string {
	if c := pr.comment(id); c != "" {
		return id + " /* " + c + " */"
	}
	return id
}

// comment returns the annotation for an object: the one the file was read
// with, or one derived the way Xcode derives it.
func (pr *printer) comment(id string) string {
	if c, ok := pr.p.comments[id]; ok {
		return c
	}

	obj, isa, ok := pr.p.Object(id)
	if !ok {
		return ""
	}

	switch isa {
	case "PBXProject":
		return "Project object"
	case "PBXBuildFile":
		file := pr.comment(obj.String("fileRef"))
		if phase, ok := pr.buildFilePhase[id]; ok {
			return file + " in " + pr.comment(phase)
		}
		return file
	case "XCConfigurationList":
		return pr.configurationListComment(id)
	case "PBXTargetDependency", "PBXContainerItemProxy":
		return isa
	}

	if strings.HasSuffix(isa, "BuildPhase") {
		if name := obj.String("name"); name != "" {
			return name
		}
		return strings.TrimSuffix(strings.TrimPrefix(isa, "PBX"), "BuildPhase")
	}
	if name := obj.String("name"); name != "" {
		return name
	}
	return obj.String("path")
}

func (pr *printer) configurationListComment(id string) string {
	for _, isa := range []string{"PBXNativeTarget", "PBXAggregateTarget", "PBXProject"} {
		for _, owner := range pr.p.sortedIDs(isa) {
			obj := pr.p.sections[isa][owner]
			if obj.String("buildConfigurationList") != id {
				continue
			}
			name := obj.String("name")
			if name == "" {
				return "Build configuration list for " + isa
			}
			return "Build configuration list for " + isa + ` "` + name + `"`
		}
	}
	return ""
}

// sortedKeys returns isa first, then the other keys in byte order.
func sortedKeys(obj Object) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		if k != "isa" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := obj["isa"]; ok {
		keys = append([]string{"isa"}, keys...)
	}
	return keys
}

// quote returns s as an OpenStep string, quoted unless it is made of
// characters Xcode leaves bare.
func quote(s string) string {
	if unquotedString.MatchString(s) && !strings.Contains(s, "//") && !strings.Contains(s, "___") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
