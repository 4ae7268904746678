// Package pbxproj reads, edits and writes Xcode project files.
//
// A project file is an OpenStep property list whose "objects" dictionary maps
// 24-digit identifiers to records tagged with an "isa". Project keeps those
// records grouped into per-isa sections and only ever appends to them. Encode
// prints them back the way Xcode does: one Begin/End block per isa, and every
// identifier followed by the comment it was read with, or one derived from the
// object's name, path or isa. Every object petrel creates gets an identifier
// derived from a seed naming its role, so the same edit on the same input
// produces the same file.
package pbxproj

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"howett.net/plist"
)

// Header is the magic first line of every project file.
const Header = "// !$*UTF8*$!"

// ErrSectionMissing is returned when an edit needs an object section the
// project does not have.
var ErrSectionMissing = errors.New("project section missing")

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/simonhull/firebird-suite/petrel"))

// Project is an in-memory Xcode project.
type Project struct {
	archive  map[string]any
	sections map[string]map[string]Object
	comments map[string]string
	root     string
}

// Load reads and parses the project file at path.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a project file.
func Parse(data []byte) (*Project, error) {
	var archive map[string]any
	if _, err := plist.Unmarshal(data, &archive); err != nil {
		return nil, fmt.Errorf("parsing project file: %w", err)
	}

	objects, ok := archive["objects"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parsing project file: no objects dictionary")
	}
	root, _ := archive["rootObject"].(string)
	if root == "" {
		return nil, fmt.Errorf("parsing project file: no rootObject")
	}
	delete(archive, "objects")

	p := &Project{
		archive:  archive,
		sections: make(map[string]map[string]Object),
		comments: harvestComments(data),
		root:     root,
	}

	for id, raw := range objects {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parsing project file: object %s is not a dictionary", id)
		}
		isa, _ := m["isa"].(string)
		if isa == "" {
			return nil, fmt.Errorf("parsing project file: object %s has no isa", id)
		}
		p.EnsureSection(isa)[id] = Object(m)
	}

	if _, isa, ok := p.Object(root); !ok || isa != "PBXProject" {
		return nil, fmt.Errorf("parsing project file: rootObject %s is not a PBXProject", root)
	}

	return p, nil
}

// Encode serializes the project in Xcode's OpenStep layout.
func (p *Project) Encode() ([]byte, error) {
	return newPrinter(p).print(), nil
}

// Section returns the objects of the given isa.
func (p *Project) Section(isa string) (map[string]Object, bool) {
	s, ok := p.sections[isa]
	return s, ok
}

// EnsureSection returns the section for isa, creating it when absent.
func (p *Project) EnsureSection(isa string) map[string]Object {
	s, ok := p.sections[isa]
	if !ok {
		s = make(map[string]Object)
		p.sections[isa] = s
	}
	return s
}

// HasSection reports whether the project has a section for isa.
func (p *Project) HasSection(isa string) bool {
	_, ok := p.sections[isa]
	return ok
}

// Object looks up an object by identifier.
func (p *Project) Object(id string) (Object, string, bool) {
	for isa, section := range p.sections {
		if obj, ok := section[id]; ok {
			return obj, isa, true
		}
	}
	return nil, "", false
}

// RootID returns the identifier of the PBXProject object.
func (p *Project) RootID() string {
	return p.root
}

// Root returns the PBXProject object.
func (p *Project) Root() Object {
	obj, _, _ := p.Object(p.root)
	return obj
}

// Len returns the total number of objects.
func (p *Project) Len() int {
	n := 0
	for _, s := range p.sections {
		n += len(s)
	}
	return n
}

// sortedIDs returns the identifiers of a section in ascending order, which is
// also the order Xcode prints them in.
func (p *Project) sortedIDs(isa string) []string {
	s := p.sections[isa]
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// newID returns a fresh identifier derived from seed.
func (p *Project) newID(seed string) string {
	for n := 0; ; n++ {
		s := seed
		if n > 0 {
			s = seed + "#" + strconv.Itoa(n)
		}
		u := uuid.NewSHA1(idNamespace, []byte(s))
		id := strings.ToUpper(hex.EncodeToString(u[:12]))
		if _, _, taken := p.Object(id); !taken {
			return id
		}
	}
}

// insert stores obj under a fresh identifier and returns it.
func (p *Project) insert(seed string, obj Object) string {
	id := p.newID(seed)
	p.EnsureSection(obj.String("isa"))[id] = obj
	return id
}

func (p *Project) requireSections(isas ...string) error {
	for _, isa := range isas {
		if !p.HasSection(isa) {
			return fmt.Errorf("%w: %s", ErrSectionMissing, isa)
		}
	}
	return nil
}
