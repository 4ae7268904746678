package pbxproj

// Configuration is a build configuration. BuildSettings aliases the stored
// dictionary, so edits through it change the project. It is nil when the
// configuration has no buildSettings.
type Configuration struct {
	ID            string
	Name          string
	BuildSettings Object
}

// Configurations returns every build configuration in identifier order.
// Reading them leaves the project unchanged.
func (p *Project) Configurations() []Configuration {
	ids := p.sortedIDs("XCBuildConfiguration")
	out := make([]Configuration, 0, len(ids))
	for _, id := range ids {
		c := p.sections["XCBuildConfiguration"][id]
		settings, _ := c.LookupDict("buildSettings")
		out = append(out, Configuration{
			ID:            id,
			Name:          c.String("name"),
			BuildSettings: settings,
		})
	}
	return out
}

// ConfigurationSet holds the Debug and Release configurations of a product.
type ConfigurationSet struct {
	Debug   *Configuration
	Release *Configuration
}

// Complete reports whether both configurations were found.
func (s ConfigurationSet) Complete() bool {
	return s.Debug != nil && s.Release != nil
}

// FindConfigurationsByProductName returns the first Debug and first Release
// configurations whose PRODUCT_NAME, quoted or not, equals name.
func (p *Project) FindConfigurationsByProductName(name string) ConfigurationSet {
	var set ConfigurationSet
	for _, c := range p.Configurations() {
		if c.BuildSettings.String("PRODUCT_NAME") != name {
			continue
		}
		c := c
		switch c.Name {
		case "Debug":
			if set.Debug == nil {
				set.Debug = &c
			}
		case "Release":
			if set.Release == nil {
				set.Release = &c
			}
		}
		if set.Complete() {
			break
		}
	}
	return set
}
