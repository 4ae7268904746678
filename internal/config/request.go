// Package config loads petrel's request file and tool settings and turns
// them into a fully-defaulted capability request.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the request file read when none is given.
const DefaultFile = "petrel.yml"

// StringList accepts either a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			*l = nil
			return nil
		}
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*l = list
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// File is the request file.
type File struct {
	App App     `yaml:"app"`
	NSE Request `yaml:"nse"`
}

// App describes the host application.
type App struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	IOS     IOS    `yaml:"ios"`
}

// IOS holds the host application's iOS settings.
type IOS struct {
	BundleIdentifier string `yaml:"bundleIdentifier"`
	BuildNumber      string `yaml:"buildNumber"`
	AppleTeamID      string `yaml:"appleTeamId"`
}

// Request is the capability request as written in the file.
type Request struct {
	Mode            string          `yaml:"mode"`
	AppGroup        StringList      `yaml:"appGroup"`
	BackgroundModes BackgroundModes `yaml:"backgroundModes"`
	Intents         StringList      `yaml:"intents"`
	AppDelegate     AppDelegate     `yaml:"appDelegate"`
	Extension       Extension       `yaml:"extension"`
}

// BackgroundModes selects the app's background modes. Unset fields take
// their defaults.
type BackgroundModes struct {
	RemoteNotifications *bool `yaml:"remoteNotifications"`
	Fetch               *bool `yaml:"fetch"`
}

// AppDelegate holds the code merged into the app delegate.
type AppDelegate struct {
	RemoteNotificationsDelegate string     `yaml:"remoteNotificationsDelegate"`
	Imports                     StringList `yaml:"imports"`
}

// Extension configures the extension target.
type Extension struct {
	BundleName         string               `yaml:"bundleName"`
	SourceFiles        StringList           `yaml:"sourceFiles"`
	Frameworks         StringList           `yaml:"frameworks"`
	ExtraBuildSettings map[string]yaml.Node `yaml:"extraBuildSettings"`
	ExtraInfoPlist     map[string]yaml.Node `yaml:"extraInfoPlist"`
}

// LoadFile reads and parses the request file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a request file. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing request file: %w", err)
	}
	return &f, nil
}
