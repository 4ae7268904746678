package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables petrel reads.
const EnvPrefix = "PETREL"

// Settings are the tool's own options, as opposed to the request.
type Settings struct {
	ConfigFile  string
	ProjectRoot string
	DryRun      bool
	Diff        bool
	TeamID      string
}

// LoadSettings resolves the settings from flags and PETREL_* environment
// variables. A flag set on the command line wins over the environment,
// which wins over flag defaults.
func LoadSettings(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("config", DefaultFile)
	v.SetDefault("project-root", ".")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	return &Settings{
		ConfigFile:  v.GetString("config"),
		ProjectRoot: v.GetString("project-root"),
		DryRun:      v.GetBool("dry-run"),
		Diff:        v.GetBool("diff"),
		TeamID:      v.GetString("team-id"),
	}, nil
}
