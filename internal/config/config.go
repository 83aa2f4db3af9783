// Package config loads gitshelf settings from command-line flags, config
// files, environment variables, and built-in defaults.
//
// Resolution follows viper's precedence: explicitly set flags win, then
// GITSHELF_* environment variables, then the config file (an explicit path
// or .gitshelf.yaml found in the current or home directory), then defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Settings holds the resolved gitshelf configuration.
type Settings struct {
	// GitBin is the git executable to invoke.
	GitBin string

	// GitExtraArgs are inserted before every git subcommand, e.g.
	// "-c core.quotepath=off".
	GitExtraArgs []string

	// Timeout bounds each git invocation.
	Timeout time.Duration

	// IncludeUntracked controls whether save captures untracked files
	// unless overridden on the command line.
	IncludeUntracked bool

	// Confirm gates destructive operations behind an interactive prompt.
	Confirm bool

	// LogLevel selects diagnostic verbosity: debug, info, warn, error, off.
	LogLevel string
}

// Defaults returns the built-in settings used when nothing is configured.
func Defaults() *Settings {
	return &Settings{
		GitBin:           "git",
		Timeout:          60 * time.Second,
		IncludeUntracked: true,
		Confirm:          true,
		LogLevel:         "warn",
	}
}

// Load resolves settings. cfgFile, when non-empty, names an explicit config
// file and it is an error for it to be missing; otherwise .gitshelf.yaml is
// searched for in the current and home directories and absence is fine.
func Load(cfgFile string) (*Settings, error) {
	v := viper.New()

	def := Defaults()
	v.SetDefault("git.bin", def.GitBin)
	v.SetDefault("git.timeout", def.Timeout.String())
	v.SetDefault("save.include-untracked", def.IncludeUntracked)
	v.SetDefault("confirm", def.Confirm)
	v.SetDefault("log.level", def.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".gitshelf")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("GITSHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	extra, err := extraArgs(v)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		GitBin:           v.GetString("git.bin"),
		GitExtraArgs:     extra,
		Timeout:          v.GetDuration("git.timeout"),
		IncludeUntracked: v.GetBool("save.include-untracked"),
		Confirm:          v.GetBool("confirm"),
		LogLevel:         v.GetString("log.level"),
	}
	if s.Timeout <= 0 {
		return nil, fmt.Errorf("git.timeout must be positive, got %s", s.Timeout)
	}
	return s, nil
}

// BindFlags overlays flags the user set explicitly onto the settings, so
// command-line values win over the config file and environment.
func (s *Settings) BindFlags(fs *pflag.FlagSet) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "log-level":
			s.LogLevel = f.Value.String()
		case "timeout":
			if d, err := time.ParseDuration(f.Value.String()); err == nil && d > 0 {
				s.Timeout = d
			}
		}
	})
}

// extraArgs accepts git.extra-args as either a YAML list or a single
// shell-style string such as "-c core.quotepath=off".
func extraArgs(v *viper.Viper) ([]string, error) {
	switch raw := v.Get("git.extra-args").(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(raw) == "" {
			return nil, nil
		}
		args, err := shellwords.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse git.extra-args: %w", err)
		}
		return args, nil
	default:
		return v.GetStringSlice("git.extra-args"), nil
	}
}
