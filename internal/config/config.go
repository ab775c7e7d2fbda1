package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	General  GeneralConfig
	Log      LogConfig
	Accounts []AccountConfig
	// Aliases maps a short command name to the name it expands to.
	Aliases map[string]string
	// Hooks maps "pre_<command>"/"post_<command>" to a shell command that
	// runs around the named command.
	Hooks map[string]string
}

// DatabaseConfig holds settings for the message index.
type DatabaseConfig struct {
	Path     string
	ReadOnly bool `mapstructure:"read_only"`
}

// GeneralConfig holds behavioural settings consumed by commands.
type GeneralConfig struct {
	EditorCmd         string `mapstructure:"editor_cmd"`
	TerminalCmd       string `mapstructure:"terminal_cmd"`
	SpawnEditor       bool   `mapstructure:"spawn_editor"`
	AskSubject        bool   `mapstructure:"ask_subject"`
	FlushRetryTimeout int    `mapstructure:"flush_retry_timeout"` // seconds
	InitialQuery      string `mapstructure:"initial_query"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Path  string
	Debug bool
}

// AccountConfig describes one sending identity.
type AccountConfig struct {
	Realname    string
	Address     string
	SendmailCmd string `mapstructure:"sendmail_cmd"`
}

// Load reads configuration from file and env. Env var overrides use prefix ALOT_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "alot", "index.db"))
	v.SetDefault("database.read_only", false)
	v.SetDefault("general.editor_cmd", "vi")
	v.SetDefault("general.terminal_cmd", "x-terminal-emulator -e")
	v.SetDefault("general.spawn_editor", false)
	v.SetDefault("general.ask_subject", true)
	v.SetDefault("general.flush_retry_timeout", 5)
	v.SetDefault("general.initial_query", "tag:inbox")
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".cache", "alot", "alot.log"))
	v.SetDefault("log.debug", false)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("ALOT_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "alot"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ALOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Aliases == nil {
		c.Aliases = map[string]string{}
	}
	if c.Hooks == nil {
		c.Hooks = map[string]string{}
	}
	return c, nil
}
