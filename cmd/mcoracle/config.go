package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/settings"
)

// EnvPrefix prefixes environment overrides: MCORACLE_REDIS, MCORACLE_SSH_USER, ...
const EnvPrefix = "MCORACLE"

// Config is the resolved CLI configuration. Precedence: flag, environment,
// settings file, built-in default.
type Config struct {
	Verbose     bool   `mapstructure:"verbose"`
	JSON        bool   `mapstructure:"json"`
	LogJSON     bool   `mapstructure:"log-json"`
	NoColor     bool   `mapstructure:"no-color"`
	Platform    string `mapstructure:"platform"`
	ScenarioDir string `mapstructure:"scenario-dir"`
	Redis       string `mapstructure:"redis"`
	SSHHost     string `mapstructure:"ssh"`
	SSHUser     string `mapstructure:"ssh-user"`
	SSHPass     string `mapstructure:"ssh-pass"`
}

func init() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// bindFlags makes every flag in fs a viper key of the same name.
func bindFlags(fs *pflag.FlagSet) {
	if err := viper.BindPFlags(fs); err != nil {
		panic(fmt.Sprintf("binding flags: %v", err))
	}
}

// loadConfig layers settings under flags and environment and fills cfg.
func loadConfig(s *settings.Settings) error {
	viper.SetDefault("platform", s.DefaultPlatform)
	viper.SetDefault("scenario-dir", s.GetScenarioDir())
	viper.SetDefault("redis", s.GetRedisAddr())
	viper.SetDefault("ssh-user", s.GetSSHUser())

	// AutomaticEnv only covers keys viper already knows about
	for _, key := range []string{"ssh-pass"} {
		if err := viper.BindEnv(key); err != nil {
			return err
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if _, err := model.ParsePlatform(cfg.Platform); err != nil {
		return err
	}
	return nil
}
