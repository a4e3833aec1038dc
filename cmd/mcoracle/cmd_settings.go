package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/mcoracle/pkg/cli"
	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/settings"
)

const validSettings = "platform, scenarios, redis, ssh_user"

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.mcoracle/settings.json.

Settings provide defaults that flags and MCORACLE_* environment
variables override:
  - default_platform: Platform for scenarios that do not name one
  - scenario_dir:     Directory 'check' runs with no arguments
  - redis_addr:       STATE_DB address for 'sync'
  - ssh_user:         SSH login for 'sync --ssh'

Examples:
  mcoracle settings show
  mcoracle settings set platform tofino3
  mcoracle settings set redis 10.0.0.1:6379
  mcoracle settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := cli.NewTable("SETTING", "VALUE")

		printSetting := func(name, value string) {
			if value == "" {
				value = "(not set)"
			}
			t.Row(name, value)
		}

		printSetting("default_platform", s.DefaultPlatform)
		printSetting("scenario_dir", s.ScenarioDir)
		printSetting("redis_addr", s.RedisAddr)
		printSetting("ssh_user", s.SSHUser)

		t.Flush()
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Long: `Set a persistent setting value.

Available settings:
  platform  - Default platform (tofino, tofino2, tofino3)
  scenarios - Scenario directory for 'check'
  redis     - STATE_DB address for 'sync'
  ssh_user  - SSH login for 'sync --ssh'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}
		if err := applySetting(s, args[0], args[1]); err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Printf("%s set to: %s\n", args[0], args[1])
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		value, err := getSetting(s, args[0])
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &settings.Settings{}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println("All settings cleared.")
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settings.DefaultSettingsPath())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}

func applySetting(s *settings.Settings, name, value string) error {
	switch name {
	case "platform", "default_platform":
		if _, err := model.ParsePlatform(value); err != nil {
			return err
		}
		s.DefaultPlatform = value
	case "scenarios", "scenario_dir":
		s.ScenarioDir = value
	case "redis", "redis_addr":
		s.RedisAddr = value
	case "ssh_user":
		s.SSHUser = value
	default:
		return fmt.Errorf("unknown setting: %s (valid: %s)", name, validSettings)
	}
	return nil
}

func getSetting(s *settings.Settings, name string) (string, error) {
	switch name {
	case "platform", "default_platform":
		return s.DefaultPlatform, nil
	case "scenarios", "scenario_dir":
		return s.ScenarioDir, nil
	case "redis", "redis_addr":
		return s.RedisAddr, nil
	case "ssh_user":
		return s.SSHUser, nil
	default:
		return "", fmt.Errorf("unknown setting: %s (valid: %s)", name, validSettings)
	}
}
