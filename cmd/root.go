package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kennyg/lmagent/internal/config"
	"github.com/kennyg/lmagent/internal/logger"
	"github.com/kennyg/lmagent/internal/ui"
)

var (
	// Version is set at build time
	Version = "dev"
)

var (
	rootDir string
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "lmagent",
	Short: "Install skills, rules and workflows into AI coding assistants",
	Long: ui.Logo(config.FrameworkVersion) + `

  One content tree, every assistant.
  Install skills, rules and workflows into Cursor, Claude, Windsurf,
  Copilot and friends, and keep the catalog in AGENTS.md in sync.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.Init(cfgFile); err != nil {
			exitWithError(err.Error())
		}
		if err := logger.SetLogLevel(viper.GetString(config.KeyLogLevel)); err != nil {
			exitWithError(err.Error())
		}
		logger.SetLogFormat(viper.GetString(config.KeyLogFormat))
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootDir, "root", "", "Project root (default: current directory)")
	flags.String("source", "", "Content root holding skills/, rules/ and workflows/ (default: ./.agents, then ~/.agents)")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "fmt", "Log format (fmt or json)")
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ./.lmagent/config.yaml, then ~/.config/lmagent/config.yaml)")

	viper.BindPFlag(config.KeySource, flags.Lookup("source"))
	viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	viper.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(createSkillCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lmagent %s (framework %s)\n", Version, config.FrameworkVersion)
	},
}

// env is what most commands need before doing anything
type env struct {
	settings *config.Settings
	paths    *config.Paths
	profiles []config.ToolProfile
}

// loadEnv resolves settings, paths and tool profiles, exiting on failure
func loadEnv() *env {
	settings, err := config.Load()
	if err != nil {
		exitWithError(err.Error())
	}
	paths, err := config.ResolvePaths(rootDir, settings.Source)
	if err != nil {
		exitWithError(err.Error())
	}
	profiles, err := config.Profiles(paths.ProfilesPath(settings.ProfilesFile))
	if err != nil {
		exitWithError(err.Error())
	}
	return &env{settings: settings, paths: paths, profiles: profiles}
}

// commandContext returns a context carrying the command's logger
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithLogger(ctx, logger.L.WithField("command", cmd.Name()))
}

// exitWithError prints an error and exits
func exitWithError(msg string) {
	fmt.Fprintln(os.Stderr, ui.Error.Render("Error: "+msg))
	os.Exit(1)
}
