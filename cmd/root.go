package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"whiteboard/internal/config"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "whiteboard",
	Short: "Board-based whiteboard editor with an MCP agent surface",
	Long: `A whiteboard editor: boards, shapes, groups and guidelines edited from a
desktop window or by agents over the Model Context Protocol.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/whiteboard/config.yaml)")
	rootCmd.AddCommand(serveCmd, desktopCmd, versionCmd)
}

func loadConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded
	return nil
}

// configPath is the file to watch for live changes, if any.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
