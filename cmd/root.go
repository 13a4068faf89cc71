package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chaos-io/chromakey/config"
)

var version = "dev"

// NewRootCmd 根命令，子命令共享 --config 和 --verbose
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chromakey",
		Short: "Remove a flat or checkered background from an image by pixel color",
		Long: `chromakey classifies every pixel of an image as background or foreground
using a color heuristic and writes a PNG in which background pixels are
fully transparent.

Two classifiers are available:
  dark    all channels below a darkness threshold are background
  chroma  near-gray pixels are background, warm gold tones are kept`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Config file (default ./.chromakey.yaml or $XDG_CONFIG_HOME/chromakey/config.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewRemoveCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig 读取配置文件并初始化日志，--verbose 优先于配置文件
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
	}
	setupLogger(cmd, cfg.Verbose)

	return cfg, nil
}

func setupLogger(cmd *cobra.Command, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
