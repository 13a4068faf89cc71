package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaos-io/chromakey/config"
	"github.com/chaos-io/chromakey/pipeline"
	"github.com/chaos-io/chromakey/rembg"
)

func NewRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Make the background of an image transparent",
		Long: `Remove decodes the input image (a local path or an http(s) URL), replaces
every background pixel with transparent white and writes the result as PNG.

Examples:
  chromakey remove -i logo.png -o logo-transparent.png
  chromakey remove -i logo.png -o out.png --classifier dark --threshold 40
  chromakey remove -i logo.png -o out.png --preview preview.png`,
		Args: cobra.NoArgs,
		RunE: runRemove,
	}

	cmd.Flags().StringP("input", "i", "", "Input image path or URL")
	cmd.Flags().StringP("output", "o", "", "Output PNG path")
	cmd.Flags().String("classifier", config.DefaultClassifier, "Background classifier (dark, chroma)")
	cmd.Flags().Uint8("threshold", config.DefaultDarkThreshold, "Darkness threshold for the dark classifier")
	cmd.Flags().Int("gray-max-chroma", config.DefaultGrayMaxChroma, "Max channel spread treated as gray by the chroma classifier")
	cmd.Flags().Int("workers", 0, "Parallel row bands (0 = number of CPUs)")
	cmd.Flags().String("preview", "", "Also write a downscaled preview PNG to this path")
	cmd.Flags().Uint("preview-size", config.DefaultPreviewSize, "Longest side of the preview")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runRemove(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRemoveFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	previewPath, _ := cmd.Flags().GetString("preview")

	remover, err := cfg.NewRemover()
	if err != nil {
		return err
	}

	p := pipeline.New(remover, pipeline.Options{
		PreviewPath: previewPath,
		PreviewSize: cfg.PreviewSize,
	})
	res, err := p.Run(cmdContext(cmd), inputPath, outputPath)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Processed image saved to %s\n", res.OutputPath)
	return err
}

// applyRemoveFlags 显式给出的命令行参数覆盖配置文件
func applyRemoveFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("classifier") {
		s, _ := flags.GetString("classifier")
		kind, err := rembg.ParseKind(s)
		if err != nil {
			return err
		}
		cfg.Classifier = string(kind)
	}
	if flags.Changed("threshold") {
		cfg.Dark.Threshold, _ = flags.GetUint8("threshold")
	}
	if flags.Changed("gray-max-chroma") {
		cfg.Chroma.GrayMaxChroma, _ = flags.GetInt("gray-max-chroma")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("preview-size") {
		cfg.PreviewSize, _ = flags.GetUint("preview-size")
	}
	return nil
}
