package cmd

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/yolodata/internal/letterbox"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess <input> <output>",
	Short: "Letterbox an image to the network input resolution",
	Long: `Resizes an image with the same aspect-preserving scale the label
normalizer uses and pastes it top-left onto a black canvas of the network
input resolution. Using this command for the image side guarantees images
and targets share one letterbox ratio.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		img, err := imaging.Open(args[0])
		if err != nil {
			return fmt.Errorf("open image %s: %w", args[0], err)
		}

		boxed, err := letterbox.Image(img, cfg.Input.Width, cfg.Input.Height)
		if err != nil {
			return fmt.Errorf("letterbox %s: %w", args[0], err)
		}

		if err := imaging.Save(boxed, args[1]); err != nil {
			return fmt.Errorf("save image %s: %w", args[1], err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", args[1], cfg.Input.Width, cfg.Input.Height)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
}
