package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize normalized box dimensions and anchor usage",
	Long: `Builds the dataset and reports the distribution of normalized box widths
and heights plus how often each anchor template was matched. Useful for
checking how well the configured anchor catalogue covers the data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ds, err := loadDataset(cfg)
		if err != nil {
			return err
		}

		s := ds.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Images: %d\nBoxes:  %d\n", s.Images, s.Boxes)
		if s.Boxes == 0 {
			return nil
		}

		fmt.Fprintf(out, "Width:  mean=%.4f stddev=%.4f min=%.4f median=%.4f max=%.4f\n",
			s.Width.Mean, s.Width.StdDev, s.Width.Min, s.Width.Median, s.Width.Max)
		fmt.Fprintf(out, "Height: mean=%.4f stddev=%.4f min=%.4f median=%.4f max=%.4f\n",
			s.Height.Mean, s.Height.StdDev, s.Height.Min, s.Height.Median, s.Height.Max)

		fmt.Fprintln(out, "Anchor usage:")
		cat, err := cfg.Catalogue()
		if err != nil {
			return err
		}
		for i, n := range s.AnchorUsage {
			fmt.Fprintf(out, "  [%d] %.4fx%.4f: %d\n", i, cat.Anchors[i].W, cat.Anchors[i].H, n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
