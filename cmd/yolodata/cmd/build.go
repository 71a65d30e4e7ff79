package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/yolodata/internal/config"
	"github.com/MeKo-Tech/yolodata/internal/dataset"
	"github.com/MeKo-Tech/yolodata/internal/encoder"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the full annotation-to-target encoding pass",
	Long: `Parses every annotation file under the dataset directory, normalizes the
boxes into network input space, matches anchors, and encodes the three
per-scale target tensors. Any malformed record or unresolvable
image/annotation pairing aborts the build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ds, err := loadDataset(cfg)
		if err != nil {
			return err
		}

		grids := encoder.GridSizes(cfg.Input.Height)
		fmt.Fprintf(cmd.OutOrStdout(), "Built dataset: %d images, %d boxes\n", ds.Len(), ds.NumBoxes())
		fmt.Fprintf(cmd.OutOrStdout(), "Input %dx%d, grids %dx%d %dx%d %dx%d\n",
			cfg.Input.Width, cfg.Input.Height,
			grids[0], grids[0], grids[1], grids[1], grids[2], grids[2])
		return nil
	},
}

// loadDataset materializes the detection dataset from configuration.
func loadDataset(cfg *config.Config) (*dataset.Dataset, error) {
	if cfg.Dataset.Dir == "" {
		return nil, errors.New("no dataset directory configured (use --dataset-dir or dataset.dir)")
	}

	cat, err := cfg.Catalogue()
	if err != nil {
		return nil, err
	}
	policy, err := dataset.ParseBoundsPolicy(cfg.Dataset.BoundsPolicy)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ds, err := dataset.Load(cfg.Dataset.Dir, dataset.Options{
		InputWidth:  cfg.Input.Width,
		InputHeight: cfg.Input.Height,
		ClassID:     cfg.Dataset.ClassID,
		Bounds:      policy,
		Catalogue:   cat,
	})
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}

	slog.Info("dataset ready",
		"dir", cfg.Dataset.Dir,
		"images", ds.Len(),
		"boxes", ds.NumBoxes(),
		"elapsed", time.Since(start))
	return ds, nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
