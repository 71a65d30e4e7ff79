package cmd

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/yolodata/internal/dataset"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw training samples from a built dataset",
	Long: `Builds the dataset and draws N samples from the endless uniform sampler,
printing one JSON line per sample: the image path and, per scale, the grid
size and the number of occupied cells. The stream itself has no
termination; --count only limits how much of it is shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ds, err := loadDataset(cfg)
		if err != nil {
			return err
		}

		count, _ := cmd.Flags().GetInt("count")
		seed, _ := cmd.Flags().GetInt64("seed")
		if seed == 0 {
			seed = cfg.Dataset.Seed
		}

		var rng *rand.Rand
		if seed != 0 {
			rng = rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible sampling, not security
		}
		sampler := dataset.NewSampler(ds, rng)

		enc := json.NewEncoder(cmd.OutOrStdout())
		for range count {
			s := sampler.Next()
			out := sampleInfo{Image: s.ImagePath}
			for i, tgt := range s.Targets {
				out.Scales[i] = scaleInfo{
					GridSize: tgt.GridSize,
					Anchors:  tgt.AnchorsPerCell,
					Occupied: tgt.NonZeroCells(),
				}
			}
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("write sample: %w", err)
			}
		}
		return nil
	},
}

type scaleInfo struct {
	GridSize int `json:"grid_size"`
	Anchors  int `json:"anchors"`
	Occupied int `json:"occupied"`
}

type sampleInfo struct {
	Image  string       `json:"image"`
	Scales [3]scaleInfo `json:"scales"`
}

func init() {
	sampleCmd.Flags().Int("count", 10, "number of samples to draw")
	sampleCmd.Flags().Int64("seed", 0, "seed for the random source (0 = non-deterministic)")
	rootCmd.AddCommand(sampleCmd)
}
