package main

import (
	"github.com/spf13/cobra"

	"github.com/ricesearch/rbo/internal/batch"
	"github.com/ricesearch/rbo/internal/rankfile"
	"github.com/ricesearch/rbo/internal/rbo"
)

// compareOutput is the result of one comparison.
type compareOutput struct {
	rbo.Result
	P      float64 `json:"p"`
	Mode   string  `json:"mode"`
	Cached bool    `json:"cached,omitempty"`

	// Prefix statistics, reported when --depth is set.
	Depth          int       `json:"depth,omitempty"`
	Agreement      []float64 `json:"agreement,omitempty"`
	AverageOverlap *float64  `json:"average_overlap,omitempty"`
	AtDepth        *float64  `json:"rbo_at_depth,omitempty"`
}

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <left> <right>",
		Short: "Compare two ranked lists",
		Long: `Compare two ranked lists read from YAML or JSON files ("-" reads stdin).

Examples:
  rbo compare run1.yaml run2.yaml
  rbo compare --p 0.98 --format json run1.json run2.json
  rbo compare --depth 5 run1.yaml run2.yaml   # also report prefix statistics`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			left, err := rankfile.ReadList(args[0])
			if err != nil {
				return err
			}
			right, err := rankfile.ReadList(args[1])
			if err != nil {
				return err
			}

			depth, _ := cmd.Flags().GetInt("depth")
			return e.compare(cmd, left, right, depth)
		},
	}

	cmd.Flags().Int("depth", 0, "also report agreement, average overlap and RBO truncated at this depth")

	return cmd
}

func scoresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scores <left> <right>",
		Short: "Compare two score mappings",
		Long: `Rank two item-to-score mappings, highest score first with equal scores
tied, and compare the resulting lists.

Example:
  rbo scores run1-scores.yaml run2-scores.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			// p is checked before the scores are ranked.
			if _, err := e.batchConfig(); err != nil {
				return err
			}

			var lists [2]rbo.List[string]
			for i, path := range args {
				scores, err := rankfile.ReadScores(path)
				if err != nil {
					return err
				}
				if lists[i], err = rbo.SortScores(map[string]float64(scores)); err != nil {
					return err
				}
			}
			return e.compare(cmd, lists[0], lists[1], 0)
		},
	}
}

func rankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank <scores>",
		Short: "Turn a score mapping into a ranked list",
		Long: `Print the ranked list for an item-to-score mapping: highest score first,
equal scores grouped into a tie-set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			scores, err := rankfile.ReadScores(args[0])
			if err != nil {
				return err
			}
			ranked, err := rbo.SortScores(map[string]float64(scores))
			if err != nil {
				return err
			}
			return e.writeList(cmd.OutOrStdout(), rankfile.FromRanked(ranked))
		},
	}
}

func (e *env) compare(cmd *cobra.Command, left, right rbo.List[string], depth int) error {
	cfg, err := e.batchConfig()
	if err != nil {
		return err
	}
	runner, closeCache, err := e.newRunner(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	res, cached, err := runner.Compare(cmd.Context(), left, right)
	if err != nil {
		return err
	}

	out := compareOutput{Result: res, P: cfg.P, Mode: cfg.Mode.String(), Cached: cached}
	if depth > 0 {
		if err := out.addPrefixStats(left, right, cfg, depth); err != nil {
			return err
		}
	}
	return e.writeCompare(cmd.OutOrStdout(), out)
}

func (o *compareOutput) addPrefixStats(left, right rbo.List[string], cfg batch.Config, depth int) error {
	prof := rbo.NewProfile(left, right, cfg.Mode)

	seq, err := prof.CumulativeAgreement(depth)
	if err != nil {
		return err
	}
	for a := range seq {
		o.Agreement = append(o.Agreement, a)
	}

	ao, err := prof.AverageOverlap(depth)
	if err != nil {
		return err
	}
	at, err := prof.AtDepth(cfg.P, depth)
	if err != nil {
		return err
	}

	o.Depth = depth
	o.AverageOverlap = &ao
	o.AtDepth = &at
	return nil
}
