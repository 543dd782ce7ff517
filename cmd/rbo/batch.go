package main

import (
	"github.com/spf13/cobra"

	"github.com/ricesearch/rbo/internal/batch"
	"github.com/ricesearch/rbo/internal/rankfile"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Compare many pairs from a batch document",
		Long: `Compare every pair in a YAML or JSON batch document ("-" reads stdin).

A pair gives either two ranked lists or two score mappings:

  p: 0.9
  pairs:
    - id: q1
      left: [a, [b, c], d]
      right: [b, a, c]
    - id: q2
      left_scores: {a: 3, b: 1}
      right_scores: {a: 1, b: 2}

A p or mode in the document overrides flags and config. Pairs run
concurrently; results are printed in document order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				e.cfg.Batch.Workers, _ = cmd.Flags().GetInt("workers")
			}

			doc, err := rankfile.ReadDocument(args[0])
			if err != nil {
				return err
			}
			defaults, err := e.batchConfig()
			if err != nil {
				return err
			}
			cfg, err := batch.ConfigFor(doc, defaults)
			if err != nil {
				return err
			}

			runner, closeCache, err := e.newRunner(cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			outcomes, summary, err := runner.Run(cmd.Context(), batch.FromDocument(doc))
			if err != nil {
				return err
			}
			return e.writeBatch(cmd.OutOrStdout(), outcomes, summary)
		},
	}

	cmd.Flags().IntP("workers", "w", 0, "concurrent comparisons (default from config)")

	return cmd
}
