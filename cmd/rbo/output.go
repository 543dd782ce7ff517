package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/ricesearch/rbo/internal/batch"
	"github.com/ricesearch/rbo/internal/rankfile"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (e *env) writeCompare(w io.Writer, out compareOutput) error {
	if e.format == "json" {
		return writeJSON(w, out)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "min\t%.6f\n", out.Min)
	fmt.Fprintf(tw, "res\t%.6f\n", out.Res)
	fmt.Fprintf(tw, "ext\t%.6f\n", out.Ext)
	if out.Depth > 0 {
		fmt.Fprintf(tw, "average overlap@%d\t%.6f\n", out.Depth, *out.AverageOverlap)
		fmt.Fprintf(tw, "rbo@%d\t%.6f\n", out.Depth, *out.AtDepth)
		for i, a := range out.Agreement {
			fmt.Fprintf(tw, "agreement@%d\t%.6f\n", i+1, a)
		}
	}
	fmt.Fprintf(tw, "(p=%g, mode=%s)\n", out.P, out.Mode)
	return tw.Flush()
}

// writeList prints a ranked list in the same YAML form the reader accepts.
func (e *env) writeList(w io.Writer, l rankfile.List) error {
	if e.format == "json" {
		return writeJSON(w, l)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return err
	}
	return enc.Close()
}

type batchOutput struct {
	Outcomes []batch.Outcome `json:"outcomes"`
	Summary  batch.Summary   `json:"summary"`
}

func (e *env) writeBatch(w io.Writer, outcomes []batch.Outcome, s batch.Summary) error {
	if e.format == "json" {
		return writeJSON(w, batchOutput{Outcomes: outcomes, Summary: s})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMIN\tRES\tEXT\tERROR")
	for _, o := range outcomes {
		if o.Result == nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t%s\n", o.ID, o.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%.6f\t%.6f\t%.6f\t\n", o.ID, o.Result.Min, o.Result.Res, o.Result.Ext)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d pairs, %d failed, %d cached\n", s.Pairs, s.Failed, s.CacheHits)
	if s.Pairs > s.Failed {
		fmt.Fprintf(w, "mean min=%.6f res=%.6f ext=%.6f\n", s.MeanMin, s.MeanRes, s.MeanExt)
	}
	return nil
}
