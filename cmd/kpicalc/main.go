package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
	"work_readiness_backend/internal/readiness"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kpicalc",
		Short: "Offline calculator for readiness KPI scores",
		Long: `kpicalc runs the same scoring used by the server without a database.
- consecutive: score a streak of consecutive submission days.
- assignment: score a month of assignment counts.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("json", false, "output JSON")
	root.AddCommand(newConsecutiveCmd(), newAssignmentCmd())
	return root
}

func newConsecutiveCmd() *cobra.Command {
	var days int
	var formula string
	cmd := &cobra.Command{
		Use:   "consecutive",
		Short: "Score consecutive submission days",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := readiness.ConsecutiveFormula(formula)
			if f != readiness.FormulaGranular && f != readiness.FormulaLegacy {
				return fmt.Errorf("unknown formula %q (granular, legacy)", formula)
			}
			res := readiness.ScoreConsecutiveDays(f, days)
			if asJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			tw := newTable(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Days", "Formula", "Score", "Rating", "Description"})
			tw.AppendRow(table.Row{res.ConsecutiveDays, res.Formula, res.Score, res.Rating, res.Description})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "consecutive days")
	cmd.Flags().StringVar(&formula, "formula", string(readiness.FormulaGranular), "formula (granular, legacy)")
	return cmd
}

func newAssignmentCmd() *cobra.Command {
	var facts readiness.AssignmentFacts
	cmd := &cobra.Command{
		Use:   "assignment",
		Short: "Score assignment based monthly KPI",
		Long:  "Overdue penalty uses the count fallback since no due times are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if facts.Total < 0 {
				return fmt.Errorf("--total must not be negative")
			}
			res := readiness.AssignmentKPI(facts, time.Now())
			if asJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			tw := newTable(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Component", "Value"})
			b := res.Breakdown
			tw.AppendRows([]table.Row{
				{"Completion rate", b.CompletionRate},
				{"On-time rate", b.OnTimeRate},
				{"Quality score", b.QualityScore},
				{"Late rate", b.LateRate},
				{"Completion points", b.CompletionPoints},
				{"On-time points", b.OnTimePoints},
				{"Quality points", b.QualityPoints},
				{"Late penalty", -b.LatePenalty},
				{"Pending bonus", b.PendingBonus},
				{"Overdue penalty", -b.OverduePenalty},
				{"Recovery bonus", b.RecoveryBonus},
			})
			tw.AppendSeparator()
			tw.AppendRows([]table.Row{
				{"Score", res.Score},
				{"Grade", res.LetterGrade},
				{"Rating", res.Rating},
			})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&facts.Total, "total", 0, "total assignments")
	cmd.Flags().IntVar(&facts.Completed, "completed", 0, "completed assignments")
	cmd.Flags().IntVar(&facts.OnTime, "on-time", 0, "on-time submissions")
	cmd.Flags().IntVar(&facts.Late, "late", 0, "late submissions")
	cmd.Flags().IntVar(&facts.Pending, "pending", 0, "pending assignments")
	cmd.Flags().IntVar(&facts.Overdue, "overdue", 0, "overdue assignments")
	cmd.Flags().Float64Var(&facts.QualityScore, "quality", 0, "quality score 0-100")
	return cmd
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func newTable(out io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	return tw
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
