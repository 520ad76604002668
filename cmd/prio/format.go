package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"prio/internal/engine"
	"prio/internal/policy"
	"prio/internal/storage"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatCSV   OutputFormat = "csv"
)

// formatJSON formats any value as indented JSON
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatPlan renders a prioritization response
func formatPlan(resp *engine.Response, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatTable:
		return formatPlanTable(resp), nil
	case FormatCSV:
		return formatPlanCSV(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatPlanTable(resp *engine.Response) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan: %d/%d items selected, effort %.1f of budget %.1f\n\n",
		resp.Summary.ItemsSelected, resp.Summary.ItemsTotal,
		resp.Summary.EffortSelected, resp.Summary.Budget)

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tID\tMODULE\tSELECTED\tRISK\tEFFORT\tSCORE\tREASON")
	for _, e := range resp.Plan {
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%.2f\t%.1f\t%.4f\t%s\n",
			e.Rank, e.ID, e.Module, e.Selected, e.Risk, e.Effort, e.PriorityScore, e.SelectionReason)
	}
	w.Flush()

	return strings.TrimRight(b.String(), "\n")
}

func formatPlanCSV(resp *engine.Response) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write([]string{"rank", "id", "module", "selected", "risk", "effort", "priority_score", "selection_reason"}); err != nil {
		return "", err
	}
	for _, e := range resp.Plan {
		record := []string{
			strconv.Itoa(e.Rank),
			e.ID,
			e.Module,
			strconv.FormatBool(e.Selected),
			strconv.FormatFloat(e.Risk, 'f', -1, 64),
			strconv.FormatFloat(e.Effort, 'f', -1, 64),
			strconv.FormatFloat(e.PriorityScore, 'f', -1, 64),
			string(e.SelectionReason),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// formatComparison renders a heuristic comparison table
func formatComparison(result *engine.CompareResult, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(result)
	case FormatTable:
		return formatComparisonTable(result), nil
	case FormatCSV:
		return formatComparisonCSV(result)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatComparisonTable(result *engine.CompareResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Comparison over %d items, budget %.1f (seed %d)\n\n",
		result.ItemsTotal, result.Budget, result.Seed)

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HEURISTIC\tSELECTED\tEFFORT\tRISK COVERED\tEFFICIENCY")
	for _, c := range result.Comparisons {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.3f\t%.4f\n",
			c.Heuristic, c.ItemsSelected, c.EffortUsed, c.TotalRiskCovered, c.Efficiency)
	}
	w.Flush()

	return strings.TrimRight(b.String(), "\n")
}

func formatComparisonCSV(result *engine.CompareResult) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write([]string{"heuristic", "items_selected", "effort_used", "total_risk_covered", "efficiency"}); err != nil {
		return "", err
	}
	for _, c := range result.Comparisons {
		record := []string{
			c.Heuristic,
			strconv.Itoa(c.ItemsSelected),
			strconv.FormatFloat(c.EffortUsed, 'f', -1, 64),
			strconv.FormatFloat(c.TotalRiskCovered, 'f', -1, 64),
			strconv.FormatFloat(c.Efficiency, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// formatPolicies renders a policy listing
func formatPolicies(policies []policy.Policy, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(policies)
	case FormatTable:
		var b strings.Builder
		w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDEFAULT\tRISK\tCRIT\tCOVERAGE\tEFFORT\tBUDGET\tDESCRIPTION")
		for _, p := range policies {
			marker := ""
			if p.IsDefault {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f\t%s\n",
				p.Name, marker, p.Weights.Risk, p.Weights.Crit,
				p.Weights.Coverage, p.Weights.Effort, p.DefaultBudget, p.Description)
		}
		w.Flush()
		return strings.TrimRight(b.String(), "\n"), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatRuns renders a run history listing
func formatRuns(runs []storage.Run, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(runs)
	case FormatTable:
		if len(runs) == 0 {
			return "No runs recorded.", nil
		}
		var b strings.Builder
		w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tBUDGET\tSELECTED\tTOTAL\tEFFORT")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%.1f\t%d\t%d\t%.1f\n",
				shortID(r.ID), r.CreatedAt.Format("2006-01-02 15:04:05"),
				r.Budget, r.ItemsSelected, r.ItemsTotal, r.EffortSelected)
		}
		w.Flush()
		return strings.TrimRight(b.String(), "\n"), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
