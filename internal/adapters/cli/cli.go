package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fabric-stock/internal/app"
	"fabric-stock/internal/core"
)

const usage = "Available: health [name|code|balance], reorder [as-of], requirements [as-of], brief [as-of], evaluate <balance> <avg-daily> [lead-days]"

// Run executes a one-shot CLI command, writing tables to w.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string, w io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}
	arg := func(i int) string {
		if len(args) > i {
			return args[i]
		}
		return ""
	}

	switch args[0] {
	case "health", "h":
		result, err := svc.GetStockHealth(ctx, arg(1))
		if err != nil {
			return fmt.Errorf("failed to compute stock health: %w", err)
		}
		printStockHealth(w, result)

	case "reorder", "r":
		result, err := svc.GetReorderAssessments(ctx, app.ReorderRequest{AsOf: arg(1)})
		if err != nil {
			return fmt.Errorf("failed to compute reorder list: %w", err)
		}
		printReorder(w, result)

	case "requirements", "req":
		result, err := svc.GetFabricRequirements(ctx, arg(1))
		if err != nil {
			return fmt.Errorf("failed to plan fabric requirements: %w", err)
		}
		printRequirements(w, result)

	case "brief", "b":
		result, err := svc.DraftPurchaseBrief(ctx, arg(1))
		if err != nil {
			return fmt.Errorf("failed to draft purchase brief: %w", err)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Brief)

	case "evaluate", "eval":
		if len(args) < 3 {
			return fmt.Errorf("usage: app evaluate <balance> <avg-daily> [lead-days]")
		}
		req := app.EvaluateReorderRequest{Balance: args[1], AvgDailyConsumption: args[2]}
		if lead := arg(3); lead != "" {
			n, err := strconv.Atoi(lead)
			if err != nil {
				return fmt.Errorf("invalid lead time %q: %w", lead, err)
			}
			req.LeadTimeDays = &n
		}
		result, err := svc.EvaluateReorder(ctx, req)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
		days := "n/a"
		if result.Classification.DaysOfStock != nil {
			days = result.Classification.DaysOfStock.StringFixed(1)
		}
		fmt.Fprintf(w, "Status: %s  (days of stock %s, lead time %d, suggested qty %d)\n",
			result.Classification.Status, days, result.Classification.EffectiveLeadTimeDays, result.SuggestedOrderQty)

	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
	return nil
}

func printStockHealth(w io.Writer, result *app.StockHealthResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %-58s\n", "FABRIC STOCK HEALTH")
	fmt.Fprintf(w, "  Colour order : %s\n", result.Order)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	for _, row := range result.Report.Rows {
		fmt.Fprintf(w, "  %-30s %-10s %6s %12s\n", row.FabricName, row.MaterialName, row.Unit, row.TotalBalance.StringFixed(2))
		for _, c := range row.Colours {
			fmt.Fprintf(w, "      %-12s %-25s %14s\n", c.ColourCode, c.ColourName, c.Balance.StringFixed(2))
		}
		fmt.Fprintln(w, strings.Repeat("-", 62))
	}
	for _, unit := range []core.Unit{core.UnitMeter, core.UnitKG} {
		if total, ok := result.Report.TotalsByUnit[unit]; ok {
			fmt.Fprintf(w, "  %-48s %12s\n", "TOTAL "+string(unit), total.StringFixed(2))
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

func printReorder(w io.Writer, result *app.ReorderResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 96))
	fmt.Fprintf(w, "  REORDER STATUS as of %s   now: %d  soon: %d  ok: %d\n",
		result.AsOf.Format("2006-01-02"),
		result.Counts[core.StatusOrderNow], result.Counts[core.StatusOrderSoon], result.Counts[core.StatusOK])
	fmt.Fprintln(w, strings.Repeat("=", 96))
	fmt.Fprintf(w, "  %-10s %-20s %-14s %12s %9s %6s %5s %8s  %s\n",
		"STATUS", "FABRIC", "COLOUR", "BALANCE", "AVG/DAY", "DAYS", "LEAD", "SUGGEST", "SUPPLIER")
	fmt.Fprintln(w, strings.Repeat("-", 96))
	for _, a := range result.Assessments {
		days := "-"
		if a.DaysOfStock != nil {
			days = a.DaysOfStock.StringFixed(1)
		}
		party := ""
		if a.PartyName != nil {
			party = *a.PartyName
		}
		fmt.Fprintf(w, "  %-10s %-20s %-14s %12s %9s %6s %5d %8d  %s\n",
			a.Status, truncate(a.FabricName, 20), truncate(a.ColourName, 14),
			a.CurrentBalance.StringFixed(2), a.AvgDailyConsumption.StringFixed(2),
			days, a.EffectiveLeadTimeDays, a.SuggestedOrderQty, party)
	}
	fmt.Fprintln(w, strings.Repeat("=", 96))
}

func printRequirements(w io.Writer, result *app.RequirementsResult) {
	plan := result.Plan
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "  FABRIC REQUIREMENTS, next %d weeks (wastage default %s%%)\n", plan.ForecastWeeks, plan.WastagePercent.StringFixed(1))
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "  %-20s %-14s %12s %12s %12s %12s\n", "FABRIC", "COLOUR", "REQUIRED", "IN STOCK", "GAP", "COST")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, f := range plan.Fabrics {
		for _, c := range f.Colours {
			fmt.Fprintf(w, "  %-20s %-14s %12s %12s %12s %12s\n",
				truncate(f.FabricName, 20), truncate(c.ColourName, 14),
				c.Required.StringFixed(1), c.InStock.StringFixed(1), c.Gap.StringFixed(1), c.OrderCost.StringFixed(0))
		}
	}
	fmt.Fprintln(w, strings.Repeat("-", 80))
	s := plan.Summary
	fmt.Fprintf(w, "  Products forecast: %d (%s units)   Shortfalls: %d   Covered: %d\n",
		s.ProductsForecasted, s.TotalForecastUnits.StringFixed(0), s.ShortfallCount, s.CoveredByStock)
	fmt.Fprintf(w, "  Estimated purchase cost: %s\n", s.EstimatedPurchaseCost.StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
