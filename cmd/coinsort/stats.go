package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/coinsort/internal/analytics"
	"github.com/Veraticus/coinsort/internal/banks"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <transactions.json>",
		Short: "Show spending analytics for a statement",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}

	cmd.Flags().Int("merchants", 10, "number of top merchants to show")
	cmd.Flags().Float64("anomaly-threshold", 2, "standard deviations beyond which a debit is anomalous")
	cmd.Flags().String("statement-text", "", "raw statement text for bank template detection")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	merchantLimit, _ := cmd.Flags().GetInt("merchants")
	anomalyThreshold, _ := cmd.Flags().GetFloat64("anomaly-threshold")
	statementText, _ := cmd.Flags().GetString("statement-text")

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng := newEngine(store)

	txns, err := loadTransactions(args[0])
	if err != nil {
		return err
	}
	eng.AddTransactions(txns)
	classified := eng.Transactions()

	out := cmd.OutOrStdout()

	currency := "$"
	if statementText != "" {
		if tmpl, ok := banks.Detect(statementText); ok {
			currency = tmpl.CurrencySymbol
			fmt.Fprintf(out, "Detected bank: %s (%s)\n\n", tmpl.Name, tmpl.Country)
		}
	}

	summary := analytics.Summarize(classified)
	fmt.Fprintf(out, "Statement %s to %s, %d transactions\n",
		summary.Start.Format("2006-01-02"), summary.End.Format("2006-01-02"), summary.TransactionCount)
	fmt.Fprintf(out, "Income %s%s, expenses %s%s, net %s%s\n\n",
		currency, summary.TotalIncome.StringFixed(2),
		currency, summary.TotalExpenses.StringFixed(2),
		currency, summary.NetChange.StringFixed(2))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTOTAL\tCOUNT\tSHARE")
	for _, total := range analytics.CategoryTotals(classified) {
		fmt.Fprintf(w, "%s\t%s%s\t%d\t%.1f%%\n",
			total.Category, currency, total.Total.StringFixed(2), total.Count, total.Percentage)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nTop merchants:")
	for _, m := range analytics.TopMerchants(classified, merchantLimit) {
		fmt.Fprintf(out, "  %-30s %s%s (%d)\n", m.Merchant, currency, m.Total.StringFixed(2), m.Count)
	}

	if anomalies := analytics.DetectAnomalies(classified, anomalyThreshold); len(anomalies) > 0 {
		fmt.Fprintln(out, "\nUnusually large debits:")
		for _, txn := range anomalies {
			fmt.Fprintf(out, "  %s  %s%s  %s\n",
				txn.Date.Format("2006-01-02"), currency, txn.Amount.StringFixed(2), txn.Description)
		}
	}

	eng.Report(ctx, args[0], time.Duration(0), true)
	return nil
}
