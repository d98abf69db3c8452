package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Veraticus/coinsort/internal/merchant"
)

func merchantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merchants <transactions.json>",
		Short: "Group similar merchant names in a statement",
		Long: `Extract merchant names from a statement's descriptions and cluster
near-duplicates ("AMAZON MKTP", "Amazon Marketplace") by fuzzy matching.`,
		Args: cobra.ExactArgs(1),
		RunE: runMerchants,
	}

	cmd.Flags().Float64("threshold", merchant.DefaultGroupThreshold, "similarity threshold for grouping")

	return cmd
}

func runMerchants(cmd *cobra.Command, args []string) error {
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	txns, err := loadTransactions(args[0])
	if err != nil {
		return err
	}

	descriptions := make([]string, len(txns))
	for i, txn := range txns {
		descriptions[i] = txn.Description
	}

	groups := merchant.GroupSimilar(descriptions, threshold)

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := cmd.OutOrStdout()
	for _, key := range keys {
		members := groups[key]
		fmt.Fprintf(out, "%s (%d)\n", key, len(members))
		for _, member := range members {
			fmt.Fprintf(out, "  %s\n", member)
		}
	}
	return nil
}
