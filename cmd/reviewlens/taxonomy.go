package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reviewlens/internal/complaints"
)

func taxonomyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "Print the complaint taxonomy",
		Long:  `Print the complaint categories and the Dutch keyword patterns behind them.`,
		Run: func(_ *cobra.Command, _ []string) {
			for _, p := range complaints.Taxonomy() {
				fmt.Printf("%-15s %s\n", p.Category, p.Regex)
			}
		},
	}
}
