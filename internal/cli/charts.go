package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/genomechart/pkg/chart"
)

// chartsCommand creates the charts command listing the chart vocabulary.
func (c *CLI) chartsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "charts",
		Short: "List the chart types that can be requested",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printVocabulary()
			return nil
		},
	}
}

func printVocabulary() {
	nameStyle := lipgloss.NewStyle().Foreground(colorCyan).Width(18)
	tagStyle := lipgloss.NewStyle().Foreground(colorWhite).Width(34)

	fmt.Println(StyleTitle.Render("Chart types"))
	for _, t := range chart.Types() {
		values := "values"
		if !t.Kind().HasValueSeries {
			values = "intervals only"
		}
		fmt.Println("  " + nameStyle.Render(t.String()) + tagStyle.Render(t.TagName()) + StyleDim.Render(values))
	}

	k := chart.LookupKind(chart.GenesTrack)
	printNewline()
	printDetail("%s (%s) is chosen automatically for gene files", k.Name, k.Tag)
}
