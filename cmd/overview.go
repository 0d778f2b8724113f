package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zalepa/delinquance/chart"
	"github.com/zalepa/delinquance/dashboard"
	"github.com/zalepa/delinquance/dataset"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Print the first rows of the statistics and the list of classes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDashboard(cache, cfg, logger)
		if err != nil {
			return err
		}
		return renderOverview(cmd.OutOrStdout(), d.Home())
	},
}

func renderOverview(w io.Writer, v dashboard.HomeView) error {
	t := &textTable{
		title:   fmt.Sprintf("Aperçu des données (%s lignes)", chart.FormatCount(v.Rows)),
		headers: []string{"Département", "Année", "Classe", "Faits", "Taux pour mille"},
		right:   map[int]bool{3: true, 4: true},
	}
	for _, r := range v.Head {
		t.addRow(r.Department, dataset.YearLabel(r.Year), r.Class, chart.FormatCount(r.Facts), chart.FormatRate(r.Rate))
	}

	var sb strings.Builder
	sb.WriteString(t.String())
	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render("Classes d'infractions"))
	sb.WriteString("\n")
	for _, c := range v.Classes {
		sb.WriteString("  • " + c + "\n")
	}
	_, err := fmt.Fprint(w, sb.String())
	return err
}
