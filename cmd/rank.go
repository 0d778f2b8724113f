package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zalepa/delinquance/chart"
	"github.com/zalepa/delinquance/dashboard"
	"github.com/zalepa/delinquance/session"
)

var (
	rankDepartment string
	rankYear       int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print the dangerousness ranking of one department",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDashboard(cache, cfg, logger)
		if err != nil {
			return err
		}
		sel := session.New()
		sel.SelectDepartment(rankDepartment)
		sel.SelectYear(rankYear)
		return renderRanking(cmd.OutOrStdout(), d.Territorial(sel))
	},
}

func init() {
	rankCmd.Flags().StringVarP(&rankDepartment, "department", "d", "", "department code, e.g. 75 or 2A")
	rankCmd.Flags().IntVarP(&rankYear, "year", "y", 0, "year of the class breakdown (default: latest)")
	rankCmd.MarkFlagRequired("department")
}

func renderRanking(w io.Writer, v dashboard.TerritorialView) error {
	if v.Prompt != "" {
		_, err := fmt.Fprintln(w, "Indiquez un département avec --department.")
		return err
	}
	if v.Message != "" {
		_, err := fmt.Fprintln(w, v.Message)
		return err
	}

	share := make(map[string]int, len(v.Breakdown))
	for _, b := range v.Breakdown {
		share[b.Class] = b.Facts
	}
	t := &textTable{
		title:   "Dangerosité du département " + v.DepartmentLabel(),
		headers: []string{"#", "Classe", "Faits (toutes années)", "Faits " + strconv.Itoa(v.Year)},
		right:   map[int]bool{0: true, 2: true, 3: true},
	}
	for i, r := range v.Ranking {
		t.addRow(strconv.Itoa(i+1), r.Class, chart.FormatCount(r.Facts), chart.FormatCount(share[r.Class]))
	}
	_, err := fmt.Fprint(w, t.String())
	return err
}
