package cmd

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/zalepa/delinquance/chart"
	"github.com/zalepa/delinquance/dashboard"
	"github.com/zalepa/delinquance/pipeline"
	"github.com/zalepa/delinquance/session"
)

var temporalClasses []string

var temporalCmd = &cobra.Command{
	Use:   "temporal",
	Short: "Print facts per year as a sparkline table, one row per class",
	Long: `Print the total number of facts per year for the chosen classes. With no
--class flag every class is listed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDashboard(cache, cfg, logger)
		if err != nil {
			return err
		}
		sel := session.New()
		if len(temporalClasses) > 0 {
			sel.SelectClasses(temporalClasses)
		} else {
			sel.SelectClasses(d.Home().Classes)
		}
		return renderTemporal(cmd.OutOrStdout(), d.Temporal(sel))
	},
}

func init() {
	temporalCmd.Flags().StringSliceVarP(&temporalClasses, "class", "c", nil, "infraction classes (repeatable)")
}

func renderTemporal(w io.Writer, v dashboard.TemporalView) error {
	if v.Message != "" {
		_, err := fmt.Fprintln(w, v.Message)
		return err
	}

	years := v.SeriesYears
	t := &textTable{
		title:   "Évolution du nombre total de faits par année",
		headers: []string{"Classe", "Dernier", "Tendance"},
		right:   map[int]bool{1: true},
	}
	for _, class := range v.Selected.Classes {
		vals, ok := v.Series[class]
		if !ok {
			continue
		}
		latest := "- -"
		if last := pipeline.LastValue(vals); !math.IsNaN(last) {
			latest = chart.FormatCount(int(last))
		}
		t.addRow(class, latest, sparkline(vals))
	}

	if len(years) > 0 {
		t.title += fmt.Sprintf("\n%d à %d (%d années)", years[0], years[len(years)-1], len(years))
	}
	_, err := fmt.Fprint(w, t.String())
	return err
}
