package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zalepa/delinquance/report"
)

var (
	reportOut        string
	reportClasses    []string
	reportYear       int
	reportYears      []int
	reportDepartment string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write every dashboard view to a multi-page PDF",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDashboard(cache, cfg, logger)
		if err != nil {
			return err
		}
		opts := report.Options{Classes: reportClasses, Year: reportYear, Years: reportYears, Department: reportDepartment}
		pages, err := report.WriteFile(reportOut, d, opts)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		if err := report.Verify(reportOut, pages); err != nil {
			return fmt.Errorf("verify report: %w", err)
		}
		logger.Info("report written", zap.String("path", reportOut), zap.Int("pages", pages))
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d pages)\n", reportOut, pages)
		return nil
	},
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportOut, "output", "o", "delinquance.pdf", "output PDF")
	f.StringSliceVarP(&reportClasses, "class", "c", nil, "infraction classes (default: all)")
	f.IntVarP(&reportYear, "year", "y", 0, "year of the scatter and pie charts (default: latest)")
	f.IntSliceVar(&reportYears, "years", nil, "years of the scatter chart (default: --year)")
	f.StringVarP(&reportDepartment, "department", "d", "", "add the pie and ranking pages of this department")
}
