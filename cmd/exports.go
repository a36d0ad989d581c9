package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/viktsys/woolauction/ingest"
)

var exportOpts struct {
	categories []string
	countries  []string
	from, to   int
	groupBy    string
}

var exportsCMD = &cobra.Command{
	Use:   "exports [file...]",
	Short: "Print a summary of trade export files as JSON",
	Long:  `Load export CSV files from exports.data_dir without touching the database and print the summary with category, country and month totals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		loader := ingest.NewLoader(cfg.Exports.DataDir, cfg.Exports.FileWorkers, log)
		rows, err := loader.Load(cmd.Context(), args, ingest.Options{
			Categories: exportOpts.categories,
			Countries:  exportOpts.countries,
			MonthFrom:  exportOpts.from,
			MonthTo:    exportOpts.to,
		})
		if err != nil {
			return err
		}
		byCategory, err := ingest.ByCategory(rows, exportOpts.groupBy)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"summary":     ingest.Summarize(rows),
			"by_category": byCategory,
			"by_country":  ingest.ByCountry(rows),
			"by_month":    ingest.ByMonth(rows),
		})
	},
}

func init() {
	f := exportsCMD.Flags()
	f.StringSliceVar(&exportOpts.categories, "category", nil, "wool categories to include")
	f.StringSliceVar(&exportOpts.countries, "country", nil, "countries to include")
	f.IntVar(&exportOpts.from, "from", 0, "first month, YYYYMM")
	f.IntVar(&exportOpts.to, "to", 0, "last month, YYYYMM")
	f.StringVar(&exportOpts.groupBy, "group-by", "wool_category", "wool_category, processing_stage or micron_range")
}
