package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/townscout/curator/pkg/analyze"
	"github.com/townscout/curator/pkg/audit"
	"github.com/townscout/curator/pkg/fields"
	"github.com/townscout/curator/pkg/suggest"
)

var (
	suggestGroup  string
	suggestFields []string
	suggestOut    string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <record-id>",
	Short: "Generate AI update suggestions for a record",
	Long: `Suggest analyzes a record, then asks the research collaborator
for a proposed value for each flagged field, one field at a time. Fields
where research fails still appear in the output, with a reason instead of
a value. Progress goes to stderr; suggestions go to stdout or --out as
JSON for review and later apply.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		recordID := args[0]

		catalog, err := buildCatalog()
		if err != nil {
			return err
		}
		records, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		researcher, err := buildResearcher(ctx, catalog)
		if err != nil {
			return err
		}

		record, err := records.GetRecord(ctx, recordID)
		if err != nil {
			return err
		}
		auditMap, err := audit.NewStore(records).Load(ctx, recordID)
		if err != nil {
			return err
		}

		flagged := analyze.New(catalog).Analyze(record, auditMap, fields.Group(suggestGroup), subsetOrNil(suggestFields))

		generator := suggest.New(catalog, researcher)
		suggestions, err := generator.Generate(ctx, record, flagged, func(p suggest.Progress) {
			fmt.Fprintf(os.Stderr, "Researching %d/%d: %s\n", p.Current, p.Total, p.Field)
		})
		if err != nil {
			// Cooperative cancellation: keep whatever was gathered.
			fmt.Fprintf(os.Stderr, "Generation stopped early: %v\n", err)
		}

		out := os.Stdout
		if suggestOut != "" {
			f, ferr := os.Create(suggestOut)
			if ferr != nil {
				return ferr
			}
			defer func() { _ = f.Close() }()
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(suggestions)
	},
}

func init() {
	suggestCmd.Flags().StringVar(&suggestGroup, "group", "critical", "curation group to research (critical or supplemental)")
	suggestCmd.Flags().StringSliceVar(&suggestFields, "fields", nil, "restrict research to these fields")
	suggestCmd.Flags().StringVar(&suggestOut, "out", "", "write suggestions to a file instead of stdout")
	rootCmd.AddCommand(suggestCmd)
}
