package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/townscout/curator/pkg/analyze"
	"github.com/townscout/curator/pkg/audit"
	"github.com/townscout/curator/pkg/fields"
)

var (
	analyzeGroup  string
	analyzeFields []string
	analyzeAsJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <record-id>",
	Short: "List record fields needing curation attention",
	Long: `Analyze scans a record against its audit state and prints the
prioritized list of fields that are empty, placeholder-like, or held with
low confidence. Highest priority first.`,
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

		record, err := records.GetRecord(ctx, recordID)
		if err != nil {
			return err
		}
		auditMap, err := audit.NewStore(records).Load(ctx, recordID)
		if err != nil {
			return err
		}

		flagged := analyze.New(catalog).Analyze(record, auditMap, fields.Group(analyzeGroup), subsetOrNil(analyzeFields))

		if analyzeAsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(flagged)
		}

		if len(flagged) == 0 {
			fmt.Println("No fields need updating. This record looks complete!")
			return nil
		}
		fmt.Printf("Found %d fields that need attention:\n\n", len(flagged))
		for _, f := range flagged {
			fmt.Printf("%-55s priority %2d  %s\n", catalog.DisplayName(f.Name), f.Weight, f.Reason)
			fmt.Printf("    %s\n", catalog.Explanation(f.Name))
		}
		return nil
	},
}

func subsetOrNil(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	return names
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeGroup, "group", "", "filter to a curation group (critical or supplemental)")
	analyzeCmd.Flags().StringSliceVar(&analyzeFields, "fields", nil, "restrict analysis to these fields")
	analyzeCmd.Flags().BoolVar(&analyzeAsJSON, "json", false, "emit JSON")
	rootCmd.AddCommand(analyzeCmd)
}
