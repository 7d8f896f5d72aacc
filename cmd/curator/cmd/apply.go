package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/townscout/curator/pkg/apply"
	"github.com/townscout/curator/pkg/audit"
	"github.com/townscout/curator/pkg/normalize"
)

var applyFile string

var applyCmd = &cobra.Command{
	Use:   "apply <record-id>",
	Short: "Apply approved field changes to the record store",
	Long: `Apply reads a changes file (the reviewed output of suggest,
with per-field final_value and status filled in) and writes the eligible
subset to the record store sequentially, in file order. Only approved
fields whose final value differs from the stored value are written;
everything else is skipped. Failures are reported per field and never
abort the remaining fields.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		recordID := args[0]

		data, err := os.ReadFile(applyFile)
		if err != nil {
			return err
		}
		var changes []apply.Change
		if err := json.Unmarshal(data, &changes); err != nil {
			return fmt.Errorf("parsing changes file %s: %w", applyFile, err)
		}

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

		engine := apply.New(records, audit.NewStore(records), normalize.New(catalog))

		// Hydration classifies already-completed edits as applied so a
		// re-run of the same changes file is a no-op for them.
		if _, err := engine.Hydrate(ctx, recordID, record); err != nil {
			return err
		}

		// Changes without an explicit current value compare against the
		// live record.
		for i := range changes {
			if changes[i].CurrentValue == nil {
				changes[i].CurrentValue = record[changes[i].Field]
			}
		}

		result := engine.ApplyBulk(ctx, recordID, changes)
		for _, outcome := range result.Outcomes {
			if outcome.Err != nil {
				fmt.Printf("FAILED  %s: %v\n", outcome.Field, outcome.Err)
				continue
			}
			fmt.Printf("applied %s\n", outcome.Field)
		}
		fmt.Printf("\n%d applied, %d failed, %d skipped\n", result.Applied, result.Failed, result.Skipped)

		if result.Failed > 0 {
			return fmt.Errorf("%d fields failed to apply", result.Failed)
		}
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "changes file (JSON array of field changes)")
	_ = applyCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(applyCmd)
}
