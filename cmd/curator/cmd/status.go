package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/townscout/curator/pkg/audit"
)

var (
	statusCycle      bool
	statusFinalValue string
)

var statusCmd = &cobra.Command{
	Use:   "status <record-id> <field> [new-status]",
	Short: "Show or change a field's review status",
	Long: `Status shows a field's audit entry, or persists a new review
status (unknown, needs_review, approved, rejected). With --cycle the
status advances to the next state instead. A final value may be recorded
alongside the status change without affecting it.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		recordID, fieldName := args[0], args[1]

		records, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		audits := audit.NewStore(records)
		auditMap, err := audits.Load(ctx, recordID)
		if err != nil {
			return err
		}
		current := auditMap.Status(fieldName)

		var next audit.Status
		switch {
		case statusCycle:
			next = audit.NextStatus(current)
		case len(args) == 3:
			next = audit.Status(args[2])
		default:
			entry := auditMap[fieldName]
			fmt.Printf("field:       %s\n", fieldName)
			fmt.Printf("status:      %s\n", current)
			fmt.Printf("confidence:  %s %s\n", entry.Confidence.Icon(), auditMap.Confidence(fieldName))
			if entry.FinalValue != nil {
				fmt.Printf("final value: %v\n", entry.FinalValue)
			}
			if entry.AppliedAt != nil {
				fmt.Printf("applied at:  %s\n", entry.AppliedAt)
			}
			return nil
		}

		patch := audit.Patch{}
		if statusFinalValue != "" {
			patch.FinalValue = audit.Ptr[any](statusFinalValue)
		}

		entry, err := audits.SaveStatus(ctx, recordID, fieldName, next, patch)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s -> %s\n", fieldName, current, entry.Status)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusCycle, "cycle", false, "advance to the next review status")
	statusCmd.Flags().StringVar(&statusFinalValue, "final-value", "", "record this final value with the status change")
	rootCmd.AddCommand(statusCmd)
}
