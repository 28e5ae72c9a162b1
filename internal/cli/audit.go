package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/intentwatch/internal/ledger"
)

var tailLines int

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of recent entries to show")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit ledger operations",
	Long:  "Commands for verifying and inspecting exported audit ledgers.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify hash chain integrity of an exported ledger",
	Long:  "Walks the JSONL export and validates that every entry's prev_hash and\nintegrity_hash recompute correctly. Exits 0 if valid, 1 if tampered.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail <path>",
	Short: "Show recent entries from an exported ledger",
	Long:  "Reads the last N entries from the JSONL export and pretty-prints them.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditTail,
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	result := ledger.VerifyFile(args[0])
	if result.Valid {
		fmt.Printf("OK: %d entries verified\n", result.Entries)
		return nil
	}
	fmt.Fprintf(os.Stderr, "FAILED at entry %d: %s\n", result.ErrorIndex, result.Error)
	os.Exit(1)
	return nil
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	entries, err := ledger.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read ledger export: %w", err)
	}

	start := len(entries) - tailLines
	if tailLines <= 0 || start < 0 {
		start = 0
	}
	// Newest last on screen, like tail(1).
	for _, e := range entries[start:] {
		out, err := json.MarshalIndent(e, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	return nil
}
