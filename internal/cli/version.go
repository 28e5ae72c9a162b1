package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/intentwatch/internal/prompt"
)

const version = "0.1.0"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and built-in persona information",
	Run: func(cmd *cobra.Command, args []string) {
		personas := []string{}
		for _, p := range prompt.BuiltinPersonas() {
			personas = append(personas, p.ID)
		}
		info := map[string]any{
			"name":     "intentwatch",
			"version":  version,
			"personas": personas,
		}
		out, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(out))
	},
}
