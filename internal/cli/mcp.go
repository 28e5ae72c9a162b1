package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	iwmcp "github.com/ppiankov/intentwatch/internal/mcp"
)

var (
	mcpConfig  string
	mcpPersona string
	mcpAPIURL  string
	mcpAPIKey  string
	mcpModel   string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpConfig, "config", "", "Path to copilot YAML config")
	mcpCmd.Flags().StringVar(&mcpPersona, "persona", "", "Assistant persona (e.g., advisor)")
	mcpCmd.Flags().StringVar(&mcpAPIURL, "api-url", "", "Generation API endpoint (defaults to $INTENTWATCH_API_URL)")
	mcpCmd.Flags().StringVar(&mcpAPIKey, "api-key", "", "Generation API key (defaults to $INTENTWATCH_API_KEY)")
	mcpCmd.Flags().StringVar(&mcpModel, "model", "", "Generation model name")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for host integration",
	Long:  "Runs intentwatch as an MCP (Model Context Protocol) server over stdio.\nExposes the copilot tools: submit, extract, audit_tail, audit_verify,\nvault_store, vault_get.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	apiURL := mcpAPIURL
	if apiURL == "" {
		apiURL = os.Getenv("INTENTWATCH_API_URL")
	}
	apiKey := mcpAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("INTENTWATCH_API_KEY")
	}

	srv, err := iwmcp.New(iwmcp.Config{
		ConfigPath: mcpConfig,
		PersonaID:  mcpPersona,
		APIURL:     apiURL,
		APIKey:     apiKey,
		Model:      mcpModel,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "intentwatch MCP server running on stdio")
	if mcpPersona != "" {
		fmt.Fprintf(os.Stderr, "Persona: %s\n", mcpPersona)
	}
	fmt.Fprintln(os.Stderr)

	return srv.Run(ctx)
}
