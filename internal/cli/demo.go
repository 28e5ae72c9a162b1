package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/intentwatch/internal/genclient"
	intentwatch "github.com/ppiankov/intentwatch/sdk/go/intentwatch"
)

var (
	demoConfig  string
	demoPersona string
	demoAPIURL  string
	demoAPIKey  string
	demoModel   string
	demoExport  string
)

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVar(&demoConfig, "config", "", "Path to copilot YAML config")
	demoCmd.Flags().StringVar(&demoPersona, "persona", "", "Assistant persona (e.g., advisor)")
	demoCmd.Flags().StringVar(&demoAPIURL, "api-url", "", "Generation API endpoint; omit for a canned offline model")
	demoCmd.Flags().StringVar(&demoAPIKey, "api-key", "", "Generation API key (defaults to $INTENTWATCH_API_KEY)")
	demoCmd.Flags().StringVar(&demoModel, "model", "", "Generation model name")
	demoCmd.Flags().StringVar(&demoExport, "export", "", "Write the audit ledger to this JSONL file on exit")
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Interactive copilot session in the terminal",
	Long:  "Reads user turns from stdin, runs each through the full pipeline, and\nprints the prose reply plus any dispatched action. Without --api-url a\ncanned offline model answers, so the demo needs no network.",
	RunE:  runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	opts := []intentwatch.Option{
		intentwatch.WithConfig(demoConfig),
		intentwatch.WithPersona(demoPersona),
		intentwatch.WithActor("demo"),
		intentwatch.WithHandlers(demoHandlers()),
	}

	if demoAPIURL != "" {
		apiKey := demoAPIKey
		if apiKey == "" {
			apiKey = os.Getenv("INTENTWATCH_API_KEY")
		}
		client, err := genclient.NewHTTPClient(genclient.HTTPConfig{
			APIURL: demoAPIURL,
			APIKey: apiKey,
			Model:  demoModel,
		})
		if err != nil {
			return fmt.Errorf("failed to create generation client: %w", err)
		}
		opts = append(opts, intentwatch.WithGenerationClient(client))
	} else {
		opts = append(opts, intentwatch.WithGenerationClient(&genclient.Mock{ReplyFn: cannedReply}))
	}

	iw, err := intentwatch.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create copilot: %w", err)
	}
	defer iw.Close()

	fmt.Println("intentwatch demo. Type a request, 'audit' for the ledger, 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return demoFinish(iw)
		case "audit":
			for _, e := range iw.AuditTail(10) {
				fmt.Printf("  %s  %-24s sev=%-8s %s\n", e.Timestamp, e.Action, e.Severity, e.IntegrityHash[:16])
			}
			continue
		}

		res, err := iw.Submit(context.Background(), line)
		if err != nil {
			return err
		}
		fmt.Println(res.Prose)
		if res.Dispatched != nil {
			fmt.Printf("  [dispatched %s]\n", *res.Dispatched)
		}
		if res.TransportFailed {
			fmt.Println("  [transport failed]")
		}
	}
	return demoFinish(iw)
}

func demoFinish(iw *intentwatch.Client) error {
	vr := iw.AuditVerify()
	if vr.Valid {
		fmt.Printf("audit chain OK: %d entries\n", vr.Entries)
	} else {
		fmt.Fprintf(os.Stderr, "audit chain FAILED: %s\n", vr.Error)
	}
	if demoExport != "" {
		f, err := os.Create(demoExport)
		if err != nil {
			return fmt.Errorf("create export: %w", err)
		}
		defer f.Close()
		if err := iw.AuditExport(f); err != nil {
			return fmt.Errorf("export ledger: %w", err)
		}
		fmt.Printf("ledger exported to %s\n", demoExport)
	}
	return nil
}

// demoHandlers prints each dispatched action instead of driving a UI.
func demoHandlers() map[intentwatch.ActionType]intentwatch.Handler {
	show := func(name string) intentwatch.Handler {
		return func(ctx context.Context, payload map[string]any) (any, error) {
			out, _ := json.Marshal(payload)
			fmt.Printf("  [%s %s]\n", name, out)
			return nil, nil
		}
	}
	return map[intentwatch.ActionType]intentwatch.Handler{
		intentwatch.Navigate:        show("navigate"),
		intentwatch.OpenModal:       show("open modal"),
		intentwatch.InitiatePayment: show("initiate payment"),
		intentwatch.CreateRecord:    show("create record"),
		intentwatch.LogEvent:        show("log event"),
	}
}

// cannedReply fakes a model for offline demos: a handful of keyword
// rules emit action commands the way a tuned model would.
func cannedReply(prompt string) string {
	// The live user turn is the last line of the recent_turns field.
	turn := prompt
	if i := strings.LastIndex(prompt, "user: "); i >= 0 {
		turn = prompt[i+len("user: "):]
		if j := strings.IndexByte(turn, '"'); j >= 0 {
			turn = turn[:j]
		}
	}
	low := strings.ToLower(turn)

	switch {
	case strings.Contains(low, "transfer"), strings.Contains(low, "go to"):
		return `Taking you there now. {"action":"NAVIGATE","payload":{"view":"transfers"}}`
	case strings.Contains(low, "settings"):
		return `Here you go. {"action":"OPEN_MODAL","payload":{"modal":"settings"}}`
	case strings.Contains(low, "pay"):
		return `Starting that payment for you. {"action":"INITIATE_PAYMENT","payload":{"amount":25.00,"recipient":"demo-account"}}`
	case strings.Contains(low, "note"), strings.Contains(low, "record"):
		return `Saved. {"action":"CREATE_RECORD","payload":{"entity":"note","fields":{"text":"demo"}}}`
	default:
		return "I can navigate, open settings, start payments, or save records. What would you like?"
	}
}
