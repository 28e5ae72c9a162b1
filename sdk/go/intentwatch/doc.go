// Package intentwatch embeds the copilot pipeline in a Go host
// application. It turns free-form user requests into generation calls,
// extracts at most one typed action command from each response, routes
// it to a host-registered handler, and records every decision in a
// tamper-evident hash-chained audit ledger.
//
// Usage:
//
//	iw, err := intentwatch.New(
//	    intentwatch.WithGenerationClient(client),
//	    intentwatch.WithHandler(intentwatch.Navigate, func(ctx context.Context, payload map[string]any) (any, error) {
//	        return router.Go(payload["view"].(string)), nil
//	    }),
//	)
//	res, err := iw.Submit(ctx, "take me to transfers")
//	fmt.Println(res.Prose)
//
// The SDK links directly against internal packages for zero-subprocess
// overhead. External users import github.com/ppiankov/intentwatch/sdk/go/intentwatch.
package intentwatch
