// Command directline-demo drives a DirectLine-compatible bot from the
// terminal: it starts a conversation, prints every activity the bot sends
// back, and relays each line of stdin as a user turn.
//
// Usage:
//
//	export DIRECTLINE_SECRET=...
//	go run ./cmd/directline-demo -base https://directline.botframework.com/v3/directline/
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brightloop-labs/directline-go/chatadapter"
	"github.com/brightloop-labs/directline-go/directline"
	"github.com/brightloop-labs/directline-go/internal/config"
	"github.com/brightloop-labs/directline-go/internal/logger"
	"github.com/brightloop-labs/directline-go/internal/metrics"
	"github.com/brightloop-labs/directline-go/internal/telemetry"
)

// tokenStrategy is the simplest possible Strategy: a single bearer token
// attached to every hop, against a fixed base URL. Real integrations that
// need to mint short-lived tokens per turn would implement Strategy
// themselves instead.
type tokenStrategy struct {
	baseURL   string
	token     string
	transport directline.Transport
}

func (s *tokenStrategy) prep() directline.StrategyRequestPrep {
	return directline.StrategyRequestPrep{
		BaseURL:   s.baseURL,
		Headers:   map[string]string{"Authorization": "Bearer " + s.token},
		Transport: s.transport,
	}
}

func (s *tokenStrategy) PrepareStartNewConversation(ctx context.Context) (directline.StrategyRequestPrep, error) {
	return s.prep(), nil
}

func (s *tokenStrategy) PrepareExecuteTurn(ctx context.Context) (directline.StrategyRequestPrep, error) {
	return s.prep(), nil
}

func main() {
	var (
		baseURL      = flag.String("base", "https://directline.botframework.com/v3/directline/", "DirectLine base URL")
		transport    = flag.String("transport", "rest", "transport to use: rest or server-sent-events")
		verbose      = flag.Bool("v", false, "enable debug logging")
		otlpEndpoint = flag.String("otlp-endpoint", "", "OTLP/HTTP endpoint for exception-reporting spans (tracing disabled if empty)")
		metricsAddr  = flag.String("metrics-addr", "", "address to serve Prometheus metrics on, e.g. :9090 (disabled if empty)")
	)
	flag.Parse()
	logger.SetVerbose(*verbose)

	token := os.Getenv("DIRECTLINE_SECRET")
	if token == "" {
		fmt.Fprintln(os.Stderr, "DIRECTLINE_SECRET must be set")
		os.Exit(1)
	}

	cfg := config.Default()

	if *metricsAddr != "" {
		exporter := metrics.NewExporter(*metricsAddr)
		go func() {
			if err := exporter.Start(); err != nil {
				logger.Error("metrics exporter stopped", "error", err)
			}
		}()
	}

	engineOpts := []directline.Option{
		directline.WithHTTPClient(cfg.ToHTTPClient()),
		directline.WithRetryConfig(cfg.Retry.ToEngineRetryConfig()),
	}

	if *otlpEndpoint != "" {
		telemetry.SetupPropagation()
		tp, err := telemetry.NewTracerProvider(context.Background(), *otlpEndpoint, "directline-demo")
		if err != nil {
			fmt.Fprintf(os.Stderr, "set up tracer provider: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("tracer provider shutdown failed", "error", err)
			}
		}()
		engineOpts = append(engineOpts, directline.WithExceptionReporter(telemetry.NewSpanExceptionReporter(tp)))
	}

	strategy := &tokenStrategy{
		baseURL:   *baseURL,
		token:     token,
		transport: directline.Transport(*transport),
	}
	engine := directline.New(strategy, engineOpts...)

	adapter := chatadapter.New(chatadapter.NewEngineStarter(engine, true))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go adapter.Run(ctx)
	go printActivities(adapter)
	go printStatus(adapter)

	readStdin(ctx, adapter)
}

func printActivities(adapter *chatadapter.Adapter) {
	for activity := range adapter.Activities() {
		if text, ok := activity["text"].(string); ok && text != "" {
			fmt.Printf("bot> %s\n", text)
			continue
		}
		fmt.Printf("bot> [%s activity]\n", activity.Type())
	}
}

func printStatus(adapter *chatadapter.Adapter) {
	for status := range adapter.ConnectionStatus() {
		logger.Debug("connection status changed", "status", status.String())
	}
}

func readStdin(ctx context.Context, adapter *chatadapter.Adapter) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		activity := directline.NewActivity("message", map[string]any{"text": line})
		if _, err := adapter.PostActivity(ctx, activity); err != nil {
			fmt.Fprintf(os.Stderr, "post activity: %v\n", err)
			return
		}
	}
}
