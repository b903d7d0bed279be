package directline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/brightloop-labs/directline-go/internal/logger"
	"github.com/brightloop-labs/directline-go/internal/metrics"
)

// maxTurnIterations bounds the REST polling loop; a bot that never returns
// an action other than "continue" cannot wedge the engine forever.
const maxTurnIterations = 1000

// botResponse is the shape of a single REST hop's JSON body.
type botResponse struct {
	Action         string     `json:"action"`
	Activities     []Activity `json:"activities"`
	ConversationID string     `json:"conversationId,omitempty"`
}

type restTurnParams struct {
	operation            string
	httpClient           *http.Client
	retryConfig          RetryConfig
	reporter             ExceptionReporter
	prep                 StrategyRequestPrep
	body                 map[string]any
	getConversationID    func() string
	adoptConversationID  func(string)
}

// runRESTTurn drives the buffered REST polling loop: it posts the activity
// body on the first iteration, then polls with an empty body while the bot
// keeps returning action "continue", yielding activities as they arrive.
func runRESTTurn(ctx context.Context, p restTurnParams) <-chan TurnItem {
	out := make(chan TurnItem)
	go func() {
		defer close(out)

		start := time.Now()
		status := "success"
		defer func() {
			metrics.RecordTurnDuration("rest", status, time.Since(start).Seconds())
		}()

		withBody := true
		for i := 0; i < maxTurnIterations; i++ {
			convID := p.getConversationID()
			u, err := resolveConversationURL(p.prep.BaseURL, convID)
			if err != nil {
				status = "error"
				sendErr(ctx, out, wrapErr(p.operation, err))
				return
			}

			reqBody := map[string]any{}
			if withBody {
				reqBody = p.body
			}
			payload, err := json.Marshal(reqBody)
			if err != nil {
				status = "error"
				sendErr(ctx, out, wrapErr(p.operation, err))
				return
			}

			headers := cloneHeaders(p.prep.Headers)
			headers["content-type"] = "application/json"
			if convID != "" {
				headers["x-ms-conversationid"] = convID
			}

			metrics.RecordRESTHop(p.operation)
			resp, err := withRetry(ctx, p.operation, p.retryConfig, p.reporter, func() (*botResponse, error) {
				return doRESTHop(ctx, p.httpClient, u, payload, headers)
			})
			if err != nil {
				status = "error"
				sendErr(ctx, out, wrapErr(p.operation, err))
				return
			}

			p.adoptConversationID(resp.ConversationID)

			for _, a := range resp.Activities {
				select {
				case out <- TurnItem{Activity: a}:
				case <-ctx.Done():
					return
				}
			}

			if resp.Action != "continue" {
				return
			}
			withBody = false
		}
	}()
	return out
}

func doRESTHop(ctx context.Context, client *http.Client, u string, payload []byte, headers map[string]string) (*botResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	logger.TurnRequest(ctx, "rest", http.MethodPost, u, headers)

	resp, err := client.Do(req)
	if err != nil {
		logger.TurnResponse(ctx, "rest", 0, 0, err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.TurnResponse(ctx, "rest", resp.StatusCode, 0, err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Status: resp.StatusCode, Reason: fmt.Sprintf("Server returned %d", resp.StatusCode)}
		logger.TurnResponse(ctx, "rest", resp.StatusCode, len(body), statusErr)
		return nil, statusErr
	}

	logger.TurnResponse(ctx, "rest", resp.StatusCode, len(body), nil)

	var parsed botResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &StatusError{Status: resp.StatusCode, Reason: "unexpected response shape: " + err.Error()}
	}

	// An action value outside {"continue", "waiting"} is not explicitly
	// specified; this treats anything unrecognized as terminal rather than
	// looping against a bot that will never say "continue" again.
	if parsed.Action != "continue" && parsed.Action != "waiting" {
		logger.WarnContext(ctx, "unrecognized bot action, treating as terminal", "action", parsed.Action)
	}

	return &parsed, nil
}
