package directline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/brightloop-labs/directline-go/internal/logger"
	"github.com/brightloop-labs/directline-go/internal/metrics"
)

var sseContentType = regexp.MustCompile(`^text/event-stream(;|$)`)

type sseTurnParams struct {
	operation            string
	httpClient           *http.Client
	retryConfig          RetryConfig
	reporter             ExceptionReporter
	prep                 StrategyRequestPrep
	body                 map[string]any
	getConversationID    func() string
	adoptConversationID  func(string)
}

// runSSETurn opens a single long-lived SSE stream and parses activity/end
// events from it until the stream is exhausted, the bot sends an explicit
// "end" event, or an error terminates the turn.
func runSSETurn(ctx context.Context, p sseTurnParams) <-chan TurnItem {
	out := make(chan TurnItem)
	go func() {
		defer close(out)

		start := time.Now()
		status := "success"
		defer func() {
			metrics.RecordTurnDuration("sse", status, time.Since(start).Seconds())
		}()

		convID := p.getConversationID()
		u, err := resolveConversationURL(p.prep.BaseURL, convID)
		if err != nil {
			status = "error"
			sendErr(ctx, out, wrapErr(p.operation, err))
			return
		}

		payload, err := json.Marshal(p.body)
		if err != nil {
			status = "error"
			sendErr(ctx, out, wrapErr(p.operation, err))
			return
		}

		headers := cloneHeaders(p.prep.Headers)
		headers["accept"] = "text/event-stream"
		headers["content-type"] = "application/json"
		if convID != "" {
			headers["x-ms-conversationid"] = convID
		}

		opened, err := withRetry(ctx, p.operation, p.retryConfig, p.reporter, func() (*sseOpen, error) {
			return openSSE(ctx, p.httpClient, u, payload, headers)
		})
		if err != nil {
			status = "error"
			sendErr(ctx, out, wrapErr(p.operation, err))
			return
		}
		defer opened.body.Close()

		consumeSSE(ctx, p.operation, opened.body, out, p.adoptConversationID)
	}()
	return out
}

type sseOpen struct {
	body io.ReadCloser
}

// peekedBody wraps an already-buffered reader so the caller that peeked at
// the stream to check for an empty body can still Close the original body.
type peekedBody struct {
	*bufio.Reader
	closer io.Closer
}

func (p *peekedBody) Close() error { return p.closer.Close() }

func openSSE(ctx context.Context, client *http.Client, u string, payload []byte, headers map[string]string) (*sseOpen, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	logger.TurnRequest(ctx, "sse", http.MethodPost, u, headers)

	resp, err := client.Do(req)
	if err != nil {
		logger.TurnResponse(ctx, "sse", 0, 0, err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		statusErr := &StatusError{Status: resp.StatusCode, Reason: fmt.Sprintf("Server returned %d", resp.StatusCode)}
		logger.TurnResponse(ctx, "sse", resp.StatusCode, 0, statusErr)
		return nil, statusErr
	}

	ct := resp.Header.Get("Content-Type")
	if !sseContentType.MatchString(ct) {
		_ = resp.Body.Close()
		statusErr := &StatusError{Status: resp.StatusCode, Reason: fmt.Sprintf("Server did not respond with content type of text/event-stream, got %q", ct)}
		logger.TurnResponse(ctx, "sse", resp.StatusCode, 0, statusErr)
		return nil, statusErr
	}

	peek := bufio.NewReader(resp.Body)
	if _, err := peek.Peek(1); err != nil {
		_ = resp.Body.Close()
		if errors.Is(err, io.EOF) {
			statusErr := &StatusError{Status: resp.StatusCode, Reason: "Server did not respond with body."}
			logger.TurnResponse(ctx, "sse", resp.StatusCode, 0, statusErr)
			return nil, statusErr
		}
		logger.TurnResponse(ctx, "sse", resp.StatusCode, 0, err)
		return nil, err
	}

	logger.TurnResponse(ctx, "sse", resp.StatusCode, 0, nil)
	return &sseOpen{body: &peekedBody{Reader: peek, closer: resp.Body}}, nil
}

// consumeSSE reads line-delimited SSE events from r, dispatching "activity"
// events as turn items and treating "end" as a clean terminator. Any other
// event name is ignored. Reaching end-of-stream without ever seeing an
// "end" event also terminates the turn cleanly, with no error.
func consumeSSE(ctx context.Context, operation string, r io.Reader, out chan<- TurnItem, adopt func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var eventName string
	var data strings.Builder

	emit := func() bool {
		defer func() {
			eventName = ""
			data.Reset()
		}()

		switch eventName {
		case "activity":
			var a Activity
			if err := json.Unmarshal([]byte(data.String()), &a); err != nil {
				sendErr(ctx, out, wrapErr(operation, fmt.Errorf("sse activity decode: %w", err)))
				return false
			}
			adopt(a.ConversationID())
			select {
			case out <- TurnItem{Activity: a}:
				return true
			case <-ctx.Done():
				return false
			}
		case "end":
			return false
		default:
			return true
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, ":"):
			continue
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			appendSSEDataLine(&data, line)
		case line == "" && data.Len() > 0:
			if !emit() {
				return
			}
		}
	}

	if data.Len() > 0 {
		emit()
	}
}

func appendSSEDataLine(buf *strings.Builder, line string) {
	d := line[len("data:"):]
	if d != "" && d[0] == ' ' {
		d = d[1:]
	}
	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString(d)
}
