package chatadapter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brightloop-labs/directline-go/chatadapter"
	"github.com/brightloop-labs/directline-go/directline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turnEventChannel(acts []directline.Activity, err error) <-chan chatadapter.TurnEvent {
	ch := make(chan chatadapter.TurnEvent, len(acts)+1)
	for _, a := range acts {
		ch <- chatadapter.TurnEvent{Activity: a}
	}
	if err != nil {
		ch <- chatadapter.TurnEvent{Err: err}
	}
	close(ch)
	return ch
}

func collectStatuses(ch <-chan chatadapter.ConnectionStatus) (<-chan []chatadapter.ConnectionStatus, func()) {
	out := make(chan []chatadapter.ConnectionStatus, 1)
	var got []chatadapter.ConnectionStatus
	done := make(chan struct{})
	go func() {
		for s := range ch {
			got = append(got, s)
		}
		out <- got
		close(done)
	}()
	return out, func() { <-done }
}

// TestAdapter_ExecuteFailsSynchronously covers the façade failure-mode
// scenario: postActivity's underlying execute call fails synchronously,
// which errors the pending caller, transitions connectionStatus to
// FailedToConnect, and completes activity$ — with every later call
// returning the same cached error.
func TestAdapter_ExecuteFailsSynchronously(t *testing.T) {
	t.Parallel()

	start := func(ctx context.Context) (<-chan chatadapter.TurnEvent, chatadapter.ExecuteFunc, error) {
		initial := turnEventChannel(nil, nil)
		execute := func(ctx context.Context, a directline.Activity) (<-chan chatadapter.TurnEvent, error) {
			return nil, errors.New("artificial")
		}
		return initial, execute, nil
	}

	a := chatadapter.New(start)
	statusResult, waitStatus := collectStatuses(a.ConnectionStatus())

	var activities []directline.Activity
	activitiesDone := make(chan struct{})
	go func() {
		defer close(activitiesDone)
		for act := range a.Activities() {
			activities = append(activities, act)
		}
	}()

	go a.Run(context.Background())

	id, err := a.PostActivity(context.Background(), directline.NewActivity("message", map[string]any{"text": "Aloha!"}))
	require.Error(t, err)
	assert.Equal(t, "", id)
	assert.Contains(t, err.Error(), "artificial")

	waitStatus()
	<-activitiesDone

	assert.Equal(t, []chatadapter.ConnectionStatus{
		chatadapter.Uninitialized,
		chatadapter.Connecting,
		chatadapter.Online,
		chatadapter.FailedToConnect,
	}, <-statusResult)
	assert.Empty(t, activities)

	_, err2 := a.PostActivity(context.Background(), directline.NewActivity("message", nil))
	assert.Equal(t, err, err2)
}

// TestAdapter_HappyPath covers an initial turn and one posted turn, each
// carrying activities, observed in order on Activities().
func TestAdapter_HappyPath(t *testing.T) {
	t.Parallel()

	greeting := directline.NewActivity("message", map[string]any{"text": "hello"})
	reply := directline.NewActivity("message", map[string]any{"text": "hi yourself"})

	start := func(ctx context.Context) (<-chan chatadapter.TurnEvent, chatadapter.ExecuteFunc, error) {
		initial := turnEventChannel([]directline.Activity{greeting}, nil)
		execute := func(ctx context.Context, act directline.Activity) (<-chan chatadapter.TurnEvent, error) {
			return turnEventChannel([]directline.Activity{reply}, nil), nil
		}
		return initial, execute, nil
	}

	a := chatadapter.New(start)
	go a.Run(context.Background())

	first := <-a.Activities()
	assert.Equal(t, "hello", first["text"])

	id, err := a.PostActivity(context.Background(), directline.NewActivity("message", map[string]any{"text": "hi"}))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	second := <-a.Activities()
	assert.Equal(t, "hi yourself", second["text"])

	history := a.History()
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0]["text"])
	assert.Equal(t, "hi yourself", history[1]["text"])

	a.Stop()
}

// TestAdapter_StartFailure covers the start callable itself failing before
// any turn begins.
func TestAdapter_StartFailure(t *testing.T) {
	t.Parallel()

	start := func(ctx context.Context) (<-chan chatadapter.TurnEvent, chatadapter.ExecuteFunc, error) {
		return nil, nil, errors.New("could not connect")
	}

	a := chatadapter.New(start)
	statusResult, waitStatus := collectStatuses(a.ConnectionStatus())

	go a.Run(context.Background())
	waitStatus()

	assert.Equal(t, []chatadapter.ConnectionStatus{
		chatadapter.Uninitialized,
		chatadapter.Connecting,
		chatadapter.FailedToConnect,
	}, <-statusResult)

	_, err := a.PostActivity(context.Background(), directline.NewActivity("message", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not connect")
}

// TestAdapter_PostActivityAfterStop covers Stop causing subsequent posts to
// fail fast.
func TestAdapter_PostActivityAfterStop(t *testing.T) {
	t.Parallel()

	start := func(ctx context.Context) (<-chan chatadapter.TurnEvent, chatadapter.ExecuteFunc, error) {
		return turnEventChannel(nil, nil), nil, nil
	}

	a := chatadapter.New(start)
	statusCh := a.ConnectionStatus()
	go a.Run(context.Background())

	// Wait for Online, which is only emitted once Run has finished draining
	// the initial stream and is about to enter its select loop, so Stop
	// below cannot race ahead of it.
	for s := range statusCh {
		if s == chatadapter.Online {
			break
		}
	}

	a.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := a.PostActivity(ctx, directline.NewActivity("message", nil))
	assert.Error(t, err)
}
