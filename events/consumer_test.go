package events

import (
	"context"
	"errors"
	"testing"
)

func TestTypedHandlerProcessesValidMessage(t *testing.T) {
	var got *RunRequest
	handler := &TypedMessageHandler[RunRequest]{
		Process: func(ctx context.Context, msg *RunRequest) error {
			got = msg
			return nil
		},
	}

	mark, err := handler.HandleMessage(context.Background(), []byte(`{"topic":"volcano lightning","publish":true}`))
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !mark {
		t.Error("expected successful message to be marked")
	}
	if got == nil || got.Topic != "volcano lightning" || !got.Publish {
		t.Errorf("unexpected decoded request: %+v", got)
	}
}

func TestTypedHandlerSkipsInvalidJSON(t *testing.T) {
	processed := false
	handler := &TypedMessageHandler[RunRequest]{
		Process: func(ctx context.Context, msg *RunRequest) error {
			processed = true
			return nil
		},
		AlwaysMark: true,
	}

	mark, err := handler.HandleMessage(context.Background(), []byte(`{not json`))
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !mark {
		t.Error("expected invalid message to be marked when AlwaysMark is set")
	}
	if processed {
		t.Error("expected Process to be skipped for invalid JSON")
	}
}

func TestTypedHandlerRetriesInvalidJSONWithoutAlwaysMark(t *testing.T) {
	handler := &TypedMessageHandler[RunRequest]{
		Process: func(ctx context.Context, msg *RunRequest) error { return nil },
	}

	mark, err := handler.HandleMessage(context.Background(), []byte(`{not json`))
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if mark {
		t.Error("expected invalid message to stay unmarked")
	}
}

func TestTypedHandlerValidationFailure(t *testing.T) {
	processed := false
	handler := &TypedMessageHandler[RunRequest]{
		Validate: func(msg *RunRequest) bool { return msg.Topic != "" },
		Process: func(ctx context.Context, msg *RunRequest) error {
			processed = true
			return nil
		},
		AlwaysMark: true,
	}

	mark, err := handler.HandleMessage(context.Background(), []byte(`{"source_url":"https://example.com"}`))
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if !mark {
		t.Error("expected rejected message to be marked when AlwaysMark is set")
	}
	if processed {
		t.Error("expected Process to be skipped when validation fails")
	}
}

func TestTypedHandlerProcessErrorLeavesUnmarked(t *testing.T) {
	handler := &TypedMessageHandler[RunRequest]{
		Process: func(ctx context.Context, msg *RunRequest) error {
			return errors.New("pipeline busy")
		},
	}

	mark, err := handler.HandleMessage(context.Background(), []byte(`{"topic":"auroras"}`))
	if err == nil {
		t.Fatal("expected processing error to surface")
	}
	if mark {
		t.Error("expected failed message to stay unmarked for retry")
	}
}
