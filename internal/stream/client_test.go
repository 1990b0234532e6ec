package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func sseServer(t *testing.T, records ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != streamPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer does not support flushing")
		}
		for _, rec := range records {
			fmt.Fprint(w, rec)
			flusher.Flush()
		}
	}))
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("chunks then done", func(t *testing.T) {
		srv := sseServer(t,
			"data: {\"chunk\":\"Hel\"}\n\n",
			"data: {\"chunk\":\"lo\"}\n\n",
			"data: {\"chunk\":\"\",\"done\":true,\"chat_history\":[{\"role\":\"user\",\"content\":\"hi\"},{\"role\":\"assistant\",\"content\":\"Hello\"}]}\n\n",
		)
		defer srv.Close()

		client := NewClient(srv.URL)
		got := collect(t, client.Ingest(ctx, Request{Input: "hi"}))

		if len(got) != 3 {
			t.Fatalf("got %d events, want 3: %+v", len(got), got)
		}
		if got[0].Type != EventChunk || got[0].Chunk != "Hel" {
			t.Errorf("events[0] = %+v, want chunk Hel", got[0])
		}
		if got[1].Type != EventChunk || got[1].Chunk != "lo" {
			t.Errorf("events[1] = %+v, want chunk lo", got[1])
		}
		if got[2].Type != EventDone {
			t.Fatalf("events[2] = %+v, want done", got[2])
		}
		if len(got[2].History) != 2 || got[2].History[1].Content != "Hello" {
			t.Errorf("done history = %+v", got[2].History)
		}
		if got[2].History[0].Timestamp == 0 {
			t.Error("history timestamps not finalized")
		}
	})

	t.Run("records split mid fragment decode identically", func(t *testing.T) {
		srv := sseServer(t,
			"data: {\"chu",
			"nk\":\"Hello\"}\n\ndata: {\"do",
			"ne\":true}\n\n",
		)
		defer srv.Close()

		client := NewClient(srv.URL)
		got := collect(t, client.Ingest(ctx, Request{Input: "hi"}))

		if len(got) != 2 {
			t.Fatalf("got %d events, want 2: %+v", len(got), got)
		}
		if got[0].Type != EventChunk || got[0].Chunk != "Hello" {
			t.Errorf("events[0] = %+v, want chunk Hello", got[0])
		}
		if got[1].Type != EventDone {
			t.Errorf("events[1] = %+v, want done", got[1])
		}
	})

	t.Run("stream end without done yields bare done", func(t *testing.T) {
		srv := sseServer(t, "data: {\"chunk\":\"partial\"}\n\n")
		defer srv.Close()

		client := NewClient(srv.URL)
		got := collect(t, client.Ingest(ctx, Request{Input: "hi"}))

		if len(got) != 2 {
			t.Fatalf("got %d events, want 2: %+v", len(got), got)
		}
		last := got[len(got)-1]
		if last.Type != EventDone {
			t.Fatalf("last event = %+v, want done", last)
		}
		if last.History != nil {
			t.Errorf("History = %+v, want nil for a best-effort end", last.History)
		}
	})

	t.Run("non-2xx status yields StatusError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		got := collect(t, client.Ingest(ctx, Request{Input: "hi"}))

		if len(got) != 1 || got[0].Type != EventError {
			t.Fatalf("events = %+v, want one error event", got)
		}
		var statusErr *StatusError
		if !errors.As(got[0].Err, &statusErr) {
			t.Fatalf("Err = %v, want StatusError", got[0].Err)
		}
		if statusErr.StatusCode != http.StatusBadGateway {
			t.Errorf("StatusCode = %d, want 502", statusErr.StatusCode)
		}
	})

	t.Run("unreachable server yields transport error", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:0")
		got := collect(t, client.Ingest(ctx, Request{Input: "hi"}))

		if len(got) != 1 || got[0].Type != EventError {
			t.Fatalf("events = %+v, want one error event", got)
		}
		var statusErr *StatusError
		if errors.As(got[0].Err, &statusErr) {
			t.Errorf("Err = %v, transport failures must not be StatusError", got[0].Err)
		}
	})

	t.Run("non-streaming mode applies the full response as one done", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != completePath {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, `{"response":"Hello","chat_history":[{"role":"user","content":"hi"},{"role":"assistant","content":"Hello"}]}`)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, WithoutStreaming())
		got := collect(t, client.Ingest(ctx, Request{Input: "hi"}))

		if len(got) != 1 || got[0].Type != EventDone {
			t.Fatalf("events = %+v, want one done event", got)
		}
		if len(got[0].History) != 2 {
			t.Errorf("History len = %d, want 2", len(got[0].History))
		}
	})
}

func TestComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the finalized transcript", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"response":"ok","chat_history":[{"role":"user","content":"hi"},{"role":"assistant","content":"ok"}]}`)
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		history, err := client.Complete(ctx, Request{Input: "hi"})
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if len(history) != 2 {
			t.Fatalf("history len = %d, want 2", len(history))
		}
		if history[1].Timestamp == 0 {
			t.Error("timestamps not finalized")
		}
	})

	t.Run("rejected request returns StatusError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		_, err := client.Complete(ctx, Request{Input: "hi"})
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("error = %v, want StatusError", err)
		}
		if statusErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("StatusCode = %d, want 401", statusErr.StatusCode)
		}
	})
}
