package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestListEmotions(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes the record list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != emotionsPath || r.Method != http.MethodGet {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, `[{"id":1,"content":"great day","date":"2026-08-29","sentiment":"positive"}]`)
		}))
		defer srv.Close()

		records, err := NewClient(srv.URL).ListEmotions(ctx)
		if err != nil {
			t.Fatalf("ListEmotions() error = %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0].Content != "great day" || records[0].Sentiment != "positive" {
			t.Errorf("record = %+v", records[0])
		}
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `[]`)
		}))
		defer srv.Close()

		records, err := NewClient(srv.URL).ListEmotions(ctx)
		if err != nil {
			t.Fatalf("ListEmotions() error = %v", err)
		}
		if records != nil {
			t.Errorf("records = %+v, want empty", records)
		}
		if got := calls.Load(); got != 3 {
			t.Errorf("backend called %d times, want 3", got)
		}
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).ListEmotions(ctx)
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("error = %v, want StatusError", err)
		}
		if statusErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
		}
		if got := calls.Load(); got != 1 {
			t.Errorf("backend called %d times, want 1", got)
		}
	})
}

func TestCreateFinance(t *testing.T) {
	ctx := context.Background()

	t.Run("posts the record and returns the stored version", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != financesPath || r.Method != http.MethodPost {
				http.NotFound(w, r)
				return
			}
			var rec Finance
			if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
				t.Errorf("decoding request: %v", err)
			}
			rec.ID = 7
			rec.CreatedAt = "2026-08-29T10:00:00"
			json.NewEncoder(w).Encode(rec) //nolint:errcheck
		}))
		defer srv.Close()

		created, err := NewClient(srv.URL).CreateFinance(ctx, Finance{
			Amount:      42.50,
			Category:    "expense",
			Subcategory: "food",
			Date:        "2026-08-29",
		})
		if err != nil {
			t.Fatalf("CreateFinance() error = %v", err)
		}
		if created.ID != 7 {
			t.Errorf("ID = %d, want the server-assigned id", created.ID)
		}
		if created.Amount != 42.50 {
			t.Errorf("Amount = %v, want 42.50", created.Amount)
		}
	})

	t.Run("writes are attempted once", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).CreateFinance(ctx, Finance{Amount: 1})
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("error = %v, want StatusError", err)
		}
		if got := calls.Load(); got != 1 {
			t.Errorf("backend called %d times, want exactly 1 for a write", got)
		}
	})
}

func TestDeleteSkill(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != skillsPath+"3" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if err := client.DeleteSkill(ctx, 3); err != nil {
		t.Fatalf("DeleteSkill() error = %v", err)
	}
	if err := client.DeleteSkill(ctx, 99); err == nil {
		t.Error("DeleteSkill(unknown) error = nil, want StatusError")
	}
}
