package hrapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"attendance.service/internal/ports/messaging"
)

func TestHTTPClient_RecordCheckOut(t *testing.T) {
	t.Parallel()

	var (
		gotKey   string
		gotEvent messaging.CheckOutEvent
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotEvent)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	err := c.RecordCheckOut(context.Background(), messaging.CheckOutEvent{AttendanceID: "rec-1", UserID: "user-1", TotalHours: 7.5})
	if err != nil {
		t.Fatalf("RecordCheckOut returned error: %v", err)
	}
	if gotKey != "rec-1" {
		t.Fatalf("unexpected idempotency key %q", gotKey)
	}
	if gotEvent.UserID != "user-1" || gotEvent.TotalHours != 7.5 {
		t.Fatalf("unexpected payload %+v", gotEvent)
	}
}

func TestHTTPClient_RecordCheckOut_StatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.URL).RecordCheckOut(context.Background(), messaging.CheckOutEvent{AttendanceID: "rec-1"})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
	if statusErr.Permanent() {
		t.Fatal("503 must be retried")
	}
}
