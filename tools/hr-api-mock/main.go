package main

import (
	"encoding/json"
	"flag"
	"math/rand/v2"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// checkOutEvent captures the fields of the incoming event the mock cares about.
type checkOutEvent struct {
	AttendanceID string    `json:"attendanceId"`
	UserID       string    `json:"userId"`
	Date         string    `json:"date"`
	TotalHours   float64   `json:"totalHours"`
	Status       string    `json:"status"`
	CheckOutTime time.Time `json:"checkOutTime"`
}

type store struct {
	mu       sync.Mutex
	received map[string]checkOutEvent
}

func main() {
	addr := flag.String("addr", ":8081", "listen address")
	failRate := flag.Float64("fail-rate", 0, "fraction of requests answered with 503, to exercise the circuit breaker")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	s := &store{received: make(map[string]checkOutEvent)}

	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if *failRate > 0 && rand.Float64() < *failRate {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		var event checkOutEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil || event.AttendanceID == "" {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		_, duplicate := s.received[event.AttendanceID]
		s.received[event.AttendanceID] = event
		s.mu.Unlock()

		log.Info().
			Str("attendance_id", event.AttendanceID).
			Str("user_id", event.UserID).
			Float64("total_hours", event.TotalHours).
			Bool("duplicate", duplicate).
			Msg("Received checkout")
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPost)

	r.HandleFunc("/received", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"count": len(s.received)})
	}).Methods(http.MethodGet)

	log.Info().Str("addr", *addr).Msg("HR API mock server starting")
	log.Fatal().Err(http.ListenAndServe(*addr, r)).Msg("HR API mock stopped")
}
