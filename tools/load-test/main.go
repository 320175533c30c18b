package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// The load test registers employees, then fires concurrent check-ins for each of
// them. Exactly one check-in per employee must succeed; the rest must be rejected.

type authResponse struct {
	Token string `json:"token"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "API base URL")
	numEmployees := flag.Int("employees", 500, "number of employees to register")
	racers := flag.Int("racers", 4, "concurrent check-ins per employee")
	concurrency := flag.Int("concurrency", 50, "concurrent employees")
	flag.Parse()

	client := &http.Client{Timeout: 30 * time.Second}
	run := time.Now().UnixNano()

	fmt.Printf("Starting load test: %d employees (%d racing check-ins each) against %s with concurrency %d\n",
		*numEmployees, *racers, *baseURL, *concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, *concurrency)

	var accepted, rejected, failed, violations int64

	startTime := time.Now()

	for i := 0; i < *numEmployees; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(n int) {
			defer wg.Done()
			defer func() { <-sem }()

			token, err := register(client, *baseURL, run, n)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				return
			}

			var ok int64
			var inner sync.WaitGroup
			for j := 0; j < *racers; j++ {
				inner.Add(1)
				go func() {
					defer inner.Done()
					status, err := checkIn(client, *baseURL, token)
					switch {
					case err != nil:
						atomic.AddInt64(&failed, 1)
					case status == http.StatusOK:
						atomic.AddInt64(&ok, 1)
						atomic.AddInt64(&accepted, 1)
					case status == http.StatusBadRequest:
						atomic.AddInt64(&rejected, 1)
					default:
						atomic.AddInt64(&failed, 1)
					}
				}()
			}
			inner.Wait()
			if ok != 1 {
				atomic.AddInt64(&violations, 1)
			}
		}(i)
	}

	wg.Wait()
	duration := time.Since(startTime)
	total := *numEmployees * (*racers + 1)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", total)
	fmt.Printf("Accepted:       %d\n", accepted)
	fmt.Printf("Rejected:       %d\n", rejected)
	fmt.Printf("Failed:         %d\n", failed)
	fmt.Printf("Violations:     %d\n", violations)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(total)/duration.Seconds())
}

func register(client *http.Client, baseURL string, run int64, n int) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"name":       fmt.Sprintf("Load Test %d", n),
		"email":      fmt.Sprintf("load-%d-%d@example.com", run, n),
		"password":   "load-test-pw",
		"employeeId": fmt.Sprintf("LT-%d-%d", run, n),
		"department": "Load",
	})
	if err != nil {
		return "", err
	}

	resp, err := client.Post(baseURL+"/api/auth/register", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("register: status %d", resp.StatusCode)
	}

	var out authResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func checkIn(client *http.Client, baseURL, token string) (int, error) {
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/attendance/checkin", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
