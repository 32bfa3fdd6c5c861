// Command slotprobe smoke-tests a running calendario deployment. It hits the
// health endpoints and the public availability of the given events, verifying
// that every response carries a full seven-day week and that open days offer
// bookable dates. Exits nonzero when any critical check fails.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type dayAvailability struct {
	Day         string `json:"day"`
	IsAvailable bool   `json:"isAvailable"`
	Dates       []struct {
		Date  string   `json:"date"`
		Slots []string `json:"slots"`
	} `json:"dates"`
}

type envelope struct {
	Data []dayAvailability `json:"data"`
}

type probe struct {
	Name     string
	Path     string
	Critical bool
	Check    func(status int, body []byte) error
}

func main() {
	var (
		base    string
		events  string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&events, "events", "", "comma-separated event IDs to probe")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	probes := []probe{
		{Name: "health", Path: "/health", Critical: true, Check: expectOK},
		{Name: "ready", Path: "/ready", Critical: true, Check: expectOK},
	}
	for _, id := range splitIDs(events) {
		probes = append(probes, probe{
			Name:     "availability " + id,
			Path:     "/api/v1/availability/public/" + id,
			Critical: true,
			Check:    checkWeek,
		})
	}

	failures := 0
	fmt.Println("Slot Probe Report")
	fmt.Println("=================")
	for _, p := range probes {
		status, body, dur, err := fetch(client, base, p.Path)
		if err == nil {
			err = p.Check(status, body)
		}
		if err != nil {
			fmt.Printf("[FAIL] %s (%s): %v\n", p.Name, dur, err)
			if p.Critical {
				failures++
			}
			continue
		}
		fmt.Printf("[OK]   %s (%s)\n", p.Name, dur)
	}

	if failures > 0 {
		fmt.Printf("%d critical probe(s) failed\n", failures)
		os.Exit(1)
	}
}

func fetch(client *http.Client, base, path string) (int, []byte, time.Duration, error) {
	url := strings.TrimRight(base, "/") + path
	start := time.Now()
	resp, err := client.Get(url)
	if err != nil {
		return 0, nil, time.Since(start), err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, time.Since(start), err
	}
	return resp.StatusCode, body, time.Since(start), nil
}

func expectOK(status int, _ []byte) error {
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", status)
	}
	return nil
}

func checkWeek(status int, body []byte) error {
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", status)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) != 7 {
		return fmt.Errorf("expected 7 weekdays, got %d", len(env.Data))
	}
	openDays := 0
	for _, day := range env.Data {
		if !day.IsAvailable {
			continue
		}
		openDays++
		for _, date := range day.Dates {
			if len(date.Slots) == 0 {
				return fmt.Errorf("%s %s listed with no slots", day.Day, date.Date)
			}
		}
	}
	if openDays == 0 {
		return fmt.Errorf("no open days in template")
	}
	return nil
}

func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
