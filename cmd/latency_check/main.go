package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"sort"
	"sync"
	"time"
)

type LatencyStats struct {
	DNS        time.Duration
	Connect    time.Duration
	FirstByte  time.Duration
	Total      time.Duration
	StatusCode int
	Error      error
}

func main() {
	baseURL := flag.String("url", "http://localhost:1921", "Base URL of the API")
	datasetSize := flag.Int("n", 20, "Number of requests per endpoint")
	concurrency := flag.Int("c", 1, "Concurrency level (1 = sequential)")
	walk := flag.Bool("walk", false, "Also time a simulated visit of every POI (changes the tour state)")
	flag.Parse()

	endpoints := []string{
		"/health",
		"/api/version",
		"/api/config",
		"/api/tour",
		"/api/pois",
		"/api/map/state",
		"/api/map/geojson",
		"/api/guide/languages",
		"/api/guide/catalog",
		"/api/stats",
		"/api/log/latest",
	}

	fmt.Printf("Benchmarking %s with N=%d, C=%d\n\n", *baseURL, *datasetSize, *concurrency)

	for _, ep := range endpoints {
		benchmarkEndpoint(*baseURL+ep, *datasetSize, *concurrency)
	}

	if *walk {
		if err := benchmarkWalk(*baseURL); err != nil {
			fmt.Println("Walk failed:", err)
		}
	}
}

// benchmarkWalk selects every POI in tour order, the way an operator walks
// the tour in simulated mode, and reports how long each trigger takes.
func benchmarkWalk(baseURL string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	if err := postJSON(client, baseURL+"/api/tour/mode", map[string]string{"mode": "simulated"}); err != nil {
		return err
	}

	resp, err := client.Get(baseURL + "/api/pois")
	if err != nil {
		return err
	}
	var pois []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	err = json.NewDecoder(resp.Body).Decode(&pois)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("decode pois: %w", err)
	}

	fmt.Printf("Walk: %d POIs\n", len(pois))
	var durations []time.Duration
	for _, p := range pois {
		start := time.Now()
		if err := postJSON(client, baseURL+"/api/tour/select", map[string]string{"id": p.ID}); err != nil {
			fmt.Printf("  %-24s error: %v\n", p.Name, err)
			continue
		}
		d := time.Since(start)
		durations = append(durations, d)
		fmt.Printf("  %-24s %v\n", p.Name, d.Round(time.Microsecond))
	}
	_ = postJSON(client, baseURL+"/api/tour/control", map[string]string{"action": "stop"})

	if len(durations) > 0 {
		fmt.Printf("  Average trigger: %v\n", average(durations))
	}
	return nil
}

func postJSON(client *http.Client, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func benchmarkEndpoint(url string, n, concurrency int) {
	results := make([]LatencyStats, n)
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	startTotal := time.Now()

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = measureLatency(url)
		}(i)
	}

	wg.Wait()
	duration := time.Since(startTotal)

	// Analyze
	var totalDurations []time.Duration
	var fbDurations []time.Duration
	var errorsCount int

	for _, r := range results {
		if r.Error != nil {
			errorsCount++
			continue
		}
		totalDurations = append(totalDurations, r.Total)
		fbDurations = append(fbDurations, r.FirstByte)
	}

	fmt.Printf("Endpoint: %s\n", url)
	if errorsCount > 0 {
		fmt.Printf("  Errors: %d/%d\n", errorsCount, n)
	}
	if len(totalDurations) == 0 {
		fmt.Println("  No successful requests.")
		return
	}

	sort.Slice(totalDurations, func(i, j int) bool { return totalDurations[i] < totalDurations[j] })
	sort.Slice(fbDurations, func(i, j int) bool { return fbDurations[i] < fbDurations[j] })

	avgTotal := average(totalDurations)
	avgFB := average(fbDurations)

	fmt.Printf("  Requests: %d | Time: %v | RPS: %.2f\n", n, duration.Round(time.Millisecond), float64(n)/duration.Seconds())
	fmt.Printf("  Latency (Total)   : Min %v | Avg %v | Max %v\n", totalDurations[0], avgTotal, totalDurations[len(totalDurations)-1])
	fmt.Printf("  Latency (TTFB)    : Min %v | Avg %v | Max %v\n", fbDurations[0], avgFB, fbDurations[len(fbDurations)-1])
	fmt.Println()
}

func measureLatency(url string) LatencyStats {
	var stats LatencyStats
	var start, dnsStart, connStart, wroteRequest time.Time

	req, _ := http.NewRequest("GET", url, http.NoBody)
	trace := &httptrace.ClientTrace{
		DNSStart: func(dsi httptrace.DNSStartInfo) { dnsStart = time.Now() },
		DNSDone: func(ddi httptrace.DNSDoneInfo) {
			stats.DNS = time.Since(dnsStart)
		},
		ConnectStart: func(network, addr string) { connStart = time.Now() },
		ConnectDone: func(network, addr string, err error) {
			stats.Connect = time.Since(connStart)
		},
		WroteRequest: func(wri httptrace.WroteRequestInfo) {
			wroteRequest = time.Now()
		},
		GotFirstResponseByte: func() {
			stats.FirstByte = time.Since(wroteRequest)
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	start = time.Now()
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		stats.Error = err
		return stats
	}
	defer resp.Body.Close()

	_, err = io.Copy(io.Discard, resp.Body)
	if err != nil {
		stats.Error = err
		return stats
	}
	stats.Total = time.Since(start)
	stats.StatusCode = resp.StatusCode
	if resp.StatusCode >= 300 {
		stats.Error = fmt.Errorf("status %d", resp.StatusCode)
	}

	return stats
}

func average(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}
