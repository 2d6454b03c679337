package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the search server")
	route := flag.String("route", "vector", "Route to exercise (vector, lexical, log)")
	queries := flag.String("queries", "install,configure,deploy,authentication,webhooks", "Comma-separated queries to cycle through")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 50, "Requests per second limit")
	flag.Parse()

	terms := strings.Split(*queries, ",")
	newRequest, err := requestBuilder(*baseURL, *route)
	if err != nil {
		log.Fatalf("Invalid route: %v", err)
	}

	log.Printf("Starting load test on %s (%s route)", *baseURL, *route)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d", *concurrency, *duration, *rps)

	var wg sync.WaitGroup
	var successCount, errorCount atomic.Int64
	var totalLatency atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), *concurrency)

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			// Each worker keeps its own session cookie.
			jar, _ := cookiejar.New(nil)
			client := &http.Client{Timeout: 15 * time.Second, Jar: jar}

			for n := workerID; ; n++ {
				if err := limiter.Wait(ctx); err != nil {
					return
				}

				req, err := newRequest(ctx, terms[n%len(terms)])
				if err != nil {
					continue
				}

				start := time.Now()
				resp, err := client.Do(req)
				if err != nil {
					if ctx.Err() == nil {
						errorCount.Add(1)
					}
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				totalLatency.Add(time.Since(start).Milliseconds())

				if resp.StatusCode == http.StatusOK {
					successCount.Add(1)
				} else {
					errorCount.Add(1)
				}
			}
		}(i)
	}

	wg.Wait()

	totalRequests := successCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Successful (200 OK): %d", successCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
	if totalRequests > 0 {
		log.Printf("Mean latency: %d ms", totalLatency.Load()/totalRequests)
	}
}

type requestFunc func(ctx context.Context, query string) (*http.Request, error)

func requestBuilder(baseURL, route string) (requestFunc, error) {
	base := strings.TrimRight(baseURL, "/")
	switch route {
	case "vector", "lexical":
		path := "/api/vector-store"
		if route == "lexical" {
			path = "/api/search"
		}
		return func(ctx context.Context, query string) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, base+path+"?query="+url.QueryEscape(query), nil)
		}, nil
	case "log":
		return func(ctx context.Context, query string) (*http.Request, error) {
			body, err := json.Marshal(map[string]any{
				"provider":     "algolia",
				"query":        query,
				"result_count": 3,
				"duration_ms":  42,
			})
			if err != nil {
				return nil, err
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/log", bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			return req, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown route %q", route)
	}
}
