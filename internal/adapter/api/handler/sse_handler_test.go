package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSSEBroker_StreamsProviderRates(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := newSSEBroker(ctx, logger, 50*time.Millisecond)
	server := httptest.NewServer(broker)
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("unexpected content type %q", ct)
	}

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
				lines <- strings.TrimPrefix(line, "data: ")
			}
		}
		close(lines)
	}()

	deadline := time.After(3 * time.Second)
	for {
		// Keep reporting until a message carries the rates; the first ticks may
		// fire before the client registers.
		broker.ReportSearch("algolia")
		broker.ReportSearch("mixedbread")

		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatal("stream closed")
			}
			var msg SSEMessage
			if err := json.Unmarshal([]byte(line), &msg); err != nil {
				t.Fatalf("bad message %q: %v", line, err)
			}
			if msg.Rates["algolia"] > 0 && msg.Rates["mixedbread"] > 0 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for a rate message")
		}
	}
}

func TestStringOrAndNumberOrZero(t *testing.T) {
	strs := []struct {
		raw  string
		want string
	}{
		{``, "def"},
		{`null`, "def"},
		{`"algolia"`, "algolia"},
		{`42`, "42"},
	}
	for _, tt := range strs {
		if got := stringOr(json.RawMessage(tt.raw), "def"); got != tt.want {
			t.Errorf("stringOr(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}

	nums := []struct {
		raw  string
		want float64
	}{
		{``, 0},
		{`"12"`, 0},
		{`12`, 12},
		{`12.5`, 12.5},
		{`true`, 0},
	}
	for _, tt := range nums {
		if got := numberOrZero(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("numberOrZero(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
