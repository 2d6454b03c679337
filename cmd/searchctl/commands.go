package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/V4T54L/docsearch/internal/adapter/provider/algolia"
	"github.com/V4T54L/docsearch/internal/compare"
	"github.com/V4T54L/docsearch/internal/dialog"
	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/pkg/apperr"
	"github.com/V4T54L/docsearch/internal/pkg/config"
)

func searchCommand(c *cli.Context) error {
	mode, err := config.ParseSearchMode(c.String("mode"))
	if err != nil {
		return err
	}

	deps := dialog.Deps{BaseURL: c.String("server"), Logger: slog.Default()}
	if mode == config.SearchModeLexical {
		deps.Lexical = algolia.NewClient(config.AlgoliaConfig{
			AppID:  c.String("algolia-app-id"),
			APIKey: c.String("algolia-api-key"),
			Index:  c.String("algolia-index"),
		})
	}
	d, err := dialog.New(mode, deps)
	if err != nil {
		return err
	}

	out := c.App.Writer
	display := func(r dialog.Results) {
		if r.Empty {
			fmt.Fprintln(out, "No results.")
			return
		}
		for _, e := range r.Entries {
			if e.Type == domain.EntryPage {
				fmt.Fprintf(out, "%s\t%s\n", e.Content, e.URL)
			} else {
				fmt.Fprintf(out, "  %s\n", e.Content)
			}
		}
	}

	run := func(query string) {
		fmt.Fprintf(out, "> %s\n", query)
		if err := d.Search(c.Context, query, display); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}

	if c.Args().Len() > 0 {
		for _, q := range c.Args().Slice() {
			run(q)
		}
		return nil
	}

	scanner := bufio.NewScanner(c.App.Reader)
	for scanner.Scan() {
		run(strings.TrimSpace(scanner.Text()))
	}
	return scanner.Err()
}

func compareCommand(c *cli.Context) error {
	rows, err := fetchLogs(c, c.String("server"), c.Int("limit"))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(c.App.Writer, "No logs found.")
		return nil
	}

	view := compare.Build(rows, c.String("left"), c.String("right"))
	fmt.Fprintf(c.App.Writer, "Providers: %s\n", strings.Join(view.Providers, ", "))
	for _, col := range []compare.Column{view.Left, view.Right} {
		printColumn(c.App.Writer, col)
	}
	return nil
}

func fetchLogs(c *cli.Context, server string, limit int) ([]domain.SearchLogEvent, error) {
	url := strings.TrimRight(server, "/") + "/api/logs?limit=" + strconv.Itoa(limit)
	req, err := http.NewRequestWithContext(c.Context, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load logs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body apperr.ErrorResponse
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			return nil, fmt.Errorf("failed to load logs: %s", body.Error)
		}
		return nil, fmt.Errorf("failed to load logs: %s", resp.Status)
	}

	var rows []domain.SearchLogEvent
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode logs: %w", err)
	}
	return rows, nil
}

func printColumn(w io.Writer, col compare.Column) {
	fmt.Fprintf(w, "\n== %s: %s ==\n", col.Title, col.Provider)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTATUS\tQUERY\tRESULTS\tDURATION (MS)\tSESSION")
	for _, r := range col.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"), r.Status, r.Query, r.ResultCount, r.DurationMs, r.SessionID)
	}
	tw.Flush()
	fmt.Fprintf(w, "Average duration: %d ms (%d entries)\n", col.AverageDuration, len(col.Rows))
}
