package usecase

import (
	"fmt"

	"github.com/V4T54L/docsearch/internal/adapter/metrics"
	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/pkg/config"
)

// RouteSinks binds the entry points to stores for a SEARCH_LOG_SINK value.
// Split routing sends the lexical route to the session files and everything
// else, reads included, to postgres. Any other value uses that one store for
// all routes. stores is keyed by sink name.
func RouteSinks(sink string, stores map[string]domain.SearchLogStore, m *metrics.SearchMetrics) (SinkRouting, *Reader, error) {
	recorder := func(name string) (*Recorder, error) {
		store, ok := stores[name]
		if !ok {
			return nil, fmt.Errorf("no %s log store available", name)
		}
		return NewRecorder(name, store, m), nil
	}

	switch sink {
	case config.SinkSplit:
		file, err := recorder(config.SinkJSONL)
		if err != nil {
			return SinkRouting{}, nil, err
		}
		db, err := recorder(config.SinkPostgres)
		if err != nil {
			return SinkRouting{}, nil, err
		}
		return SinkRouting{Lexical: file, Vector: db, Client: db}, &Reader{Name: config.SinkPostgres, Store: stores[config.SinkPostgres]}, nil
	case config.SinkPostgres, config.SinkJSONL, config.SinkRedis:
		r, err := recorder(sink)
		if err != nil {
			return SinkRouting{}, nil, err
		}
		return SinkRouting{Lexical: r, Vector: r, Client: r}, &Reader{Name: sink, Store: stores[sink]}, nil
	default:
		return SinkRouting{}, nil, fmt.Errorf("invalid log sink %q", sink)
	}
}

// Reader is the store the Logs Query API reads from.
type Reader struct {
	Name  string
	Store domain.SearchLogReader
}
