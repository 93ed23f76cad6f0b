package plugindex

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/plugindex/plugindex/pkg/config"
	"github.com/plugindex/plugindex/pkg/engine"
)

// newEngine builds the configured engine implementation. The returned close
// function is a no-op for remote engines.
func newEngine(cfg *config.Config, log *slog.Logger) (engine.Engine, func() error, error) {
	switch cfg.Engine.Kind {
	case "http":
		var breaker *gobreaker.CircuitBreaker
		if cfg.CircuitBreaker.Enabled {
			breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:        "engine",
				MaxRequests: cfg.CircuitBreaker.MaxRequests,
				Interval:    time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
				Timeout:     time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					if counts.Requests == 0 {
						return false
					}
					ratio := float64(counts.TotalFailures) / float64(counts.Requests)
					return ratio >= cfg.CircuitBreaker.ReadyToTripRatio
				},
			})
		}
		eng := engine.NewHTTP(engine.HTTPOptions{
			URL:     cfg.Engine.URL,
			Timeout: time.Duration(cfg.Engine.Timeout) * time.Second,
			Breaker: breaker,
			Logger:  log,
		})
		return eng, func() error { return nil }, nil

	case "badger":
		var (
			eng *engine.Badger
			err error
		)
		if cfg.Engine.Path == "" {
			eng, err = engine.NewBadgerInMemory()
		} else {
			eng, err = engine.NewBadger(cfg.Engine.Path)
		}
		if err != nil {
			return nil, nil, err
		}
		return eng, eng.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown engine kind %q", cfg.Engine.Kind)
}
