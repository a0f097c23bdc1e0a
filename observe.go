package stylist

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/metrics"
)

// observer provides logging and metrics for client operations.
type observer struct {
	logger  *zap.Logger
	metrics *metrics.Ranking
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *metrics.Ranking
	if reg != nil {
		var err error
		m, err = metrics.NewRanking(reg)
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe logs the outcome of one operation. Ranking metrics are recorded by
// the recommender itself.
func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	if err != nil {
		o.logger.Warn("operation failed",
			zap.String("op", op),
			zap.Duration("duration", dur),
			zap.Error(err),
		)
		return
	}
	o.logger.Debug("operation completed",
		zap.String("op", op),
		zap.Duration("duration", dur),
	)
}
