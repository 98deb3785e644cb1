// Package collect gathers per-stock short-selling figures ahead of a batch
// run. The upstream API allows 20 requests per second, so the collector
// paces itself with a rate limiter instead of fixed sleeps.
package collect

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/wonny/avssa/pkg/logger"
)

// 초당 20건 (KIS rate limit)
const requestsPerSecond = 20

// ShortSellingData is one stock's short-selling figures.
type ShortSellingData struct {
	ShortRatio float64 `json:"short_ratio"` // 전체 거래량 대비 공매도 비중(%)
	ShortQty   int64   `json:"short_qty"`
}

// ShortSellingFetcher fetches short-selling figures for one stock.
// Implemented by the KIS API client (acquisition layer).
type ShortSellingFetcher interface {
	GetShortSelling(ctx context.Context, code string) (ShortSellingData, error)
}

// Collector iterates stock codes against a fetcher under rate limiting.
type Collector struct {
	fetcher ShortSellingFetcher
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewCollector creates a short-selling collector.
func NewCollector(fetcher ShortSellingFetcher, log *logger.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  log,
	}
}

// Collect fetches short-selling data for every code, keeping only entries
// with a positive ratio. Per-code failures are skipped, not propagated;
// the evaluator treats missing entries as "no data".
func (c *Collector) Collect(ctx context.Context, codes []string) (map[string]ShortSellingData, error) {
	c.logger.WithField("total", len(codes)).Info("Collecting short-selling data")

	result := make(map[string]ShortSellingData)
	for i, code := range codes {
		if err := c.limiter.Wait(ctx); err != nil {
			return result, err
		}

		data, err := c.fetcher.GetShortSelling(ctx, code)
		if err != nil {
			c.logger.WithError(err).WithField("code", code).Debug("Short-selling fetch failed, skipping")
			continue
		}
		if data.ShortRatio > 0 {
			result[code] = data
		}

		if (i+1)%50 == 0 {
			c.logger.Infof("진행: %d/%d", i+1, len(codes))
		}
	}

	c.logger.WithField("collected", len(result)).Info("Short-selling collection completed")
	return result, nil
}
