// Package rates pulls exchange rates from an HTTP source and applies them to
// the stored display currencies.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Quote is a set of rates against one base currency:
// {"base": "USD", "rates": {"NIO": 36.62, "CRC": 512.3}}
type Quote struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Source fetches the latest quote
type Source interface {
	Fetch(ctx context.Context) (*Quote, error)
}

// Applier stores a quote's rates
type Applier interface {
	ApplyRates(ctx context.Context, base string, rates map[string]decimal.Decimal) (int, error)
}

type HTTPSource struct {
	url    string
	client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) (*Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates source answered %d", resp.StatusCode)
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("decoding rates: %w", err)
	}
	if quote.Base == "" {
		return nil, fmt.Errorf("rates response has no base currency")
	}

	normalized := make(map[string]decimal.Decimal, len(quote.Rates))
	for code, rate := range quote.Rates {
		normalized[strings.ToUpper(code)] = rate
	}
	quote.Base = strings.ToUpper(quote.Base)
	quote.Rates = normalized

	return &quote, nil
}

// Refresher copies the latest quote from a source into the store
type Refresher struct {
	source Source
	target Applier
	log    *zap.Logger
}

func NewRefresher(source Source, target Applier, log *zap.Logger) *Refresher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Refresher{source: source, target: target, log: log}
}

// Run fetches one quote and applies it. Returns the number of currencies updated.
func (r *Refresher) Run(ctx context.Context) (int, error) {
	quote, err := r.source.Fetch(ctx)
	if err != nil {
		return 0, err
	}

	updated, err := r.target.ApplyRates(ctx, quote.Base, quote.Rates)
	if err != nil {
		return updated, fmt.Errorf("applying %s rates: %w", quote.Base, err)
	}

	r.log.Info("exchange rates refreshed", zap.String("base", quote.Base), zap.Int("updated", updated))
	return updated, nil
}
