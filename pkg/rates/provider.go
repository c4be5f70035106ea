// Package rates sources currency rate tables and keeps the freshest one.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iwvelando/finance-schedule/pkg/currency"
)

// Provider fetches a rate table.
type Provider interface {
	Fetch(ctx context.Context) (currency.Table, error)
}

// StaticProvider always returns the same table, typically from configuration.
type StaticProvider struct {
	table currency.Table
}

// NewStaticProvider wraps a fixed table.
func NewStaticProvider(table currency.Table) *StaticProvider {
	return &StaticProvider{table: table.Clone()}
}

// Fetch returns a copy of the configured table.
func (p *StaticProvider) Fetch(ctx context.Context) (currency.Table, error) {
	if err := ctx.Err(); err != nil {
		return currency.Table{}, err
	}
	return p.table.Clone(), nil
}

// Document is the JSON body served by an HTTP rate provider:
//
//	{"base": "RON", "rates": {"EUR": 4.97, "USD": 4.56}}
type Document struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// HTTPProvider fetches a Document with a single GET request.
type HTTPProvider struct {
	url    string
	client *http.Client
}

// NewHTTPProvider creates a provider for url. A non-positive timeout means
// no client-side timeout beyond the request context.
func NewHTTPProvider(url string, timeout time.Duration) *HTTPProvider {
	client := &http.Client{}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &HTTPProvider{url: url, client: client}
}

// Fetch retrieves and decodes the rate document.
func (p *HTTPProvider) Fetch(ctx context.Context) (currency.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return currency.Table{}, fmt.Errorf("failed to build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return currency.Table{}, fmt.Errorf("failed to fetch rates from %s: %w", p.url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return currency.Table{}, fmt.Errorf("rate provider returned %s: %s", resp.Status, string(body))
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return currency.Table{}, fmt.Errorf("failed to decode rate document: %w", err)
	}
	if currency.Normalize(doc.Base) == "" {
		return currency.Table{}, fmt.Errorf("rate document has no base currency")
	}
	return currency.NewTableFromFloats(doc.Base, doc.Rates), nil
}
