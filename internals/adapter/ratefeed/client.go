package ratefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"asset-exchange/internals/core/domain"
)

// SeriesAPIClient fetches the sparse rate history for one exchange
// relationship over a date range. Implementations return samples in
// chronological order; the list may be empty when the provider has no data
// for the pair.
type SeriesAPIClient interface {
	FetchRateSeries(ctx context.Context, from, to domain.SymbolID, startDate, endDate string) ([]domain.RateSample, error)
}

// FrankfurterClient fetches time series from a frankfurter-style API
// (GET <base>/<start>..<end>?from=X&to=Y).
type FrankfurterClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) SeriesAPIClient {
	return &FrankfurterClient{
		baseURL:    strings.TrimSuffix(baseURL, "/") + "/",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *FrankfurterClient) FetchRateSeries(ctx context.Context, from, to domain.SymbolID, startDate, endDate string) ([]domain.RateSample, error) {
	log.Printf("Fetching rate series from API: %s -> %s, %s..%s", from, to, startDate, endDate)

	response := &domain.TimeSeriesResponse{}
	endpoint := c.baseURL + startDate + ".." + endDate
	if err := c.doRequest(ctx, endpoint, makeParams(from, to), response); err != nil {
		log.Printf("Error fetching rate series from API for %s -> %s: %v", from, to, err)
		return nil, fmt.Errorf("failed to fetch rate series from external API: %w", err)
	}

	samples := flattenSeries(response, to)
	log.Printf("Successfully fetched %d rate samples for %s -> %s", len(samples), from, to)
	return samples, nil
}

func (c *FrankfurterClient) doRequest(ctx context.Context, endpoint string, params url.Values, w interface{}) error {
	if len(params) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from rate API", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(w)
}

func makeParams(from, to domain.SymbolID) url.Values {
	params := url.Values{}
	if base := strings.ToUpper(strings.TrimSpace(string(from))); base != "" {
		params.Add("from", base)
	}
	if target := strings.ToUpper(strings.TrimSpace(string(to))); target != "" {
		params.Add("to", target)
	}
	return params
}

// flattenSeries picks the target symbol's rate out of each dated entry and
// sorts the result chronologically. Consumers rely on the first sample being
// the earliest one, and the response's date index carries no order.
func flattenSeries(response *domain.TimeSeriesResponse, to domain.SymbolID) []domain.RateSample {
	samples := make([]domain.RateSample, 0, len(response.Rates))
	for date, symbolRates := range response.Rates {
		if rate, ok := symbolRates[string(to)]; ok {
			samples = append(samples, domain.RateSample{Date: date, Rate: rate})
		}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Date < samples[j].Date })
	return samples
}
