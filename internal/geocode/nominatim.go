package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

const defaultTimeout = 10 * time.Second

// NominatimResolver resolves addresses against a Nominatim-compatible
// search endpoint.
type NominatimResolver struct {
	baseURL   string
	userAgent string
	client    *http.Client
	log       *slog.Logger
}

// NewNominatimResolver constructs a resolver for the given endpoint.
// Nominatim's usage policy requires an identifying User-Agent.
func NewNominatimResolver(baseURL, userAgent string, timeout time.Duration, log *slog.Logger) *NominatimResolver {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	return &NominatimResolver{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		log:       log,
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve queries the search endpoint and returns the best match, or
// ErrNotFound when the service has no candidate for the query.
func (r *NominatimResolver) Resolve(ctx context.Context, query string) (domain.Point, error) {
	endpoint := fmt.Sprintf("%s/search?%s", r.baseURL, url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Point{}, fmt.Errorf("build geocode request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.Point{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Point{}, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Point{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(results) == 0 {
		return domain.Point{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("parse geocode latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("parse geocode longitude: %w", err)
	}

	point := domain.Point{Lat: lat, Lon: lon}
	if !point.Valid() {
		return domain.Point{}, fmt.Errorf("geocode returned out-of-range coordinates (%f, %f)", lat, lon)
	}

	return point, nil
}
