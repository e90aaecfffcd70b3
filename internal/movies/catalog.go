package movies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinetix/internal/shared/config"
)

// ErrCatalogNotFound is returned when the provider cannot find the requested movie.
var ErrCatalogNotFound = errors.New("catalog: movie not found")

// CatalogMovie is the provider's view of a movie
type CatalogMovie struct {
	CatalogID      int64  `json:"id"`
	Title          string `json:"title"`
	Overview       string `json:"overview"`
	PosterPath     string `json:"poster_path"`
	BackdropPath   string `json:"backdrop_path"`
	ReleaseDate    string `json:"release_date"`
	RuntimeMinutes int    `json:"runtime"`
}

// CatalogClient defines the contract for querying the movie metadata provider
type CatalogClient interface {
	NowPlaying(ctx context.Context) ([]CatalogMovie, error)
	MovieDetail(ctx context.Context, catalogID int64) (*CatalogMovie, error)
}

// HTTPCatalogClient implements CatalogClient over HTTP
type HTTPCatalogClient struct {
	baseURL *url.URL
	apiKey  string
	region  string
	client  *http.Client

	// retryAttempts bounds transient-failure retries per request
	retryAttempts int
	retryBackoff  time.Duration
}

// NewHTTPCatalogClient constructs a new HTTP-backed catalog client
func NewHTTPCatalogClient(cfg config.CatalogConfig) (*HTTPCatalogClient, error) {
	parsed, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPCatalogClient{
		baseURL: parsed,
		apiKey:  cfg.APIKey,
		region:  cfg.Region,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
			},
		},
		retryAttempts: 3,
		retryBackoff:  time.Second,
	}, nil
}

// NowPlaying fetches the currently screening movies from the provider
func (c *HTTPCatalogClient) NowPlaying(ctx context.Context) ([]CatalogMovie, error) {
	endpoint := *c.baseURL
	endpoint.Path += "/movie/now_playing"
	q := endpoint.Query()
	q.Set("region", c.region)
	q.Set("page", "1")
	endpoint.RawQuery = q.Encode()

	var payload struct {
		Results []CatalogMovie `json:"results"`
	}
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}

	// Drop entries without artwork, same policy the storefront expects.
	movies := make([]CatalogMovie, 0, len(payload.Results))
	for _, m := range payload.Results {
		if m.PosterPath != "" && m.BackdropPath != "" {
			movies = append(movies, m)
		}
	}
	return movies, nil
}

// MovieDetail fetches a single movie, including its runtime
func (c *HTTPCatalogClient) MovieDetail(ctx context.Context, catalogID int64) (*CatalogMovie, error) {
	endpoint := *c.baseURL
	endpoint.Path += "/movie/" + strconv.FormatInt(catalogID, 10)

	var movie CatalogMovie
	if err := c.getJSON(ctx, endpoint.String(), &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// getJSON performs a GET with bounded retries on transient failures
func (c *HTTPCatalogClient) getJSON(ctx context.Context, rawURL string, dest interface{}) error {
	var lastErr error

	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryBackoff << (attempt - 1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("build catalog request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("catalog request failed: %w", err)
			continue
		}

		func() {
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				lastErr = ErrCatalogNotFound
			case resp.StatusCode >= 500:
				lastErr = fmt.Errorf("catalog upstream error: %s", resp.Status)
			case resp.StatusCode != http.StatusOK:
				lastErr = fmt.Errorf("catalog unexpected status: %s", resp.Status)
			default:
				if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
					lastErr = fmt.Errorf("decode catalog response: %w", err)
				} else {
					lastErr = nil
				}
			}
		}()

		if lastErr == nil {
			return nil
		}
		// 404s and client errors are terminal, only retry upstream/transport failures.
		if errors.Is(lastErr, ErrCatalogNotFound) || strings.Contains(lastErr.Error(), "unexpected status") {
			return lastErr
		}
	}

	return lastErr
}
