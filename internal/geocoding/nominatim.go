// Package geocoding resolves French postal addresses to coordinates through
// a Nominatim search endpoint.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrAddressNotFound = errors.New("address not found")

type Result struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
}

type Query struct {
	Street     string
	PostalCode string
	City       string
}

type Client struct {
	baseURL string
	client  *http.Client
	headers map[string]string
	email   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithEmail adds the contact address Nominatim asks heavy users to send.
func WithEmail(email string) Option {
	return func(c *Client) {
		c.email = strings.TrimSpace(email)
	}
}

func NewClient(baseURL, userAgent string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode runs a structured search restricted to France and returns the
// first match.
func (c *Client) Geocode(ctx context.Context, q Query) (Result, error) {
	params := url.Values{}
	params.Set("street", q.Street)
	params.Set("postalcode", q.PostalCode)
	params.Set("city", q.City)
	params.Set("country", "France")
	params.Set("format", "json")
	params.Set("limit", "1")
	if c.email != "" {
		params.Set("email", c.email)
	}

	body, err := c.get(ctx, "/search?"+params.Encode())
	if err != nil {
		return Result{}, err
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return Result{}, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if len(results) == 0 {
		return Result{}, fmt.Errorf("%w: %s, %s %s", ErrAddressNotFound, q.Street, q.PostalCode, q.City)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}

	log.Ctx(ctx).Debug().
		Str("postal_code", q.PostalCode).
		Str("city", q.City).
		Float64("lat", lat).
		Float64("lon", lon).
		Msg("Address geocoded")

	return Result{
		Latitude:         lat,
		Longitude:        lon,
		FormattedAddress: results[0].DisplayName,
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocoding API returned status code: %d, response: %s", resp.StatusCode, string(responseBody))
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return responseBody, nil
}
