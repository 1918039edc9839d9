package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"photo-archive/model"
)

var (
	ErrNoResult = errors.New("geocode: no result")
	ErrStatus   = errors.New("geocode: unexpected status")
)

const DefaultLimit = 5

// Client resolves coordinates to place names with the OpenWeather
// reverse geocoding API.
type Client struct {
	BaseURL string
	APIKey  string
	Limit   int
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Limit:   DefaultLimit,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type place struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Reverse returns the name of the first place reported for coord.
func (c *Client) Reverse(ctx context.Context, coord model.GeoCoordinate) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("geocode url: %w", err)
	}
	limit := c.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := u.Query()
	q.Set("lat", coord.LatitudeString())
	q.Set("lon", coord.LongitudeString())
	q.Set("limit", strconv.Itoa(limit))
	q.Set("appid", c.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		// url.Error carries the full URL including the API key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return "", fmt.Errorf("geocode response: %w", err)
	}
	if len(places) == 0 || places[0].Name == "" {
		return "", ErrNoResult
	}
	return places[0].Name, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}
