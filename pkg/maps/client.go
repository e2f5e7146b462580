package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://places.googleapis.com/v1"
	autocompleteFieldMask       = "suggestions.placePrediction.placeId,suggestions.placePrediction.text"
	searchTextFieldMask         = "places.id,places.formattedAddress,places.location"
	responseBodyReadLimit int64 = 1024
)

var (
	errAPIKeyRequired = errors.New("google maps api key is required")

	// ErrNoResults is returned when an address resolves to nothing. Callers
	// decide whether to fall back to a default location.
	ErrNoResults = errors.New("no geocoding results")
)

// Client wraps the Google Places APIs used to turn restaurant addresses into
// coordinates.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Places base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Google Places client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// LatLng is the latitude/longitude pair returned by Google.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

// GeocodeResult is the normalized product of a text search.
type GeocodeResult struct {
	PlaceID          string
	FormattedAddress string
	Location         LatLng
}

// AutocompleteSuggestion holds the mapped data returned by the autocomplete API.
type AutocompleteSuggestion struct {
	PlaceID     string
	Description string
}

// Geocode resolves a free-text address to coordinates using the Places text
// search API, biased to Germany. Returns ErrNoResults when nothing matches.
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	if strings.TrimSpace(address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}

	payload, err := json.Marshal(map[string]any{
		"textQuery":  address,
		"regionCode": "DE",
		"pageSize":   1,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal geocode request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("places:searchText"), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build geocode request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", searchTextFieldMask)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "geocode request failed")
	}

	var apiResp struct {
		Places []struct {
			ID               string `json:"id"`
			FormattedAddress string `json:"formattedAddress"`
			Location         struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"location"`
		} `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode geocode response")
	}

	if len(apiResp.Places) == 0 {
		return nil, ErrNoResults
	}

	place := apiResp.Places[0]
	return &GeocodeResult{
		PlaceID:          place.ID,
		FormattedAddress: place.FormattedAddress,
		Location: LatLng{
			Latitude:  place.Location.Latitude,
			Longitude: place.Location.Longitude,
		},
	}, nil
}

// Autocomplete queries suggested places based on partial input.
func (c *Client) Autocomplete(ctx context.Context, input string, languageCode string) ([]AutocompleteSuggestion, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	if strings.TrimSpace(input) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "autocomplete input is required")
	}

	body := map[string]any{
		"input":               input,
		"includedRegionCodes": []string{"de"},
	}
	if languageCode != "" {
		body["languageCode"] = languageCode
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal autocomplete request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("places:autocomplete"), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build autocomplete request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", autocompleteFieldMask)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute autocomplete request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "autocomplete request failed")
	}

	var apiResp struct {
		Suggestions []struct {
			Prediction struct {
				PlaceID string `json:"placeId"`
				Text    struct {
					Text string `json:"text"`
				} `json:"text"`
			} `json:"placePrediction"`
		} `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode autocomplete response")
	}

	suggestions := make([]AutocompleteSuggestion, 0, len(apiResp.Suggestions))
	for _, s := range apiResp.Suggestions {
		suggestions = append(suggestions, AutocompleteSuggestion{
			PlaceID:     s.Prediction.PlaceID,
			Description: s.Prediction.Text.Text,
		})
	}

	return suggestions, nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
