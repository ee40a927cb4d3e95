package locationIQ

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
)

var (
	ErrLocationNotFound = fmt.Errorf("location not found")
)

const DefaultBaseURL = "https://us1.locationiq.com"

type LocationIQClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func New(apiKey, baseURL string, timeout time.Duration) *LocationIQClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LocationIQClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type addressPayload struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Neighbourhood string `json:"neighbourhood"`
		Suburb        string `json:"suburb"`
		Village       string `json:"village"`
		Town          string `json:"town"`
		City          string `json:"city"`
	} `json:"address"`
}

// label prefers the most local place name and falls back to the full display name.
func (p addressPayload) label() string {
	local := firstNonEmpty(p.Address.Suburb, p.Address.Neighbourhood, p.Address.Village)
	city := firstNonEmpty(p.Address.City, p.Address.Town)

	switch {
	case local != "" && city != "" && local != city:
		return local + ", " + city
	case local != "":
		return local
	case city != "":
		return city
	}
	return p.DisplayName
}

// RouteLabel reverse geocodes the start of a ride into a short place name.
func (c *LocationIQClient) RouteLabel(ctx context.Context, lat, lng float64) (string, error) {
	const op = "LocationIQClient.RouteLabel"

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', 6, 64))
	q.Set("format", "json")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%s: build request: %w", op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return "", wrap.Error(ctx, fmt.Errorf("%s: failed to make request to LocationIQ: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrLocationNotFound))
	}
	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return "", wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	var payload addressPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		ctx = wrap.WithAction(ctx, "decode_address_payload")
		return "", wrap.Error(ctx, fmt.Errorf("%s: failed to decode data from LocationIQ response: %w", op, err))
	}

	label := payload.label()
	if label == "" {
		return "", wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrLocationNotFound))
	}
	return label, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
