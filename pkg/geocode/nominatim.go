package geocode

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultBaseURL is the public OpenStreetMap Nominatim endpoint
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Client talks to a Nominatim-compatible geocoding service.
// Every call is a fresh upstream request; nothing is cached or retried.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  "bazaarche-backend/1.0",
		httpClient: &http.Client{},
	}
}

// AddressDetails mirrors Nominatim's structured address block.
// Nominatim fills different fields depending on place type, so city-like
// values may arrive in city, town or village.
type AddressDetails struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	County        string `json:"county"`
	State         string `json:"state"`
	Country       string `json:"country"`
}

// Result is a single geocoding match
type Result struct {
	DisplayName string         `json:"display_name"`
	Lat         string         `json:"lat"`
	Lon         string         `json:"lon"`
	Address     AddressDetails `json:"address"`
}

// Coordinates parses the result's lat/lon strings
func (r *Result) Coordinates() (float64, float64, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse longitude: %w", err)
	}
	return lat, lng, nil
}

// Reverse looks up the address at a coordinate pair
func (c *Client) Reverse(lat, lng float64) (*Result, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("addressdetails", "1")
	params.Set("accept-language", "fa")

	var result Result
	if err := c.get("/reverse", params, &result); err != nil {
		return nil, err
	}
	if result.DisplayName == "" {
		return nil, fmt.Errorf("no address found for (%f, %f)", lat, lng)
	}
	return &result, nil
}

// Search geocodes a free-text query
func (c *Client) Search(query string) ([]Result, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("addressdetails", "1")
	params.Set("accept-language", "fa")
	params.Set("limit", "5")

	var results []Result
	if err := c.get("/search", params, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) get(path string, params url.Values, out interface{}) error {
	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequest("GET", requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Nominatim's usage policy requires an identifying User-Agent
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call geocoding service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoding service returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
