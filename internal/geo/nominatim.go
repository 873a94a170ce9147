package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sehatsaathi/sehat-backend/internal/apperrors"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	geocodeTimeout      = 10 * time.Second
	userAgent           = "sehat_saathi_app_v2"
)

// NominatimGeocoder turns a pincode into coordinates.
type NominatimGeocoder struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a geocoder. An empty baseURL uses the public
// instance; a nil client gets a 10 second timeout.
func NewNominatimGeocoder(baseURL string, httpClient *http.Client) *NominatimGeocoder {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultNominatimURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: geocodeTimeout}
	}
	return &NominatimGeocoder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode tries "<pincode>, India" first and falls back to the bare pincode.
func (g *NominatimGeocoder) Geocode(ctx context.Context, pincode string) (Point, error) {
	pt, err := g.search(ctx, pincode+", India")
	if err == nil || !apperrors.Is(err, apperrors.ErrorTypeNotFound) {
		return pt, err
	}
	return g.search(ctx, pincode)
}

func (g *NominatimGeocoder) search(ctx context.Context, query string) (Point, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return Point{}, apperrors.NewInternalError("failed to build geocode request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Point{}, apperrors.NewExternalError("geocoding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, apperrors.NewExternalError(fmt.Sprintf("geocoding returned status %d", resp.StatusCode), nil)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Point{}, apperrors.NewExternalError("failed to decode geocoding response", err)
	}
	if len(results) == 0 {
		return Point{}, &apperrors.AppError{Type: apperrors.ErrorTypeNotFound, Message: "location not found for " + query, Err: ErrUnknownPincode}
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return Point{}, apperrors.NewExternalError("geocoding returned malformed coordinates", nil)
	}
	return Point{Latitude: lat, Longitude: lon}, nil
}
