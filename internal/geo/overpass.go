package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sehatsaathi/sehat-backend/internal/apperrors"
)

const (
	defaultOverpassURL = "https://overpass-api.de/api/interpreter"
	overpassTimeout    = 30 * time.Second
	amenityFilter      = "hospital|clinic|doctors|healthcare|dispensary"
)

// OverpassSearcher queries OpenStreetMap for healthcare amenities.
type OverpassSearcher struct {
	baseURL    string
	httpClient *http.Client
}

func NewOverpassSearcher(baseURL string, httpClient *http.Client) *OverpassSearcher {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOverpassURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: overpassTimeout}
	}
	return &OverpassSearcher{baseURL: baseURL, httpClient: httpClient}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// BuildQuery renders the Overpass QL for amenities around a point.
func BuildQuery(lat, lon float64, radiusM, limit int) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, kind := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&b, "  %s(around:%d,%v,%v)[amenity~\"%s\",i];\n", kind, radiusM, lat, lon, amenityFilter)
	}
	fmt.Fprintf(&b, ");\nout center %d;\n", limit)
	return b.String()
}

// Search returns raw places around the point. An empty result is not an error
// here; the locator decides.
func (s *OverpassSearcher) Search(ctx context.Context, origin Point, radiusM, limit int) ([]Place, error) {
	form := url.Values{}
	form.Set("data", BuildQuery(origin.Latitude, origin.Longitude, radiusM, limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build overpass request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("facility search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError(fmt.Sprintf("facility search returned status %d", resp.StatusCode), nil)
	}

	var body overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.NewExternalError("failed to decode facility search response", err)
	}

	places := make([]Place, 0, len(body.Elements))
	for _, el := range body.Elements {
		places = append(places, el.place())
	}
	return places, nil
}

func (el overpassElement) place() Place {
	p := Place{
		Name: firstTag(el.Tags, "Unnamed", "name", "operator", "healthcare"),
		Type: firstTag(el.Tags, "clinic", "amenity", "shop"),
	}
	switch el.Type {
	case "way", "relation":
		if el.Center != nil {
			p.Latitude, p.Longitude = el.Center.Lat, el.Center.Lon
		}
	default:
		p.Latitude, p.Longitude = el.Lat, el.Lon
	}
	return p
}

func firstTag(tags map[string]string, fallback string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(tags[k]); v != "" {
			return v
		}
	}
	return fallback
}
