package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"chauffeur/internal/types"
)

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client   *maps.Client
	language string
	region   string
}

// NewRouteService creates a new RouteService with the given API Key.
// language and region bias the Directions response (e.g. "fr", "FR").
func NewRouteService(apiKey, language, region string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client, language: language, region: region}, nil
}

// Distance returns the driving distance (km) and duration (seconds) of the
// first suggested route between two points.
func (s *RouteService) Distance(ctx context.Context, from, to types.Point) (float64, float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      latLng(from),
		Destination: latLng(to),
		Mode:        maps.TravelModeDriving,
		Language:    s.language,
		Region:      s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, 0, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, 0, fmt.Errorf("no route found")
	}

	var meters int
	var seconds float64
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		seconds += leg.Duration.Seconds()
	}
	return float64(meters) / 1000, seconds, nil
}

func latLng(p types.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}
