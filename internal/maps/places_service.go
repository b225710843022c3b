package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"chauffeur/internal/types"
)

// Place represents a simplified geocoding result.
type Place struct {
	Address string
	PlaceID string
	Point   types.Point
}

// PlacesService resolves free-text addresses with the Google Geocoding API.
type PlacesService struct {
	client   *maps.Client
	language string
	region   string
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey, language, region string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client, language: language, region: region}, nil
}

// Lookup returns the best geocoding match for address.
func (s *PlacesService) Lookup(ctx context.Context, address string) (Place, error) {
	r := &maps.GeocodingRequest{
		Address:  address,
		Language: s.language,
		Region:   s.region,
	}

	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		return Place{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("no result for %q", address)
	}

	best := results[0]
	return Place{
		Address: best.FormattedAddress,
		PlaceID: best.PlaceID,
		Point:   types.Point{Lat: best.Geometry.Location.Lat, Lng: best.Geometry.Location.Lng},
	}, nil
}

// Geocode returns only the coordinates of the best match.
func (s *PlacesService) Geocode(ctx context.Context, address string) (types.Point, error) {
	p, err := s.Lookup(ctx, address)
	if err != nil {
		return types.Point{}, err
	}
	return p.Point, nil
}
