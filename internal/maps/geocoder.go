package maps

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"opsgate/internal/modules/geofence"
)

var ErrAddressNotFound = errors.New("address not found")

// Geocoder turns checklist addresses into coordinates with the Google
// Geocoding API.
type Geocoder struct {
	client *maps.Client
	region string
}

// NewGeocoder creates a Geocoder with the given API key. region biases
// results to a ccTLD country code and may be empty.
func NewGeocoder(apiKey, region string, opts ...maps.ClientOption) (*Geocoder, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Geocoder{client: client, region: region}, nil
}

// Geocode returns the location of the best match for address.
func (g *Geocoder) Geocode(ctx context.Context, address string) (geofence.GeoPoint, error) {
	r := &maps.GeocodingRequest{
		Address: address,
		Region:  g.region,
	}

	results, err := g.client.Geocode(ctx, r)
	if err != nil {
		return geofence.GeoPoint{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return geofence.GeoPoint{}, fmt.Errorf("%w: %q", ErrAddressNotFound, address)
	}

	loc := results[0].Geometry.Location
	p := geofence.GeoPoint{Lat: loc.Lat, Lng: loc.Lng}
	if err := p.Validate(); err != nil {
		return geofence.GeoPoint{}, fmt.Errorf("geocoding api returned %s: %w", p, err)
	}
	return p, nil
}
