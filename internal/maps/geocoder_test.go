package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"googlemaps.github.io/maps"

	"opsgate/internal/modules/geofence"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) *Geocoder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g, err := NewGeocoder("test-key", "us", maps.WithBaseURL(srv.URL), maps.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new geocoder: %v", err)
	}
	return g
}

func TestGeocode(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/geocode/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("address"); got != "1 Main St" {
			t.Errorf("address = %q", got)
		}
		if got := r.URL.Query().Get("region"); got != "us" {
			t.Errorf("region = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "1 Main St, New York, NY",
				"geometry": {"location": {"lat": 40.7128, "lng": -74.006}}
			}]
		}`))
	})

	p, err := g.Geocode(context.Background(), "1 Main St")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if p != (geofence.GeoPoint{Lat: 40.7128, Lng: -74.006}) {
		t.Fatalf("unexpected point %v", p)
	}
}

func TestGeocodeNoResults(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	_, err := g.Geocode(context.Background(), "nowhere")
	if !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("expected ErrAddressNotFound, got %v", err)
	}
}
