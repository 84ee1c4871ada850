package attendance_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/mahudhurio/core/attendance"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestSession_JoinURL_roundTrip(t *testing.T) {
	tests := []struct {
		name string
		sess Session
	}{
		{name: "reference anchor", sess: Session{ID: "sess-1", AnchorLat: 12.9716, AnchorLon: 77.5946, RadiusMeters: 50}},
		{name: "sub-meter precision", sess: Session{ID: "sess-2", AnchorLat: 12.971612, AnchorLon: 77.594608, RadiusMeters: 7.5}},
		{name: "negative coordinates", sess: Session{ID: "sess-3", AnchorLat: -33.918861, AnchorLon: -70.669265, RadiusMeters: 120}},
		{name: "zero island", sess: Session{ID: "sess-4", AnchorLat: 0, AnchorLon: 0, RadiusMeters: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.sess.JoinURL("http://localhost:3000")
			payload, err := ParseJoinURL(raw)
			assert.NoError(t, err)
			assert.Equal(t, tt.sess.ID, payload.SessionID)
			// 6 decimal degrees survive the trip; ~0.1m of geofence slack
			assert.InDelta(t, tt.sess.AnchorLat, payload.AnchorLat, 5e-7)
			assert.InDelta(t, tt.sess.AnchorLon, payload.AnchorLon, 5e-7)
			assert.Equal(t, tt.sess.RadiusMeters, payload.RadiusMeters)
		})
	}
}

func TestParseJoinURL_invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing session", raw: "http://localhost:3000/attend?lat=12.971600&lon=77.594600&radius=50"},
		{name: "missing lat", raw: "http://localhost:3000/attend?session=s1&lon=77.594600&radius=50"},
		{name: "malformed lon", raw: "http://localhost:3000/attend?session=s1&lat=12.971600&lon=east&radius=50"},
		{name: "missing radius", raw: "http://localhost:3000/attend?session=s1&lat=12.971600&lon=77.594600"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJoinURL(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestSession_QRCodePNG(t *testing.T) {
	sess := Session{ID: "sess-1", AnchorLat: 12.9716, AnchorLon: 77.5946, RadiusMeters: 50}
	png, err := sess.QRCodePNG("http://localhost:3000", 256)
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic), "not a PNG image")
}
