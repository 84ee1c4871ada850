package attendance_test

import (
	"math"
	"testing"
	"time"

	"github.com/trezcool/mahudhurio/core"
	. "github.com/trezcool/mahudhurio/core/attendance"
)

// 1 degree of latitude on the haversine sphere (R = 6371 km).
const metersPerDegreeLat = 6371000 * math.Pi / 180

func testConf() *core.Config {
	conf := &core.Config{AppName: "Mahudhurio", TestMode: true}
	conf.Attendance.DedupWindow = 24 * time.Hour
	conf.Attendance.DefaultSessionDuration = 30 * time.Minute
	conf.FrontendBaseURL = "http://localhost:3000"
	return conf
}

// offsetLat returns a point `meters` due north of (lat, lon).
func offsetLat(lat float64, meters float64) float64 {
	return lat + meters/metersPerDegreeLat
}

func floatPtr(f float64) *float64 { return &f }

// mockNow pins NowFunc to `t0` and restores it on cleanup.
func mockNow(t *testing.T, t0 time.Time) *time.Time {
	t.Helper()
	now := t0
	NowFunc = func() time.Time { return now }
	t.Cleanup(func() { NowFunc = time.Now })
	return &now
}
