package attendance

import "github.com/umahmood/haversine"

// DistanceMeters computes the great-circle distance between two coordinates.
// Flat-euclidean math drifts by meters at campus scale, which matters against
// geofence radii of a few tens of meters.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lon1},
		haversine.Coord{Lat: lat2, Lon: lon2},
	)
	return km * 1000
}
