package storage

import "math"

const (
	earthRadiusMeters  = 6371000.0
	metersPerDegreeLat = 111320.0
	degToRad           = math.Pi / 180.0
	minLatCosine       = 0.01 // keeps the longitude delta finite near the poles
)

type latLngBox struct {
	minLat, maxLat float64
	minLng, maxLng float64
}

// boundingBox is a cheap rectangular prefilter around a point; the exact
// great-circle distance check runs on whatever survives it.
func boundingBox(lat, lng, radiusMeters float64) latLngBox {
	latDelta := radiusMeters / metersPerDegreeLat
	cosLat := math.Cos(lat * degToRad)
	if cosLat < minLatCosine {
		cosLat = minLatCosine
	}
	lngDelta := radiusMeters / (metersPerDegreeLat * cosLat)

	b := latLngBox{
		minLat: lat - latDelta,
		maxLat: lat + latDelta,
		minLng: lng - lngDelta,
		maxLng: lng + lngDelta,
	}
	b.minLat = math.Max(b.minLat, -90)
	b.maxLat = math.Min(b.maxLat, 90)
	b.minLng = math.Max(b.minLng, -180)
	b.maxLng = math.Min(b.maxLng, 180)
	return b
}

// haversineMeters is the great-circle distance between two points.
func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}
