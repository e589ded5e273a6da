package aprs

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// RangeBearing returns the great-circle distance in kilometers and the
// initial bearing in degrees from (fromLat,fromLon) to (toLat,toLon),
// both in decimal degrees. Used by cmd/aprsmon to report range to a
// heard station; never imported by engine.
//
// Grounded on doismellburning/samoyed cmd/samoyed-ll2utm/main.go's use
// of golang/geo/s2.LatLng for geodetic coordinates.
func RangeBearing(fromLat, fromLon, toLat, toLon float64) (km, bearingDeg float64) {
	from := s2.LatLngFromDegrees(fromLat, fromLon)
	to := s2.LatLngFromDegrees(toLat, toLon)

	const earthRadiusKM = 6371.0088
	angle := from.Distance(to)
	km = float64(angle) * earthRadiusKM

	bearingDeg = initialBearing(from, to)
	return km, bearingDeg
}

func initialBearing(from, to s2.LatLng) float64 {
	lat1 := float64(from.Lat)
	lat2 := float64(to.Lat)
	dLon := float64(to.Lng - from.Lng)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	theta := math.Atan2(y, x)
	deg := theta * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// d2r mirrors doismellburning/samoyed's D2R helper, used when building
// an s1.Angle from decimal-degree input directly instead of via
// s2.LatLngFromDegrees.
func d2r(degrees float64) s1.Angle {
	return s1.Angle(degrees * math.Pi / 180)
}
