package aprs

import (
	"fmt"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/tzneal/coordconv"
)

// HemisphereRuneToCoordconvHemisphere and HemisphereToRune mirror
// doismellburning/samoyed's src/coordconv.go helpers exactly, adapted
// from free functions in package direwolf into this package's
// boundary (never imported by engine).
func HemisphereRuneToCoordconvHemisphere(hemi rune) coordconv.Hemisphere {
	switch hemi {
	case 'N':
		return coordconv.HemisphereNorth
	case 'S':
		return coordconv.HemisphereSouth
	default:
		return coordconv.HemisphereInvalid
	}
}

func HemisphereToRune(h coordconv.Hemisphere) rune {
	switch h {
	case coordconv.HemisphereNorth:
		return 'N'
	case coordconv.HemisphereSouth:
		return 'S'
	case coordconv.HemisphereInvalid:
		return '!'
	default:
		return '?'
	}
}

// UTM converts decimal-degree latitude/longitude to a UTM coordinate
// string "zone hemisphere easting northing", supplementing the plain
// lat/lon the core spec carries on the wire.
func UTM(lat, lon float64) (string, error) {
	latlng := s2.LatLng{Lat: s1.Angle(d2r(lat)), Lng: s1.Angle(d2r(lon))}
	coord, err := coordconv.DefaultUTMConverter.ConvertFromGeodetic(latlng, 0)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d%c %.0f %.0f", coord.Zone, HemisphereToRune(coord.Hemisphere), coord.Easting, coord.Northing), nil
}

// MGRS converts decimal-degree latitude/longitude to an MGRS string at
// the given precision (1-5), matching cmd/samoyed-ll2utm's practice of
// trying MGRS conversion as a secondary representation.
func MGRS(lat, lon float64, precision int) (string, error) {
	latlng := s2.LatLng{Lat: s1.Angle(d2r(lat)), Lng: s1.Angle(d2r(lon))}
	coord, err := coordconv.DefaultMGRSConverter.ConvertFromGeodetic(latlng, precision)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s", coord), nil
}
