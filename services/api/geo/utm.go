// Package geo converts gauge coordinates between ETRS89 / UTM zone 32N
// (EPSG:25832) and geographic WGS84 latitude/longitude (EPSG:4326).
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/wroge/wgs84"
)

// ErrOutOfDomain is returned for coordinates the projection cannot handle.
var ErrOutOfDomain = errors.New("coordinate outside projection domain")

const (
	zone = 32

	minEasting  = 100000.0
	maxEasting  = 1000000.0
	maxNorthing = 10000000.0
)

var (
	utmToLonLat = wgs84.ETRS89UTM(zone).To(wgs84.LonLat())
	lonLatToUTM = wgs84.LonLat().To(wgs84.ETRS89UTM(zone))
)

// ToLatLon converts an ETRS89 / UTM 32N easting/northing pair (metres) to
// latitude and longitude in degrees.
func ToLatLon(easting, northing float64) (lat, lon float64, err error) {
	if !finite(easting) || !finite(northing) {
		return 0, 0, fmt.Errorf("%w: easting=%v northing=%v", ErrOutOfDomain, easting, northing)
	}
	if easting < minEasting || easting >= maxEasting {
		return 0, 0, fmt.Errorf("%w: easting %.1f not in [%.0f, %.0f)", ErrOutOfDomain, easting, minEasting, maxEasting)
	}
	if northing < 0 || northing > maxNorthing {
		return 0, 0, fmt.Errorf("%w: northing %.1f not in [0, %.0f]", ErrOutOfDomain, northing, maxNorthing)
	}

	lon, lat, _ = utmToLonLat(easting, northing, 0)
	if !finite(lat) || !finite(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("%w: easting=%.1f northing=%.1f", ErrOutOfDomain, easting, northing)
	}
	return lat, lon, nil
}

// FromLatLon projects latitude/longitude in degrees into ETRS89 / UTM 32N.
func FromLatLon(lat, lon float64) (easting, northing float64, err error) {
	if !finite(lat) || !finite(lon) || lat < 0 || lat > 84 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("%w: lat=%v lon=%v", ErrOutOfDomain, lat, lon)
	}

	easting, northing, _ = lonLatToUTM(lon, lat, 0)
	if !finite(easting) || !finite(northing) {
		return 0, 0, fmt.Errorf("%w: lat=%v lon=%v", ErrOutOfDomain, lat, lon)
	}
	return easting, northing, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
