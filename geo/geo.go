package geo

import "math"

// EarthRadiusMiles is the Earth radius used to convert angular distance to miles.
const EarthRadiusMiles = 3963.1676

const toRadians = math.Pi / 180.0

// Bearing returns the initial compass bearing in degrees in the range
// [0, 360) of a point moving through (lat, lon) with per second velocity
// (dlat, dlon). All parameters are in degrees. The velocity is treated as
// the displacement covered over the previous interval.
// See http://www.movable-type.co.uk/scripts/latlong.html for the formula.
func Bearing(lat, lon, dlat, dlon float64) float64 {
	lat *= toRadians
	dlat *= toRadians
	dlon *= toRadians

	lat1 := lat - dlat
	y := math.Sin(dlon) * math.Cos(lat)
	x := math.Cos(lat1)*math.Sin(lat) - math.Sin(lat1)*math.Cos(lat)*math.Cos(dlon)

	bearing := math.Atan2(y, x) / toRadians

	for bearing >= 360.0 {
		bearing -= 360.0
	}
	for bearing < 0.0 {
		bearing += 360.0
	}

	return bearing
}

// SpeedMPH returns the ground speed in miles per hour of a point moving
// through (lat, lon) with per second velocity (dlat, dlon). All parameters
// are in degrees. It applies the haversine formula to the one interval
// displacement to obtain the angular distance travelled per second.
func SpeedMPH(lat, lon, dlat, dlon float64) float64 {
	lat *= toRadians
	dlat *= toRadians
	dlon *= toRadians

	lat1 := lat - dlat
	sinHalfDlat := math.Sin(dlat / 2.0)
	sinHalfDlon := math.Sin(dlon / 2.0)
	a := sinHalfDlat*sinHalfDlat + math.Cos(lat1)*math.Cos(lat)*sinHalfDlon*sinHalfDlon

	radiansPerSecond := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1.0-a))

	milesPerSecond := radiansPerSecond * EarthRadiusMiles

	return milesPerSecond * 60.0 * 60.0
}
