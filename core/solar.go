package core

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/skylight/model"
)

// SolarPosition computes the sun's azimuth and altitude for an observer
// at the given coordinates, using a standard low-precision algorithm
// (about ±1°). That is plenty for driving scene lighting; this is not an
// ephemeris.
//
// The caller is responsible for passing in-range latitude/longitude; the
// function is total over its documented domain and never fails.
func SolarPosition(utc time.Time, latitudeDeg, longitudeDeg float64) model.SolarAngles {
	utc = utc.UTC()

	// Continuous Julian-day offset since epoch J2000.0. go-satellite's
	// JDay is the same routine the orbital side of the ecosystem uses.
	jd := satellite.JDay(utc.Year(), int(utc.Month()), utc.Day(),
		utc.Hour(), utc.Minute(), utc.Second())
	n := jd - 2451545.0

	// Mean anomaly and the three-term equation of center.
	meanAnomaly := normalizeDegrees(357.5291 + 0.98560028*n)
	mRad := radians(meanAnomaly)
	center := 1.9148*math.Sin(mRad) + 0.0200*math.Sin(2*mRad) + 0.0003*math.Sin(3*mRad)

	// Ecliptic longitude and obliquity of the ecliptic.
	eclipticLon := normalizeDegrees(280.4665 + 0.98564736*n + center)
	obliquity := 23.4393 - 0.0000004*n

	lonRad := radians(eclipticLon)
	oblRad := radians(obliquity)

	// Equatorial coordinates: right ascension and declination.
	rightAscension := degrees(math.Atan2(math.Cos(oblRad)*math.Sin(lonRad), math.Cos(lonRad)))
	declination := math.Asin(clampUnit(math.Sin(oblRad) * math.Sin(lonRad)))

	// Local hour angle from Greenwich sidereal time and observer longitude.
	gmstDeg := degrees(satellite.ThetaG_JD(jd))
	hourAngle := radians(normalizeDegrees(gmstDeg + longitudeDeg - rightAscension))

	latRad := radians(latitudeDeg)

	sinAltitude := math.Sin(latRad)*math.Sin(declination) +
		math.Cos(latRad)*math.Cos(declination)*math.Cos(hourAngle)
	altitude := degrees(math.Asin(clampUnit(sinAltitude)))

	// atan2 yields azimuth measured from south; shift by 180° so 0° is
	// geographic north, matching the lighting tables downstream.
	azSouth := degrees(math.Atan2(
		math.Sin(hourAngle),
		math.Cos(hourAngle)*math.Sin(latRad)-math.Tan(declination)*math.Cos(latRad),
	))
	azimuth := normalizeDegrees(azSouth + 180.0)

	return model.SolarAngles{
		AzimuthDegrees:  azimuth,
		AltitudeDegrees: altitude,
	}
}
