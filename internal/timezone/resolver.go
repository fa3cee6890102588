// Package timezone converts UTC instants into calendar fields for the
// timezone of the country a stream was played from.
package timezone

import (
	"fmt"
	"sync"
	"time"

	// Embedded zone data keeps results identical across hosts.
	_ "time/tzdata"
)

// countryZones maps ISO country codes to the IANA zone used for that country.
// Countries spanning several zones use their most populous one.
var countryZones = map[string]string{
	"US": "America/New_York", "GB": "Europe/London", "CA": "America/Toronto",
	"AU": "Australia/Sydney", "JP": "Asia/Tokyo", "IN": "Asia/Kolkata",
	"DE": "Europe/Berlin", "FR": "Europe/Paris", "IT": "Europe/Rome",
	"ES": "Europe/Madrid", "MX": "America/Mexico_City", "BR": "America/Sao_Paulo",
	"ZA": "Africa/Johannesburg", "SG": "Asia/Singapore", "KR": "Asia/Seoul",
	"NZ": "Pacific/Auckland", "NL": "Europe/Amsterdam", "SE": "Europe/Stockholm",
	"CH": "Europe/Zurich", "AT": "Europe/Vienna", "PL": "Europe/Warsaw",
	"RU": "Europe/Moscow", "TR": "Europe/Istanbul", "UA": "Europe/Kyiv",
	"CN": "Asia/Shanghai", "HK": "Asia/Hong_Kong", "TH": "Asia/Bangkok",
	"MY": "Asia/Kuala_Lumpur", "ID": "Asia/Jakarta", "PH": "Asia/Manila",
	"VN": "Asia/Ho_Chi_Minh", "IL": "Asia/Jerusalem", "AE": "Asia/Dubai",
	"SA": "Asia/Riyadh", "NG": "Africa/Lagos", "EG": "Africa/Cairo",
	"KE": "Africa/Nairobi", "AR": "America/Argentina/Buenos_Aires", "CL": "America/Santiago",
	"CO": "America/Bogota", "PE": "America/Lima", "CZ": "Europe/Prague",
	"PT": "Europe/Lisbon", "GR": "Europe/Athens", "HU": "Europe/Budapest",
	"IE": "Europe/Dublin", "DK": "Europe/Copenhagen", "NO": "Europe/Oslo",
	"FI": "Europe/Helsinki", "BE": "Europe/Brussels", "LU": "Europe/Luxembourg",
}

var weekdayIndex = map[string]int{
	"Sunday": 0, "Monday": 1, "Tuesday": 2, "Wednesday": 3,
	"Thursday": 4, "Friday": 5, "Saturday": 6,
}

var (
	locations map[string]*time.Location
	loadOnce  sync.Once
)

// LocalTime is the calendar breakdown of an instant in a country's timezone.
type LocalTime struct {
	Year      int
	Month     int // 0 = January
	Day       int
	Hour      int
	Minute    int
	Second    int
	DayOfWeek int // 0 = Sunday
}

// DateKey formats the local date as YYYY-MM-DD.
func (lt LocalTime) DateKey() string {
	return fmt.Sprintf("%04d-%02d-%02d", lt.Year, lt.Month+1, lt.Day)
}

// MonthKey formats the local month as YYYY-MM.
func (lt LocalTime) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", lt.Year, lt.Month+1)
}

// ZoneName returns the IANA zone for a country code, or "UTC" when the code is
// empty or unknown.
func ZoneName(countryCode string) string {
	if zone, ok := countryZones[countryCode]; ok {
		return zone
	}
	return "UTC"
}

// Location returns the loaded *time.Location for a country code.
func Location(countryCode string) *time.Location {
	loadOnce.Do(loadLocations)
	if loc, ok := locations[ZoneName(countryCode)]; ok {
		return loc
	}
	return time.UTC
}

// Localize converts instant into calendar fields in the timezone of countryCode.
// DayOfWeek is read from the weekday name of the same localized instant, so it
// always agrees with Year/Month/Day.
func Localize(instant time.Time, countryCode string) LocalTime {
	local := instant.In(Location(countryCode))
	return LocalTime{
		Year:      local.Year(),
		Month:     int(local.Month()) - 1,
		Day:       local.Day(),
		Hour:      local.Hour(),
		Minute:    local.Minute(),
		Second:    local.Second(),
		DayOfWeek: weekdayIndex[local.Format("Monday")],
	}
}

func loadLocations() {
	locations = make(map[string]*time.Location, len(countryZones))
	for _, zone := range countryZones {
		if _, ok := locations[zone]; ok {
			continue
		}
		loc, err := time.LoadLocation(zone)
		if err != nil {
			continue
		}
		locations[zone] = loc
	}
}
