package aggregate

import (
	"sort"

	"streamstats/internal/ranking"
	"streamstats/internal/timezone"
)

// Calendar holds the timezone-adjusted buckets. Only timestamped events are
// counted; each is placed in the timezone of its connection country.
type Calendar struct {
	Days  [7]int64  // ms by weekday, 0 = Sunday
	Hours [24]int64 // ms by local hour

	// Years are in ascending order.
	Years []YearAggregate
	// Months are in first-encountered order.
	Months []MonthAggregate
	// VarietyDays are in first-encountered order.
	VarietyDays []VarietyDay
}

type yearAcc struct {
	YearAggregate
	tracks  map[string]struct{}
	artists map[string]struct{}
}

// ComputeCalendar buckets events by local weekday, hour, year, month and day.
func ComputeCalendar(events []PlayEvent) *Calendar {
	cal := &Calendar{}

	years := make(map[int]*yearAcc)
	monthPlays := ranking.NewTally[string]()
	monthMs := make(map[string]int64)
	dayTracks := make(map[string]map[string]struct{})
	var dayOrder []string

	for _, e := range events {
		if !e.HasTimestamp() {
			continue
		}
		local := timezone.Localize(e.Timestamp, e.CountryCode)

		cal.Days[local.DayOfWeek] += e.MsPlayed
		cal.Hours[local.Hour] += e.MsPlayed

		y, ok := years[local.Year]
		if !ok {
			y = &yearAcc{
				YearAggregate: YearAggregate{Year: local.Year},
				tracks:        make(map[string]struct{}),
				artists:       make(map[string]struct{}),
			}
			years[local.Year] = y
		}
		y.TotalMsPlayed += e.MsPlayed
		y.PlayCount++
		if e.TrackName != "" {
			y.tracks[e.TrackName] = struct{}{}
		}
		if e.ArtistName != "" {
			y.artists[e.ArtistName] = struct{}{}
		}

		month := local.MonthKey()
		monthPlays.Add(month, 1)
		monthMs[month] += e.MsPlayed

		date := local.DateKey()
		tracks, ok := dayTracks[date]
		if !ok {
			tracks = make(map[string]struct{})
			dayTracks[date] = tracks
			dayOrder = append(dayOrder, date)
		}
		if e.TrackName != "" {
			tracks[e.TrackName] = struct{}{}
		}
	}

	cal.Years = make([]YearAggregate, 0, len(years))
	for _, y := range years {
		agg := y.YearAggregate
		agg.UniqueSongs = len(y.tracks)
		agg.UniqueArtists = len(y.artists)
		cal.Years = append(cal.Years, agg)
	}
	sort.Slice(cal.Years, func(i, j int) bool {
		return cal.Years[i].Year < cal.Years[j].Year
	})

	cal.Months = make([]MonthAggregate, 0, monthPlays.Len())
	for _, m := range monthPlays.Entries() {
		cal.Months = append(cal.Months, MonthAggregate{
			Month:         m.Key,
			PlayCount:     m.Count,
			TotalMsPlayed: monthMs[m.Key],
		})
	}

	cal.VarietyDays = make([]VarietyDay, 0, len(dayOrder))
	for _, date := range dayOrder {
		cal.VarietyDays = append(cal.VarietyDays, VarietyDay{Date: date, UniqueSongs: len(dayTracks[date])})
	}

	return cal
}

// DayBuckets returns the weekday buckets with their names.
func (c *Calendar) DayBuckets() []DayBucket {
	out := make([]DayBucket, len(c.Days))
	for i, ms := range c.Days {
		out[i] = DayBucket{Day: i, Name: DayNames[i], TotalMsPlayed: ms}
	}
	return out
}

// HourBuckets returns the 24 hour-of-day buckets.
func (c *Calendar) HourBuckets() []HourBucket {
	out := make([]HourBucket, len(c.Hours))
	for i, ms := range c.Hours {
		out[i] = HourBucket{Hour: i, TotalMsPlayed: ms}
	}
	return out
}

// SortedMonths returns the months in ascending YYYY-MM order.
func (c *Calendar) SortedMonths() []MonthAggregate {
	out := make([]MonthAggregate, len(c.Months))
	copy(out, c.Months)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month < out[j].Month
	})
	return out
}

// HourRangeMs sums listening time over local hours in [from, to), wrapping
// past midnight when to <= from.
func (c *Calendar) HourRangeMs(from, to int) int64 {
	var total int64
	for h := from; h != to; h = (h + 1) % len(c.Hours) {
		total += c.Hours[h]
	}
	return total
}
