package registry

import (
	"time"

	"github.com/yukeru/gelande/internal/resort"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func dayHours() *resort.OperatingHours {
	return &resort.OperatingHours{
		Weekday: resort.HoursRange{Open: "08:30", Close: "16:30"},
		Weekend: resort.HoursRange{Open: "08:00", Close: "17:00"},
	}
}

func nightHours() *resort.OperatingHours {
	return &resort.OperatingHours{
		Weekday: resort.HoursRange{Open: "08:30", Close: "20:30"},
		Weekend: resort.HoursRange{Open: "08:00", Close: "21:00"},
	}
}

// Catalog returns the curated resorts reachable on a day trip from Tokyo.
// Coordinates are the resort base areas.
func Catalog() []resort.Resort {
	return []resort.Resort{
		{
			ID: "gala-yuzawa", Name: "GALA Yuzawa",
			Coord:        resort.Coordinate{Lat: 36.9357, Lon: 138.7999},
			SeasonStatus: resort.SeasonClosed,
			OpeningDate:  date(2025, time.December, 20),
			Hours:        dayHours(),
			Priority:     8, Difficulty: "mixed", HasPark: true,
		},
		{
			ID: "kagura", Name: "Kagura",
			Coord:        resort.Coordinate{Lat: 36.8622, Lon: 138.7776},
			SeasonStatus: resort.SeasonClosed,
			OpeningDate:  date(2025, time.November, 22),
			Hours:        dayHours(),
			Priority:     9, Difficulty: "mixed", HasPark: true,
		},
		{
			ID: "naeba", Name: "Naeba",
			Coord:        resort.Coordinate{Lat: 36.7799, Lon: 138.7889},
			SeasonStatus: resort.SeasonClosed,
			OpeningDate:  date(2025, time.December, 13),
			Hours:        nightHours(),
			Priority:     8, Difficulty: "mixed", HasPark: true, HasNightSki: true,
		},
		{
			ID: "kawaba", Name: "Kawaba Ski Resort",
			Coord:        resort.Coordinate{Lat: 36.7605, Lon: 139.1582},
			SeasonStatus: resort.SeasonClosed,
			OpeningDate:  date(2025, time.December, 7),
			Hours:        dayHours(),
			Priority:     7, Difficulty: "advanced", HasPark: true,
		},
		{
			ID: "norn-minakami", Name: "Norn Minakami",
			Coord:        resort.Coordinate{Lat: 36.7246, Lon: 138.9754},
			SeasonStatus: resort.SeasonClosed,
			OpeningDate:  date(2025, time.December, 13),
			Hours:        nightHours(),
			Priority:     5, Difficulty: "beginner", HasNightSki: true,
		},
		{
			ID: "tanbara", Name: "Tambara Ski Park",
			Coord:        resort.Coordinate{Lat: 36.6831, Lon: 139.1390},
			SeasonStatus: resort.SeasonClosed,
			OpeningDate:  date(2025, time.November, 29),
			Hours:        dayHours(),
			Priority:     6, Difficulty: "beginner",
		},
		{
			ID: "marunuma-kogen", Name: "Marunuma Kogen",
			Coord:        resort.Coordinate{Lat: 36.8282, Lon: 139.3201},
			SeasonStatus: resort.SeasonClosed,
			OpeningDate:  date(2025, time.November, 28),
			Hours:        dayHours(),
			Priority:     7, Difficulty: "mixed", HasPark: true,
		},
		{
			ID: "manza-onsen", Name: "Manza Onsen Ski Resort",
			Coord:        resort.Coordinate{Lat: 36.6349, Lon: 138.5101},
			SeasonStatus: resort.SeasonClosed,
			OpeningDate:  date(2025, time.December, 13),
			Hours:        dayHours(),
			Priority:     4, Difficulty: "beginner",
		},
		{
			ID: "karuizawa-prince", Name: "Karuizawa Prince Hotel Ski Resort",
			Coord:        resort.Coordinate{Lat: 36.3401, Lon: 138.6364},
			SeasonStatus: resort.SeasonClosed,
			OpeningDate:  date(2025, time.November, 1),
			Hours:        dayHours(),
			Priority:     6, Difficulty: "beginner", HasPark: true,
		},
		{
			ID: "fujiten", Name: "Fujiten Snow Resort",
			Coord:        resort.Coordinate{Lat: 35.3653, Lon: 138.7184},
			SeasonStatus: resort.SeasonClosed,
			OpeningDate:  date(2025, time.December, 6),
			Hours:        dayHours(),
			Priority:     5, Difficulty: "beginner", HasPark: true,
		},
		{
			ID: "hunter-mountain-shiobara", Name: "Hunter Mountain Shiobara",
			Coord:        resort.Coordinate{Lat: 36.9466, Lon: 139.8502},
			SeasonStatus: resort.SeasonClosed,
			OpeningDate:  date(2025, time.December, 5),
			Hours:        dayHours(),
			Priority:     6, Difficulty: "mixed", HasPark: true,
		},
		{
			ID: "hakuba-happo-one", Name: "Hakuba Happo-one",
			Coord:        resort.Coordinate{Lat: 36.6979, Lon: 137.8316},
			SeasonStatus: resort.SeasonClosed,
			OpeningDate:  date(2025, time.November, 29),
			Hours:        dayHours(),
			Priority:     9, Difficulty: "advanced",
		},
	}
}
