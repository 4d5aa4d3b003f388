package calendar

import "time"

// Season is a weather season band.
type Season string

const (
	Winter      Season = "winter"
	Summer      Season = "summer"
	Monsoon     Season = "monsoon"
	PostMonsoon Season = "post_monsoon"
)

// SeasonFor returns the weather season for month: winter Dec-Feb, monsoon Jun-Sep,
// post-monsoon Oct-Nov, summer otherwise.
func SeasonFor(month time.Month) Season {
	switch month {
	case time.December, time.January, time.February:
		return Winter
	case time.June, time.July, time.August, time.September:
		return Monsoon
	case time.October, time.November:
		return PostMonsoon
	default:
		return Summer
	}
}

// CroppingSeason is an Indian sowing season.
type CroppingSeason string

const (
	Kharif CroppingSeason = "kharif"
	Rabi   CroppingSeason = "rabi"
	Zaid   CroppingSeason = "zaid"
)

// CroppingSeasonFor returns the sowing season for month: Kharif Jun-Sep,
// Rabi Oct-Feb, Zaid Mar-May.
func CroppingSeasonFor(month time.Month) CroppingSeason {
	switch {
	case month >= time.June && month <= time.September:
		return Kharif
	case month >= time.March && month <= time.May:
		return Zaid
	default:
		return Rabi
	}
}
