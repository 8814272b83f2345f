package types

import "fmt"

// Weekday represents a day of the week in the backend's schedule format
type Weekday string

const (
	WeekdayMon Weekday = "mon"
	WeekdayTue Weekday = "tue"
	WeekdayWed Weekday = "wed"
	WeekdayThu Weekday = "thu"
	WeekdayFri Weekday = "fri"
	WeekdaySat Weekday = "sat"
	WeekdaySun Weekday = "sun"
)

// AllWeekdays returns all valid weekdays, Monday first
func AllWeekdays() []Weekday {
	return []Weekday{
		WeekdayMon,
		WeekdayTue,
		WeekdayWed,
		WeekdayThu,
		WeekdayFri,
		WeekdaySat,
		WeekdaySun,
	}
}

// IsValid checks if the weekday is valid
func (d Weekday) IsValid() bool {
	switch d {
	case WeekdayMon,
		WeekdayTue,
		WeekdayWed,
		WeekdayThu,
		WeekdayFri,
		WeekdaySat,
		WeekdaySun:
		return true
	default:
		return false
	}
}

// String returns the string representation of the weekday
func (d Weekday) String() string {
	return string(d)
}

var weekdayNames = map[Weekday]string{
	WeekdayMon: "Monday",
	WeekdayTue: "Tuesday",
	WeekdayWed: "Wednesday",
	WeekdayThu: "Thursday",
	WeekdayFri: "Friday",
	WeekdaySat: "Saturday",
	WeekdaySun: "Sunday",
}

// DisplayName returns the full English name of the weekday
func (d Weekday) DisplayName() string {
	if name, ok := weekdayNames[d]; ok {
		return name
	}
	return string(d)
}

// ParseWeekday parses a string into a Weekday
func ParseWeekday(s string) (Weekday, error) {
	day := Weekday(s)
	if !day.IsValid() {
		return "", fmt.Errorf("invalid weekday: %s", s)
	}
	return day, nil
}
