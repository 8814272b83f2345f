package types

import "fmt"

// Frequency represents how often a scheduled service runs
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyHourly Frequency = "hourly"
	FrequencyWeekly Frequency = "weekly"
)

// AllFrequencies returns all valid frequencies
func AllFrequencies() []Frequency {
	return []Frequency{
		FrequencyDaily,
		FrequencyHourly,
		FrequencyWeekly,
	}
}

// IsValid checks if the frequency is valid
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily,
		FrequencyHourly,
		FrequencyWeekly:
		return true
	default:
		return false
	}
}

// String returns the string representation of the frequency
func (f Frequency) String() string {
	return string(f)
}

// ParseFrequency parses a string into a Frequency
func ParseFrequency(s string) (Frequency, error) {
	freq := Frequency(s)
	if !freq.IsValid() {
		return "", fmt.Errorf("invalid frequency: %s", s)
	}
	return freq, nil
}
