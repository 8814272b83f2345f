package model

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/domain/types"
)

// Schedule describes when a service runs. The wire format depends on the
// frequency: daily/hourly carry a "time" field, weekly carries "hour" and
// "day_of_week". Internally a single time-of-day value is kept so that
// switching frequency back and forth preserves what the user entered.
type Schedule struct {
	Frequency types.Frequency
	TimeOfDay string        // HH:MM
	DayOfWeek types.Weekday // weekly only
}

// NewSchedule creates a schedule for a non-weekly frequency
func NewSchedule(freq types.Frequency, timeOfDay string) Schedule {
	return Schedule{
		Frequency: freq,
		TimeOfDay: timeOfDay,
	}
}

// NewWeeklySchedule creates a weekly schedule
func NewWeeklySchedule(day types.Weekday, hour string) Schedule {
	return Schedule{
		Frequency: types.FrequencyWeekly,
		TimeOfDay: hour,
		DayOfWeek: day,
	}
}

// SetFrequency changes the frequency while preserving the entered
// time-of-day. Switching to weekly defaults the day to Monday when none was
// previously chosen.
func (s *Schedule) SetFrequency(freq types.Frequency) {
	s.Frequency = freq
	if freq == types.FrequencyWeekly && s.DayOfWeek == "" {
		s.DayOfWeek = types.WeekdayMon
	}
}

// Validate checks the schedule invariants: a weekly schedule must carry a
// day of week, every schedule must carry a parseable HH:MM time-of-day.
func (s Schedule) Validate() error {
	if !s.Frequency.IsValid() {
		return goerr.New("invalid schedule frequency", goerr.V("frequency", s.Frequency))
	}
	if _, err := time.Parse("15:04", s.TimeOfDay); err != nil {
		return goerr.Wrap(err, "schedule time must be HH:MM", goerr.V("time", s.TimeOfDay))
	}
	if s.Frequency == types.FrequencyWeekly && !s.DayOfWeek.IsValid() {
		return goerr.New("weekly schedule requires a day of week", goerr.V("day_of_week", s.DayOfWeek))
	}
	return nil
}

type scheduleJSON struct {
	Frequency types.Frequency `json:"frequency"`
	Time      string          `json:"time,omitempty"`
	Hour      string          `json:"hour,omitempty"`
	DayOfWeek types.Weekday   `json:"day_of_week,omitempty"`
}

// MarshalJSON emits exactly the fields of the active schedule form: weekly
// schedules never carry "time", non-weekly schedules never carry "hour" or
// "day_of_week".
func (s Schedule) MarshalJSON() ([]byte, error) {
	out := scheduleJSON{Frequency: s.Frequency}
	if s.Frequency == types.FrequencyWeekly {
		out.Hour = s.TimeOfDay
		out.DayOfWeek = s.DayOfWeek
	} else {
		out.Time = s.TimeOfDay
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts either schedule form
func (s *Schedule) UnmarshalJSON(data []byte) error {
	var in scheduleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return goerr.Wrap(err, "failed to parse schedule")
	}

	s.Frequency = in.Frequency
	s.DayOfWeek = in.DayOfWeek
	if in.Time != "" {
		s.TimeOfDay = in.Time
	} else {
		s.TimeOfDay = in.Hour
	}
	return nil
}
