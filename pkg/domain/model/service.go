package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/domain/types"
)

// ServiceEntry is one configurable service in the plan. Disabling an entry
// hides it from submission but keeps its schedule, so re-enabling restores
// the prior settings.
type ServiceEntry struct {
	Name      types.ServiceName
	Enabled   bool
	Schedule  Schedule
	Connected bool
}

// Validate checks the entry and its schedule
func (e *ServiceEntry) Validate() error {
	if !e.Name.IsValid() {
		return goerr.New("invalid service name", goerr.V("name", e.Name))
	}
	if err := e.Schedule.Validate(); err != nil {
		return goerr.Wrap(err, "invalid schedule", goerr.V("service", e.Name))
	}
	return nil
}

// ServicePlan is the editable set of service entries. Edits are purely
// local until an explicit save.
type ServicePlan struct {
	Entries []*ServiceEntry
}

// DefaultServicePlan returns the initial plan: all services disabled with
// their stock schedules.
func DefaultServicePlan() *ServicePlan {
	return &ServicePlan{
		Entries: []*ServiceEntry{
			{
				Name:     types.ServiceGmail,
				Schedule: NewSchedule(types.FrequencyDaily, "09:00"),
			},
			{
				Name:     types.ServiceCalendar,
				Schedule: NewSchedule(types.FrequencyHourly, "00:30"),
			},
			{
				Name:     types.ServiceLinkedIn,
				Schedule: NewWeeklySchedule(types.WeekdayMon, "10:00"),
			},
		},
	}
}

// Entry returns the entry for the given service, or nil
func (p *ServicePlan) Entry(name types.ServiceName) *ServiceEntry {
	for _, e := range p.Entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Enabled returns the entries selected for submission
func (p *ServicePlan) Enabled() []*ServiceEntry {
	var out []*ServiceEntry
	for _, e := range p.Entries {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks every enabled entry
func (p *ServicePlan) Validate() error {
	for _, e := range p.Enabled() {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplyCredentialStatus merges the latest fetched credential status into the
// connected flags. The fetched status always supersedes local state.
func (p *ServicePlan) ApplyCredentialStatus(status *CredentialStatus) {
	if status == nil {
		return
	}
	for _, e := range p.Entries {
		switch e.Name {
		case types.ServiceGmail, types.ServiceCalendar:
			e.Connected = status.Google.Valid
		case types.ServiceLinkedIn:
			e.Connected = status.LinkedIn.Valid
		}
	}
}
