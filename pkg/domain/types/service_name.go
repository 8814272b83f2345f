package types

import "fmt"

// ServiceName represents a schedulable service
type ServiceName string

const (
	ServiceGmail    ServiceName = "Gmail"
	ServiceCalendar ServiceName = "Calendar"
	ServiceLinkedIn ServiceName = "LinkedIn"
)

// AllServiceNames returns all valid service names
func AllServiceNames() []ServiceName {
	return []ServiceName{
		ServiceGmail,
		ServiceCalendar,
		ServiceLinkedIn,
	}
}

// IsValid checks if the service name is valid
func (s ServiceName) IsValid() bool {
	switch s {
	case ServiceGmail,
		ServiceCalendar,
		ServiceLinkedIn:
		return true
	default:
		return false
	}
}

// String returns the string representation of the service name
func (s ServiceName) String() string {
	return string(s)
}

// ParseServiceName parses a string into a ServiceName
func ParseServiceName(s string) (ServiceName, error) {
	name := ServiceName(s)
	if !name.IsValid() {
		return "", fmt.Errorf("invalid service name: %s", s)
	}
	return name, nil
}
