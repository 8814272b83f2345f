package usecase

import "strings"

// missingFieldsMessage lists the empty fields in declaration order, e.g.
// "Email, Name are required" or "Password is required". It returns "" when
// every field has a value.
func missingFieldsMessage(values map[string]string, order ...string) string {
	var missing []string
	for _, name := range order {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	verb := "are"
	if len(missing) == 1 {
		verb = "is"
	}
	return strings.Join(missing, ", ") + " " + verb + " required"
}
