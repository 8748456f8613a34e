package records

import "strings"

// Sections are the labeled parts a record description is composed from.
type Sections struct {
	IssuingHospital string
	Objective       string
	Diagnosis       string
	Prescriptions   string
	Medicines       string
	Tests           string
	FollowUp        string
	Notes           string
}

// ComposeDescription renders every non-blank section as "Label:\nvalue",
// separated by blank lines, in a fixed order.
func ComposeDescription(s Sections) string {
	parts := []struct {
		label string
		value string
	}{
		{"Issuing Hospital", s.IssuingHospital},
		{"Objective", s.Objective},
		{"Diagnosis", s.Diagnosis},
		{"Prescriptions", s.Prescriptions},
		{"Medicines", s.Medicines},
		{"Tests", s.Tests},
		{"Follow-up", s.FollowUp},
		{"Notes", s.Notes},
	}

	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		value := strings.TrimSpace(p.value)
		if value == "" {
			continue
		}
		blocks = append(blocks, p.label+":\n"+value)
	}
	return strings.Join(blocks, "\n\n")
}

func (s Sections) IsEmpty() bool {
	return ComposeDescription(s) == ""
}
