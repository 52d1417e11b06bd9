package models

import "fmt"

// Step is a 1-based wizard position. Forward movement from step N is guarded
// by the per-step completeness predicate below; backward movement is always
// permitted.
type Step int

const (
	Step1Info      Step = 1
	Step2Profile   Step = 2
	Step3Documents Step = 3
	Step4Plan      Step = 4
	Step5Preview   Step = 5
)

func (s Step) Valid() bool { return s >= Step1Info && s <= Step5Preview }

func (s Step) String() string { return fmt.Sprintf("step%d", int(s)) }

// CanProceed reports whether the wizard may advance past the given step.
// docs is the set of document types already provided (only consulted for the
// documents step).
func CanProceed(step Step, data FormData, docs []DocumentType) bool {
	return len(MissingForStep(step, data, docs)) == 0
}

// MissingForStep returns the names of the requirements still missing to
// advance past the given step. Empty means the gate is open.
func MissingForStep(step Step, data FormData, docs []DocumentType) []string {
	var missing []string
	switch step {
	case Step1Info:
		if data.FirstName == "" {
			missing = append(missing, "first_name")
		}
		if data.LastName == "" {
			missing = append(missing, "last_name")
		}
		if data.Email == "" {
			missing = append(missing, "email")
		}
		if data.Phone == "" {
			missing = append(missing, "phone")
		}
		if data.Country == "" {
			missing = append(missing, "country")
		}
	case Step2Profile:
		if !data.ProfessionType.Valid() {
			missing = append(missing, "profession_type")
		}
		if data.Category == "" {
			missing = append(missing, "category")
		}
		if len(data.Languages) == 0 {
			missing = append(missing, "languages")
		}
	case Step3Documents:
		if !data.ProfessionType.Valid() {
			missing = append(missing, "profession_type")
			break
		}
		for _, t := range MissingDocuments(data.ProfessionType, docs) {
			missing = append(missing, string(t))
		}
	case Step4Plan:
		if !data.Plan.Valid() {
			missing = append(missing, "plan")
		}
	case Step5Preview:
		// Preview has no inputs of its own; finalize validation takes over.
	}
	return missing
}
