package models

// FormData is the flat record of wizard inputs. It is a superset of all
// steps' fields; everything is optional because fields arrive incrementally
// as the user progresses. The zero value means "not provided yet".
type FormData struct {
	FirstName      string         `json:"first_name,omitempty"`
	LastName       string         `json:"last_name,omitempty"`
	Email          string         `json:"email,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	Country        string         `json:"country,omitempty"`
	City           string         `json:"city,omitempty"`
	ProfessionType ProfessionType `json:"profession_type,omitempty"`
	Category       string         `json:"category,omitempty"`
	Specialty      string         `json:"specialty,omitempty"`
	Languages      []string       `json:"languages,omitempty"`
	Bio            string         `json:"bio,omitempty"`
	PhotoURL       string         `json:"photo_url,omitempty"`
	Plan           Plan           `json:"plan,omitempty"`
}

// Merge returns the union of f and other, with other winning on collisions.
// Zero values in other never erase values already present in f, which is what
// keeps FormData monotonically enriched across saves.
func (f FormData) Merge(other FormData) FormData {
	out := f
	if other.FirstName != "" {
		out.FirstName = other.FirstName
	}
	if other.LastName != "" {
		out.LastName = other.LastName
	}
	if other.Email != "" {
		out.Email = other.Email
	}
	if other.Phone != "" {
		out.Phone = other.Phone
	}
	if other.Country != "" {
		out.Country = other.Country
	}
	if other.City != "" {
		out.City = other.City
	}
	if other.ProfessionType != "" {
		out.ProfessionType = other.ProfessionType
	}
	if other.Category != "" {
		out.Category = other.Category
	}
	if other.Specialty != "" {
		out.Specialty = other.Specialty
	}
	if len(other.Languages) > 0 {
		out.Languages = other.Languages
	}
	if other.Bio != "" {
		out.Bio = other.Bio
	}
	if other.PhotoURL != "" {
		out.PhotoURL = other.PhotoURL
	}
	if other.Plan != "" {
		out.Plan = other.Plan
	}
	return out
}

// Plan is the subscription tier chosen at step 4.
type Plan string

const (
	PlanBasic   Plan = "basic"
	PlanVisible Plan = "visible"
	PlanPremium Plan = "premium"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanBasic, PlanVisible, PlanPremium:
		return true
	}
	return false
}
