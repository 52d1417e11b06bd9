package models

import regmodels "prospace/internal/registration/models"

// Category is one entry in the professional-services taxonomy that populates
// the step-2 selectors. Slug is the stable identifier stored on drafts and
// accounts.
type Category struct {
	Slug           string                   `json:"slug"`
	Name           string                   `json:"name"`
	ProfessionType regmodels.ProfessionType `json:"profession_type"`
	Specialties    []string                 `json:"specialties,omitempty"`
}
