package store

import (
	"context"

	regmodels "prospace/internal/registration/models"
	"prospace/internal/taxonomy/models"
)

// Seed loads the default category taxonomy. Regulated categories drive the
// heavier verification-document policy at step 3.
func Seed(ctx context.Context, s *InMemory) error {
	categories := []*models.Category{
		{
			Slug:           "lawyer",
			Name:           "Lawyer",
			ProfessionType: regmodels.ProfessionRegulated,
			Specialties:    []string{"Business law", "Immigration law", "Family law", "Real estate law"},
		},
		{
			Slug:           "doctor",
			Name:           "Doctor",
			ProfessionType: regmodels.ProfessionRegulated,
			Specialties:    []string{"General practice", "Pediatrics", "Cardiology", "Dermatology"},
		},
		{
			Slug:           "accountant",
			Name:           "Chartered accountant",
			ProfessionType: regmodels.ProfessionRegulated,
			Specialties:    []string{"Bookkeeping", "Tax filing", "Payroll", "Audit"},
		},
		{
			Slug:           "notary",
			Name:           "Notary",
			ProfessionType: regmodels.ProfessionRegulated,
			Specialties:    []string{"Real estate", "Inheritance", "Family"},
		},
		{
			Slug:           "consultant",
			Name:           "Consultant",
			ProfessionType: regmodels.ProfessionNonRegulated,
			Specialties:    []string{"Business strategy", "Digital marketing", "Human resources"},
		},
		{
			Slug:           "coach",
			Name:           "Coach",
			ProfessionType: regmodels.ProfessionNonRegulated,
			Specialties:    []string{"Career coaching", "Life coaching", "Executive coaching"},
		},
		{
			Slug:           "translator",
			Name:           "Translator / Interpreter",
			ProfessionType: regmodels.ProfessionNonRegulated,
			Specialties:    []string{"Certified translation", "Interpreting", "Localization"},
		},
		{
			Slug:           "real-estate-agent",
			Name:           "Real estate agent",
			ProfessionType: regmodels.ProfessionNonRegulated,
			Specialties:    []string{"Residential", "Commercial", "Property management"},
		},
	}
	for _, category := range categories {
		if err := s.Put(ctx, category); err != nil {
			return err
		}
	}
	return nil
}
