package models

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Step Gate + Document Policy Test Suite
// =============================================================================

type StepGateSuite struct {
	suite.Suite
}

func TestStepGateSuite(t *testing.T) {
	suite.Run(t, new(StepGateSuite))
}

// =============================================================================
// Step 1 Gate Tests
// =============================================================================

func (s *StepGateSuite) TestStep1Gate() {
	s.Run("incomplete contact info blocks step 1", func() {
		data := FormData{FirstName: "Yasmine"}
		s.False(CanProceed(Step1Info, data, nil))
		s.Contains(MissingForStep(Step1Info, data, nil), "last_name")
	})

	s.Run("completing the missing field opens the gate", func() {
		data := FormData{
			FirstName: "Yasmine",
			LastName:  "El Mansouri",
			Email:     "yasmine@example.com",
			Phone:     "+49151000000",
			Country:   "DE",
		}
		s.True(CanProceed(Step1Info, data, nil))
		s.Empty(MissingForStep(Step1Info, data, nil))
	})
}

// =============================================================================
// Step 2 Gate Tests
// =============================================================================

func (s *StepGateSuite) TestStep2Gate() {
	s.Run("profession, category and languages are all required", func() {
		missing := MissingForStep(Step2Profile, FormData{Category: "lawyer"}, nil)
		s.Contains(missing, "profession_type")
		s.Contains(missing, "languages")
		s.NotContains(missing, "category")
	})

	s.Run("complete profile opens the gate", func() {
		data := FormData{
			ProfessionType: ProfessionRegulated,
			Category:       "lawyer",
			Languages:      []string{"fr"},
		}
		s.True(CanProceed(Step2Profile, data, nil))
	})
}

// =============================================================================
// Step 3 Gate Tests (Document Policy)
// =============================================================================

func (s *StepGateSuite) TestStep3Gate() {
	partialSet := []DocumentType{DocumentBusinessRegistry, DocumentInsurance}

	s.Run("non-regulated profession passes with registry extract and insurance", func() {
		data := FormData{ProfessionType: ProfessionNonRegulated}
		s.True(CanProceed(Step3Documents, data, partialSet))
	})

	s.Run("regulated profession is blocked with the same two documents", func() {
		data := FormData{ProfessionType: ProfessionRegulated}
		s.False(CanProceed(Step3Documents, data, partialSet))

		missing := MissingForStep(Step3Documents, data, partialSet)
		s.ElementsMatch([]string{
			string(DocumentDiploma),
			string(DocumentIdentity),
			string(DocumentProRegistration),
			string(DocumentCharter),
		}, missing)
	})

	s.Run("regulated profession passes with the full set", func() {
		data := FormData{ProfessionType: ProfessionRegulated}
		s.True(CanProceed(Step3Documents, data, RequiredDocuments(ProfessionRegulated)))
	})

	s.Run("unknown profession type reports profession_type itself", func() {
		missing := MissingForStep(Step3Documents, FormData{}, partialSet)
		s.Equal([]string{"profession_type"}, missing)
	})
}

// =============================================================================
// Step 4 + 5 Gate Tests
// =============================================================================

func (s *StepGateSuite) TestStep4Gate() {
	s.Run("plan is required", func() {
		s.False(CanProceed(Step4Plan, FormData{}, nil))
		s.True(CanProceed(Step4Plan, FormData{Plan: PlanVisible}, nil))
	})

	s.Run("unknown plan is rejected", func() {
		s.False(CanProceed(Step4Plan, FormData{Plan: Plan("gold")}, nil))
	})
}

func (s *StepGateSuite) TestStep5Gate() {
	s.Run("preview has no gate of its own", func() {
		s.True(CanProceed(Step5Preview, FormData{}, nil))
	})
}

// =============================================================================
// Required Documents Tests
// =============================================================================

func (s *StepGateSuite) TestRequiredDocuments() {
	s.Run("regulated professions require all six documents", func() {
		s.Len(RequiredDocuments(ProfessionRegulated), 6)
	})

	s.Run("non-regulated professions require two documents", func() {
		s.Equal(
			[]DocumentType{DocumentBusinessRegistry, DocumentInsurance},
			RequiredDocuments(ProfessionNonRegulated),
		)
	})

	s.Run("missing documents preserve policy order", func() {
		missing := MissingDocuments(ProfessionRegulated, []DocumentType{DocumentIdentity})
		s.Equal([]DocumentType{
			DocumentDiploma,
			DocumentProRegistration,
			DocumentBusinessRegistry,
			DocumentCharter,
			DocumentInsurance,
		}, missing)
	})

	s.Run("complete set reports nothing missing", func() {
		s.Empty(MissingDocuments(ProfessionNonRegulated, []DocumentType{
			DocumentInsurance, DocumentBusinessRegistry,
		}))
	})
}
