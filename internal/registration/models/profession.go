package models

// ProfessionType classifies a profession for verification purposes. Regulated
// professions (lawyers, doctors, ...) carry a heavier document burden than
// non-regulated ones (consultants, coaches, ...).
type ProfessionType string

const (
	ProfessionRegulated    ProfessionType = "regulated"
	ProfessionNonRegulated ProfessionType = "non-regulated"
)

func (p ProfessionType) Valid() bool {
	return p == ProfessionRegulated || p == ProfessionNonRegulated
}

// DocumentType identifies one of the verification documents collected at
// step 3.
type DocumentType string

const (
	DocumentDiploma          DocumentType = "diploma"
	DocumentIdentity         DocumentType = "identity"
	DocumentProRegistration  DocumentType = "professional_registration"
	DocumentBusinessRegistry DocumentType = "business_registry_extract"
	DocumentCharter          DocumentType = "signed_charter"
	DocumentInsurance        DocumentType = "liability_insurance"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentDiploma, DocumentIdentity, DocumentProRegistration,
		DocumentBusinessRegistry, DocumentCharter, DocumentInsurance:
		return true
	}
	return false
}

// RequiredDocuments returns the mandatory document set for a profession type.
// Regulated professions require the full set of six; non-regulated ones only
// the business registry extract and liability insurance.
func RequiredDocuments(p ProfessionType) []DocumentType {
	if p == ProfessionRegulated {
		return []DocumentType{
			DocumentDiploma,
			DocumentIdentity,
			DocumentProRegistration,
			DocumentBusinessRegistry,
			DocumentCharter,
			DocumentInsurance,
		}
	}
	return []DocumentType{
		DocumentBusinessRegistry,
		DocumentInsurance,
	}
}

// MissingDocuments returns the required documents not present in the given
// set, preserving policy order.
func MissingDocuments(p ProfessionType, present []DocumentType) []DocumentType {
	have := make(map[DocumentType]bool, len(present))
	for _, t := range present {
		have[t] = true
	}
	var missing []DocumentType
	for _, t := range RequiredDocuments(p) {
		if !have[t] {
			missing = append(missing, t)
		}
	}
	return missing
}
