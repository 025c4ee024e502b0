package intel

// EntityType is the closed set of identifier kinds the extractor can
// produce. Values double as JSON keys in the final report.
type EntityType string

const (
	TypePhone          EntityType = "phoneNumbers"
	TypePaymentHandle  EntityType = "upiIds"
	TypeBankAccount    EntityType = "bankAccounts"
	TypeRoutingCode    EntityType = "routingCodes"
	TypeURL            EntityType = "phishingLinks"
	TypeEmail          EntityType = "emailAddresses"
	TypeNationalID     EntityType = "nationalIds"
	TypePersonName     EntityType = "personNames"
	TypeLocation       EntityType = "locations"
	TypeMonetaryAmount EntityType = "monetaryAmounts"
)

// AllTypes lists every entity type in report order.
func AllTypes() []EntityType {
	return []EntityType{
		TypePhone,
		TypePaymentHandle,
		TypeBankAccount,
		TypeRoutingCode,
		TypeURL,
		TypeEmail,
		TypeNationalID,
		TypePersonName,
		TypeLocation,
		TypeMonetaryAmount,
	}
}

// HighValue reports whether entities of this type alone justify
// finalizing a session early.
func (t EntityType) HighValue() bool {
	switch t {
	case TypePhone, TypePaymentHandle, TypeBankAccount, TypeURL, TypeEmail:
		return true
	default:
		return false
	}
}

// Extraction is the per-type result of one extractor pass. Values are
// normalized and deduplicated in insertion order.
type Extraction map[EntityType][]string

// Add appends a normalized value if the extraction does not hold it
// yet, and reports whether it was new.
func (e Extraction) Add(t EntityType, value string) bool {
	for _, got := range e[t] {
		if got == value {
			return false
		}
	}
	e[t] = append(e[t], value)
	return true
}

// Union folds another extraction into this one, keeping order and
// skipping duplicates.
func (e Extraction) Union(other Extraction) {
	for _, t := range AllTypes() {
		for _, v := range other[t] {
			e.Add(t, v)
		}
	}
}

// Empty reports whether the extraction holds no entities at all.
func (e Extraction) Empty() bool {
	for _, values := range e {
		if len(values) > 0 {
			return false
		}
	}
	return true
}
