package types

// FieldKey names one of the six extractable contact fields.
type FieldKey string

const (
	FieldName     FieldKey = "name"
	FieldCompany  FieldKey = "company"
	FieldJobTitle FieldKey = "job_title"
	FieldPhone    FieldKey = "phone"
	FieldEmail    FieldKey = "email"
	FieldAddress  FieldKey = "address"
)

// FieldKeys is the closed set of fields in record order.
var FieldKeys = []FieldKey{FieldName, FieldCompany, FieldJobTitle, FieldPhone, FieldEmail, FieldAddress}

// ParseFieldKey maps a serialized key back to a FieldKey.
func ParseFieldKey(s string) (FieldKey, bool) {
	for _, k := range FieldKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Stage identifies which extraction technique proposed a candidate.
type Stage string

const (
	StagePattern Stage = "pattern"
	StageEntity  Stage = "entity"
	StageLine    Stage = "line"
)

// Candidate is one field value proposed by a stage, pending merge.
type Candidate struct {
	Field FieldKey `json:"field"`
	Value string   `json:"value"`
	Stage Stage    `json:"stage"`
}

// EntitySpan is a labeled substring returned by the NER model.
type EntitySpan struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ContactRecord holds the extracted card fields. Unmatched fields stay "".
type ContactRecord struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	JobTitle string `json:"job_title"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

func (r ContactRecord) Get(k FieldKey) string {
	switch k {
	case FieldName:
		return r.Name
	case FieldCompany:
		return r.Company
	case FieldJobTitle:
		return r.JobTitle
	case FieldPhone:
		return r.Phone
	case FieldEmail:
		return r.Email
	case FieldAddress:
		return r.Address
	}
	return ""
}

func (r *ContactRecord) Set(k FieldKey, v string) {
	switch k {
	case FieldName:
		r.Name = v
	case FieldCompany:
		r.Company = v
	case FieldJobTitle:
		r.JobTitle = v
	case FieldPhone:
		r.Phone = v
	case FieldEmail:
		r.Email = v
	case FieldAddress:
		r.Address = v
	}
}

// Map returns the record keyed by field, every key present.
func (r ContactRecord) Map() map[string]string {
	out := make(map[string]string, len(FieldKeys))
	for _, k := range FieldKeys {
		out[string(k)] = r.Get(k)
	}
	return out
}

// IsEmpty reports whether no field was extracted.
func (r ContactRecord) IsEmpty() bool {
	return r == ContactRecord{}
}
