package kyc

// Side identifies which face of the identity document a text came from.
type Side int

const (
	Front Side = iota
	Back
)

func (s Side) String() string {
	if s == Back {
		return "back"
	}
	return "front"
}

// Field names a single extracted identity field. The string value is the key
// used in JSON responses, the CSV header and the cache hash.
type Field string

const (
	IdentityNumber Field = "IdentityNumber"
	SecondaryID    Field = "SecondaryId"
	DOB            Field = "DOB"
	Gender         Field = "Gender"
	Name           Field = "Name"
	Address        Field = "Address"
	UserID         Field = "UserId"
)

var (
	// FrontFields are the fields parsed from the front side, in record order.
	FrontFields = []Field{IdentityNumber, SecondaryID, DOB, Gender, Name}
	// BackFields are the fields parsed from the back side.
	BackFields = []Field{Address}
	// RequiredFields must all be non-empty before a record is persisted.
	RequiredFields = []Field{IdentityNumber, Name, DOB, Gender, Address}
)

// FieldsFor returns the field list for a side.
func FieldsFor(s Side) []Field {
	if s == Back {
		return BackFields
	}
	return FrontFields
}

// FieldMapping holds the fields found in one text. A missing key means the
// field was not found; iterate with FieldsFor to get a stable order.
type FieldMapping map[Field]string

// Get returns the value for f and whether it is set to a non-empty value.
func (m FieldMapping) Get(f Field) (string, bool) {
	v, ok := m[f]
	return v, ok && v != ""
}

// Record is the unit of persistence. Field order here is the order of the
// JSON keys, the CSV columns and the snapshot entries.
type Record struct {
	IdentityNumber string `json:"IdentityNumber" csv:"IdentityNumber" bson:"identityNumber"`
	SecondaryID    string `json:"SecondaryId" csv:"SecondaryId" bson:"secondaryId,omitempty"`
	DOB            string `json:"DOB" csv:"DOB" bson:"dob"`
	Gender         string `json:"Gender" csv:"Gender" bson:"gender"`
	Name           string `json:"Name" csv:"Name" bson:"name"`
	Address        string `json:"Address" csv:"Address" bson:"address"`
	UserID         string `json:"UserId" csv:"UserId" bson:"userId,omitempty"`
}

// Value returns the record value for f.
func (r Record) Value(f Field) string {
	switch f {
	case IdentityNumber:
		return r.IdentityNumber
	case SecondaryID:
		return r.SecondaryID
	case DOB:
		return r.DOB
	case Gender:
		return r.Gender
	case Name:
		return r.Name
	case Address:
		return r.Address
	case UserID:
		return r.UserID
	}
	return ""
}

// RecordFields lists every record field in record order.
var RecordFields = []Field{IdentityNumber, SecondaryID, DOB, Gender, Name, Address, UserID}

// NonEmpty returns the set fields of the record keyed by field name.
func (r Record) NonEmpty() map[string]string {
	out := make(map[string]string, len(RecordFields))
	for _, f := range RecordFields {
		if v := r.Value(f); v != "" {
			out[string(f)] = v
		}
	}
	return out
}

// Missing returns the required fields that are empty, in RequiredFields order.
func (r Record) Missing() []Field {
	var out []Field
	for _, f := range RequiredFields {
		if r.Value(f) == "" {
			out = append(out, f)
		}
	}
	return out
}
