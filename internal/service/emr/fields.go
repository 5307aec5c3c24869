package emr

import "strings"

// FieldSet is a closed, ordered list of field names the model is asked to
// produce, plus the sentinel filled in for fields it leaves out.
type FieldSet struct {
	Keys     []string
	Sentinel string
}

// RecordFields are the clinical record fields extracted from a consult
// transcript.
var RecordFields = FieldSet{
	Keys: []string{
		"Presenting Complaint",
		"History of Presenting Illness",
		"Past Medical History",
		"Current Medications",
		"Allergies",
	},
	Sentinel: "Not mentioned",
}

// SuggestionFields are the advisory categories generated from a meaningful
// record.
var SuggestionFields = FieldSet{
	Keys: []string{
		"Differential Diagnosis",
		"Further Investigations",
		"Potential Treatment Options",
		"Specialist Referrals (if applicable)",
		"Follow-up Recommendations",
	},
	Sentinel: "Not specified",
}

// Record maps field names to extracted values. Parsing guarantees every key
// of the owning FieldSet is present.
type Record map[string]string

// SentinelRecord returns a Record with every key set to the sentinel.
func (fs FieldSet) SentinelRecord() Record {
	rec := make(Record, len(fs.Keys))
	for _, k := range fs.Keys {
		rec[k] = fs.Sentinel
	}
	return rec
}

// match resolves a raw key from model output against the closed list.
func (fs FieldSet) match(raw string) (string, bool) {
	key := strings.TrimSpace(raw)
	for _, k := range fs.Keys {
		if strings.EqualFold(k, key) {
			return k, true
		}
	}
	return "", false
}

// ParseFields turns a model reply into a Record. Lines split at the first
// colon; keys are matched case-insensitively against the field set; the
// first occurrence of a key wins. Unmatched keys, duplicates and lines
// without a colon are dropped. Missing keys are filled with the sentinel, so
// the result always covers the full set.
func ParseFields(raw string, fields FieldSet) Record {
	rec := make(Record, len(fields.Keys))
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), ":")
		if !found {
			continue
		}
		matched, ok := fields.match(key)
		if !ok {
			continue
		}
		if _, dup := rec[matched]; dup {
			continue
		}
		rec[matched] = strings.TrimSpace(value)
	}
	for _, k := range fields.Keys {
		if _, ok := rec[k]; !ok {
			rec[k] = fields.Sentinel
		}
	}
	return rec
}

// placeholders are values that carry no clinical content.
var placeholders = map[string]struct{}{
	"not mentioned": {},
	"none":          {},
	"n/a":           {},
	"":              {},
}

func informative(value string) bool {
	_, placeholder := placeholders[strings.ToLower(value)]
	return !placeholder
}

// Meaningful reports whether the record carries at least one value beyond
// the placeholder set. Suggestion generation is pointless without one.
func Meaningful(rec Record) bool {
	for _, v := range rec {
		if informative(v) {
			return true
		}
	}
	return false
}
