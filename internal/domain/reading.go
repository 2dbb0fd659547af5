package domain

import "encoding/json"

// Reading is the model's interpretation: either the raw JSON it produced
// or an error message. Exactly one of Fields and Error is set.
type Reading struct {
	Fields json.RawMessage
	Error  string
}

func ReadingOf(fields json.RawMessage) Reading { return Reading{Fields: fields} }

func FailedReading(msg string) Reading { return Reading{Error: msg} }

func (r Reading) OK() bool { return r.Error == "" }

func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	if len(r.Fields) == 0 {
		return []byte("null"), nil
	}
	return r.Fields, nil
}
