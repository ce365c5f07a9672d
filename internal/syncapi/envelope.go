package syncapi

import (
	"fmt"
	"time"
)

// Data groups the three record collections of one sync attempt.
type Data struct {
	Personnel []Personnel `json:"policiais"`
	Owners    []Owner     `json:"proprietarios"`
	Incidents []Incident  `json:"ocorrencias"`
}

// Len returns the number of top-level records across all categories.
func (d Data) Len() int {
	return len(d.Personnel) + len(d.Owners) + len(d.Incidents)
}

// Envelope is the single payload transmitted in one sync attempt.
type Envelope struct {
	User            string    `json:"usuario" binding:"required" validate:"required"`
	ClientID        string    `json:"client_uuid" binding:"required" validate:"required,uuid4"`
	ClientTimestamp time.Time `json:"timestamp_cliente"`
	Data            Data      `json:"dados"`
}

// ValidateHeader checks the user and client identifier. Records are
// validated one by one so a bad record does not reject the envelope.
func (e Envelope) ValidateHeader() error { return validate.Struct(e) }

// NewEnvelope builds an Envelope and validates the header and every record.
// It returns an error describing the first invalid part.
func NewEnvelope(user, clientID string, ts time.Time, data Data) (*Envelope, error) {
	env := &Envelope{User: user, ClientID: clientID, ClientTimestamp: ts.UTC(), Data: data}

	if err := validate.Struct(env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %s", FormatValidationError(err))
	}
	for _, p := range data.Personnel {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid personnel %s: %s", p.RegistrationNumber, FormatValidationError(err))
		}
	}
	for _, o := range data.Owners {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("invalid owner %s: %s", o.Document, FormatValidationError(err))
		}
	}
	for _, inc := range data.Incidents {
		if err := inc.Validate(); err != nil {
			return nil, fmt.Errorf("invalid incident %s: %s", inc.GenesisNumber, FormatValidationError(err))
		}
	}

	return env, nil
}
