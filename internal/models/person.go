package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IdentityKind tags which identity variant a person carries.
type IdentityKind string

const (
	IdentityInternalStudent     IdentityKind = "INTERNAL_STUDENT"
	IdentityExternalParticipant IdentityKind = "EXTERNAL_PARTICIPANT"
)

// Identity is either an InternalStudent or an ExternalParticipant.
type Identity interface {
	Kind() IdentityKind
}

// InternalStudent identifies a Garden City student by register number.
type InternalStudent struct {
	RegisterNumber string
}

// Kind implements Identity.
func (InternalStudent) Kind() IdentityKind { return IdentityInternalStudent }

// ExternalParticipant identifies a visitor from another college.
type ExternalParticipant struct {
	CollegeName           string
	CollegeRegisterNumber string
}

// Kind implements Identity.
func (ExternalParticipant) Kind() IdentityKind { return IdentityExternalParticipant }

// Person is a team leader or member.
type Person struct {
	Name     string
	Email    string
	Phone    string
	Identity Identity
}

// IdentityLabel returns the register number or college line printed on tickets.
func (p Person) IdentityLabel() string {
	switch id := p.Identity.(type) {
	case InternalStudent:
		return id.RegisterNumber
	case ExternalParticipant:
		if id.CollegeRegisterNumber != "" {
			return id.CollegeName + ", " + id.CollegeRegisterNumber
		}
		return id.CollegeName
	}
	return ""
}

type personJSON struct {
	Name                  string       `json:"name"`
	Email                 string       `json:"email,omitempty"`
	Phone                 string       `json:"phone,omitempty"`
	IdentityType          IdentityKind `json:"identityType,omitempty"`
	RegisterNumber        string       `json:"registerNumber,omitempty"`
	CollegeName           string       `json:"collegeName,omitempty"`
	CollegeRegisterNumber string       `json:"collegeRegisterNumber,omitempty"`
}

// MarshalJSON flattens the identity variant next to the contact fields.
func (p Person) MarshalJSON() ([]byte, error) {
	out := personJSON{Name: p.Name, Email: p.Email, Phone: p.Phone}
	switch id := p.Identity.(type) {
	case InternalStudent:
		out.IdentityType = id.Kind()
		out.RegisterNumber = id.RegisterNumber
	case ExternalParticipant:
		out.IdentityType = id.Kind()
		out.CollegeName = id.CollegeName
		out.CollegeRegisterNumber = id.CollegeRegisterNumber
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the identity variant from its tag.
func (p *Person) UnmarshalJSON(data []byte) error {
	var in personJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Person{Name: in.Name, Email: in.Email, Phone: in.Phone}
	switch in.IdentityType {
	case IdentityInternalStudent:
		p.Identity = InternalStudent{RegisterNumber: in.RegisterNumber}
	case IdentityExternalParticipant:
		p.Identity = ExternalParticipant{CollegeName: in.CollegeName, CollegeRegisterNumber: in.CollegeRegisterNumber}
	case "":
	default:
		return fmt.Errorf("unknown identity type %q", in.IdentityType)
	}
	return nil
}

// Value stores the person as JSONB.
func (p Person) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal person: %w", err)
	}
	return data, nil
}

// Scan loads a JSONB person.
func (p *Person) Scan(value interface{}) error {
	data, err := jsonBytes(value, "Person")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*p = Person{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal person: %w", err)
	}
	return nil
}

// People is an ordered team roster persisted as a JSONB array.
type People []Person

// Value stores the roster, never as SQL NULL.
func (ps People) Value() (driver.Value, error) {
	if ps == nil {
		ps = People{}
	}
	data, err := json.Marshal([]Person(ps))
	if err != nil {
		return nil, fmt.Errorf("marshal people: %w", err)
	}
	return data, nil
}

// Scan loads a JSONB roster.
func (ps *People) Scan(value interface{}) error {
	data, err := jsonBytes(value, "People")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*ps = People{}
		return nil
	}
	var out []Person
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal people: %w", err)
	}
	*ps = out
	return nil
}

func jsonBytes(value interface{}, target string) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T for %s", value, target)
	}
}
