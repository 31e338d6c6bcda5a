package models

import (
	"encoding/json"
	"fmt"
)

type StatusKind string

const (
	StatusNew       StatusKind = "New"
	StatusPending   StatusKind = "Pending"
	StatusActive    StatusKind = "Active"
	StatusInactive  StatusKind = "Inactive"
	StatusProcessed StatusKind = "Processed"
	StatusBlocked   StatusKind = "Blocked"
	StatusDeleted   StatusKind = "Deleted"
)

var validKinds = map[StatusKind]struct{}{
	StatusNew:       {},
	StatusPending:   {},
	StatusActive:    {},
	StatusInactive:  {},
	StatusProcessed: {},
	StatusBlocked:   {},
	StatusDeleted:   {},
}

func (k StatusKind) Valid() bool {
	_, ok := validKinds[k]
	return ok
}

// Status is a lifecycle state plus an application defined code.
// It encodes to JSON as {"t":"Active","c":128}.
type Status struct {
	Kind StatusKind
	Code uint8
}

func NewStatus(kind StatusKind, code uint8) Status {
	return Status{Kind: kind, Code: code}
}

func (s Status) String() string {
	return fmt.Sprintf("%s(%d)", s.Kind, s.Code)
}

type statusJSON struct {
	T StatusKind `json:"t"`
	C uint8      `json:"c"`
}

func (s Status) MarshalJSON() ([]byte, error) {
	kind := s.Kind
	if kind == "" {
		kind = StatusNew
	}
	return json.Marshal(statusJSON{T: kind, C: s.Code})
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw statusJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.T.Valid() {
		return fmt.Errorf("unknown status %q", raw.T)
	}
	*s = Status{Kind: raw.T, Code: raw.C}
	return nil
}
