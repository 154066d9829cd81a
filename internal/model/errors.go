package model

import "errors"

var ErrNoRecord = errors.New("no record")
var ErrAlreadyExists = errors.New("entity already exists")

var (
	ErrInvalidEvent          = errors.New("invalid event")
	ErrInvalidScope          = errors.New("invalid scope")
	ErrInvalidRecurrenceRule = errors.New("invalid recurrence rule")
	ErrAmbiguousTruncation   = errors.New("occurrence precedes series start")
	ErrCrossFamilyAccess     = errors.New("event belongs to another family")
	ErrWriteFailed           = errors.New("write failed")
	ErrForbidden             = errors.New("action not permitted for member role")
	ErrInvalidParticipants   = errors.New("participant is not a member of the family")
	ErrInvalidCategory       = errors.New("category does not belong to the family")
	ErrInvalidWindow         = errors.New("invalid date window")
	ErrNotTask               = errors.New("event is not a task")
	ErrMissingMember         = errors.New("acting member is not known")
)
