package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Unit-related errors

type UnitError struct {
	*DomainError
}

func NewUnitError(message string) *UnitError {
	return &UnitError{DomainError: &DomainError{Message: message}}
}

type UnitNotFoundError struct {
	*UnitError
	UnitID int
}

func NewUnitNotFoundError(unitID int) *UnitNotFoundError {
	return &UnitNotFoundError{
		UnitError: NewUnitError(fmt.Sprintf("unit %d not found in world state", unitID)),
		UnitID:    unitID,
	}
}

// Session-related errors

type SessionError struct {
	*DomainError
}

func NewSessionError(message string) *SessionError {
	return &SessionError{DomainError: &DomainError{Message: message}}
}

type InvalidSessionStateError struct {
	*SessionError
}

func NewInvalidSessionStateError(message string) *InvalidSessionStateError {
	return &InvalidSessionStateError{SessionError: NewSessionError(message)}
}

type InvalidSessionDataError struct {
	*SessionError
}

func NewInvalidSessionDataError(message string) *InvalidSessionDataError {
	return &InvalidSessionDataError{SessionError: NewSessionError(message)}
}

type SessionNotFoundError struct {
	*SessionError
	SessionID string
}

func NewSessionNotFoundError(sessionID string) *SessionNotFoundError {
	return &SessionNotFoundError{
		SessionError: NewSessionError(fmt.Sprintf("session %s not found", sessionID)),
		SessionID:    sessionID,
	}
}

// Replacement errors

type ReplacementError struct {
	*DomainError
	UnitID   int
	UnitType string
}

func NewReplacementError(message string, unitID int, unitType string) *ReplacementError {
	return &ReplacementError{
		DomainError: &DomainError{Message: message},
		UnitID:      unitID,
		UnitType:    unitType,
	}
}
