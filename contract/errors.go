package contract

import (
	"errors"
	"fmt"
)

var (
	ErrInterfaceNotFound    = errors.New("interface not found")
	ErrSignatureNotFound    = errors.New("signature not found in artifact.json")
	ErrMissingArtifactField = errors.New("missing field in artifact.json")
	ErrInvalidDocument      = errors.New("invalid json document")
)

type InterfaceNotFoundError struct {
	ID InterfaceID
}

func (e *InterfaceNotFoundError) Error() string {
	return fmt.Sprintf("interface not found: %s", e.ID)
}

func (e *InterfaceNotFoundError) Is(target error) bool {
	return target == ErrInterfaceNotFound
}

type SignatureNotFoundError struct {
	Signature string
}

func (e *SignatureNotFoundError) Error() string {
	return fmt.Sprintf("decorator signature %s not found in artifact.json", e.Signature)
}

func (e *SignatureNotFoundError) Is(target error) bool {
	return target == ErrSignatureNotFound
}

// MissingArtifactFieldError reports a matched abi entry without a required field.
// Entry is "function" or "event", Field is "name" or "outputs".
type MissingArtifactFieldError struct {
	Signature string
	Entry     string
	Field     string
}

func (e *MissingArtifactFieldError) Error() string {
	return fmt.Sprintf("missing %s %s in artifact.json for %s", e.Entry, e.Field, e.Signature)
}

func (e *MissingArtifactFieldError) Is(target error) bool {
	return target == ErrMissingArtifactField
}
