package model

import (
	"fmt"
	"strings"
)

type IdentifierType string

const (
	IdentifierTypeEmail   IdentifierType = "email"
	IdentifierTypeAadhaar IdentifierType = "aadhaar"
	IdentifierTypePan     IdentifierType = "pan"
)

func ParseIdentifierType(s string) (IdentifierType, error) {
	switch IdentifierType(strings.ToLower(strings.TrimSpace(s))) {
	case "", IdentifierTypeEmail:
		return IdentifierTypeEmail, nil
	case IdentifierTypeAadhaar, "aadhar":
		return IdentifierTypeAadhaar, nil
	case IdentifierTypePan:
		return IdentifierTypePan, nil
	}
	return "", fmt.Errorf("unknown identifier type: %s", s)
}

// Government ids are resolved through DigiLocker instead of the wallet lookup
func (self IdentifierType) IsGovernmentId() bool {
	return self == IdentifierTypeAadhaar || self == IdentifierTypePan
}
