// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type is a value from the closed entity taxonomy.
type Type string

// Person and organisation names
const (
	Person       Type = "PERSON"
	PersonName   Type = "PERSON_NAME"
	Organization Type = "ORGANIZATION"
)

// Consolidated addresses and the fragments they are built from
const (
	Address      Type = "ADDRESS"
	SwissAddress Type = "SWISS_ADDRESS"
	EUAddress    Type = "EU_ADDRESS"

	StreetName   Type = "STREET_NAME"
	StreetNumber Type = "STREET_NUMBER"
	PostalCode   Type = "POSTAL_CODE"
	City         Type = "CITY"
	Region       Type = "REGION"
	Country      Type = "COUNTRY"
)

// National, tax and financial identifiers
const (
	SwissAVS      Type = "SWISS_AVS"
	IBAN          Type = "IBAN"
	QRReference   Type = "QR_REFERENCE"
	VATNumber     Type = "VAT_NUMBER"
	Email         Type = "EMAIL"
	Phone         Type = "PHONE"
	PaymentRef    Type = "PAYMENT_REF"
	InvoiceNumber Type = "INVOICE_NUMBER"
)

// Document-structural roles
const (
	Sender         Type = "SENDER"
	Recipient      Type = "RECIPIENT"
	Signature      Type = "SIGNATURE"
	SalutationName Type = "SALUTATION_NAME"
	ReferenceLine  Type = "REFERENCE_LINE"
	LetterDate     Type = "LETTER_DATE"
)

// Generic low-specificity types
const (
	Date     Type = "DATE"
	Amount   Type = "AMOUNT"
	Location Type = "LOCATION"
	Unknown  Type = "UNKNOWN"
)

// AllTypes lists the taxonomy in declaration order.
var AllTypes = []Type{
	Person, PersonName, Organization,
	Address, SwissAddress, EUAddress,
	StreetName, StreetNumber, PostalCode, City, Region, Country,
	SwissAVS, IBAN, QRReference, VATNumber, Email, Phone, PaymentRef, InvoiceNumber,
	Sender, Recipient, Signature, SalutationName, ReferenceLine, LetterDate,
	Date, Amount, Location, Unknown,
}

var knownTypes = func() map[Type]bool {
	m := make(map[Type]bool, len(AllTypes))
	for _, t := range AllTypes {
		m[t] = true
	}
	return m
}()

// ParseType resolves a taxonomy name, case-insensitively.
func ParseType(name string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(name)))
	if !knownTypes[t] {
		const maxErrLen = 50
		if len(name) > maxErrLen {
			name = name[:maxErrLen] + "..."
		}
		return "", fmt.Errorf("unknown entity type: %q", name)
	}
	return t, nil
}

// Known reports whether t belongs to the taxonomy.
func (t Type) Known() bool {
	return knownTypes[t]
}

// IsAddressFragment reports whether t is a partial address component.
func (t Type) IsAddressFragment() bool {
	switch t {
	case StreetName, StreetNumber, PostalCode, City, Region, Country:
		return true
	}
	return false
}

// IsAddress reports whether t is one of the consolidated address types.
func (t Type) IsAddress() bool {
	return t == Address || t == SwissAddress || t == EUAddress
}

// BaseType collapses jurisdiction-specific variants for grouping purposes.
func (t Type) BaseType() Type {
	switch t {
	case SwissAddress, EUAddress:
		return Address
	case PersonName:
		return Person
	}
	return t
}

// UnmarshalJSON rejects names outside the taxonomy.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalText applies the same check for text-based decoders.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
