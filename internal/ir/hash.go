package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future encoding migration.
const (
	DomainRecord = "relcalc/record/v1"
	DomainValue  = "relcalc/value/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RecordKey computes the set-membership key of a record. Two records have
// the same key iff they bind the same labels to equal values, whatever the
// order of their fields.
func RecordKey(r *Record) (string, error) {
	canonical, err := marshalCanonicalRecord(r)
	if err != nil {
		return "", fmt.Errorf("RecordKey: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// ValueKey computes the content hash of any data value.
func ValueKey(t Term) (string, error) {
	canonical, err := MarshalCanonical(t)
	if err != nil {
		return "", fmt.Errorf("ValueKey: %w", err)
	}
	return hashWithDomain(DomainValue, canonical), nil
}

// MustRecordKey is like RecordKey but panics on error.
// Use only in tests or when the record is known to hold data values.
func MustRecordKey(r *Record) string {
	key, err := RecordKey(r)
	if err != nil {
		panic(err)
	}
	return key
}
