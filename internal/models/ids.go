package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Sequence kinds and the prefix of the human-readable id each one produces.
const (
	KindInstructor = "instructor"
	KindClass      = "class"
	KindCustomer   = "customer"
	KindPackage    = "package"
	KindSale       = "sale"
	KindAttendance = "attendance"
)

var idPrefixes = map[string]string{
	KindInstructor: "I",
	KindClass:      "C",
	KindCustomer:   "CU",
	KindPackage:    "P",
	KindSale:       "S",
	KindAttendance: "A",
}

// FormatID renders the n-th id of kind, e.g. FormatID(KindSale, 7) == "S00007".
func FormatID(kind string, n int64) string {
	return fmt.Sprintf("%s%05d", idPrefixes[kind], n)
}

// parseSequence extracts the numeric suffix of a human-readable id; it is
// the inverse of FormatID.
func parseSequence(kind, id string) (int64, error) {
	prefix, ok := idPrefixes[kind]
	if !ok {
		return 0, fmt.Errorf("unknown sequence kind %q", kind)
	}
	if !strings.HasPrefix(id, prefix) {
		return 0, fmt.Errorf("id %q does not start with %q", id, prefix)
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(id, prefix), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("id %q has no numeric suffix", id)
	}
	return n, nil
}

// NewID returns a document key.
func NewID() string {
	return uuid.NewString()
}
