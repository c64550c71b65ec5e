package ledger

import (
	"strings"

	"golang.org/x/text/cases"
)

// RemoteRef is the normalized key correlating a local Document to a
// storefront order. Values are only produced by NormalizeRemoteRef, so two
// refs compare equal exactly when the raw strings match ignoring case and
// whitespace.
type RemoteRef string

// NormalizeRemoteRef strips all whitespace and case-folds raw.
func NormalizeRemoteRef(raw string) (RemoteRef, error) {
	compact := strings.Join(strings.Fields(raw), "")
	if compact == "" {
		return "", ErrInvalidRemoteRef
	}
	// cases.Caser is stateful; build one per call.
	return RemoteRef(cases.Fold().String(compact)), nil
}

// MustRemoteRef is NormalizeRemoteRef for trusted constants in tests and fixtures.
func MustRemoteRef(raw string) RemoteRef {
	ref, err := NormalizeRemoteRef(raw)
	if err != nil {
		panic(err)
	}
	return ref
}

// String returns the normalized key.
func (r RemoteRef) String() string {
	return string(r)
}

// Ptr returns a pointer to a copy of r, for optional header fields.
func (r RemoteRef) Ptr() *RemoteRef {
	return &r
}
