package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRemoteRef(t *testing.T) {
	tests := []struct {
		raw  string
		want RemoteRef
	}{
		{"1042", "1042"},
		{"  WC-1042 ", "wc-1042"},
		{"wc -\t1042", "wc-1042"},
		{"ABC-Ü1", "abc-ü1"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizeRemoteRef(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NormalizeRemoteRef(" \n ")
	assert.ErrorIs(t, err, ErrInvalidRemoteRef)
}

func TestRemoteRefEquality(t *testing.T) {
	assert.Equal(t, MustRemoteRef("ABC 12"), MustRemoteRef(" abc12"))
	assert.NotEqual(t, MustRemoteRef("abc12"), MustRemoteRef("abc13"))
}
