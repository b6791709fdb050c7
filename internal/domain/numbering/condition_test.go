package numbering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalCondition(t *testing.T) {
	tests := []struct {
		name        string
		expr        string
		partnerCode string
		groupCode   string
		want        bool
	}{
		{"empty expression always matches", "", "P-001", "", true},
		{"group match", `groupCode == "WHOLESALE"`, "P-001", "WHOLESALE", true},
		{"group mismatch", `groupCode == "WHOLESALE"`, "P-001", "RETAIL", false},
		{"partner prefix", `partnerCode.startsWith("EX-")`, "EX-42", "", true},
		{"combined", `groupCode != "" && partnerCode != ""`, "P-001", "G1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalCondition(tt.expr, tt.partnerCode, tt.groupCode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalCondition_CompileErrors(t *testing.T) {
	_, err := evalCondition(`groupCode ==`, "P", "G")
	assert.Error(t, err)

	// Non-boolean result is rejected at compile time.
	_, err = evalCondition(`partnerCode`, "P", "G")
	assert.Error(t, err)
}

func TestEvalCondition_UnknownVariable(t *testing.T) {
	_, err := evalCondition(`warehouse == "A"`, "P", "G")
	assert.Error(t, err)
}
