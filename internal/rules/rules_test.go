package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowAllEvaluator(t *testing.T) {
	e := AllowAllEvaluator{}
	assert.Equal(t, Allow, e.Evaluate(OpRead, "a", nil, nil))
	assert.Equal(t, Allow, e.Evaluate(OpWrite, "a", []byte("v"), nil))
	assert.Equal(t, Allow, e.Evaluate(OpDelete, "a", nil, nil))
}

func TestDenyAllEvaluator(t *testing.T) {
	e := DenyAllEvaluator{}
	assert.Equal(t, Deny, e.Evaluate(OpRead, "a", nil, nil))
}

func TestStockEvaluator(t *testing.T) {
	assert.IsType(t, AllowAllEvaluator{}, StockEvaluator(ModeAllowAll))
	assert.IsType(t, DenyAllEvaluator{}, StockEvaluator(ModeDenyAll))
}

func TestValidateRulesTextRejectsOversize(t *testing.T) {
	big := []byte(strings.Repeat("a", MaxRulesSize+1))
	assert.Error(t, ValidateRulesText(big))
}

func TestValidateRulesTextAcceptsWithinLimit(t *testing.T) {
	assert.NoError(t, ValidateRulesText([]byte("allow read, write: if true;")))
}

func TestCheckAllowReturnsNil(t *testing.T) {
	err := Check(AllowAllEvaluator{}, OpWrite, "users/alice", []byte("v"), nil)
	assert.NoError(t, err)
}

func TestCheckDenyReturnsPermissionError(t *testing.T) {
	err := Check(DenyAllEvaluator{}, OpWrite, "users/alice", []byte("v"), nil)
	assert.Error(t, err)
}

func TestCheckNilEvaluatorDefaultsToAllow(t *testing.T) {
	err := Check(nil, OpRead, "x", nil, nil)
	assert.NoError(t, err)
}
