package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestDecodeRuleConfigUnknownType(t *testing.T) {
	_, err := DecodeRuleConfig(RuleType("BOGUS"), datatypes.JSON(`{}`))
	assert.ErrorIs(t, err, ErrInvalidRuleConfig)
}

func TestDecodeRuleConfigEmptyPayload(t *testing.T) {
	cfg, err := DecodeRuleConfig(RuleTypeReceiptRequired, nil)
	require.NoError(t, err)
	assert.Equal(t, RuleTypeReceiptRequired, cfg.RuleType())
}

func TestFrequencyLimitValidate(t *testing.T) {
	err := FrequencyLimitConfig{Period: "YEARLY", MaxCount: 2}.Validate()
	assert.ErrorIs(t, err, ErrInvalidRuleConfig)

	err = FrequencyLimitConfig{Period: PeriodWeekly, MaxCount: 0}.Validate()
	assert.ErrorIs(t, err, ErrInvalidRuleConfig)

	err = FrequencyLimitConfig{Period: PeriodDaily, MaxCount: 1}.Validate()
	assert.NoError(t, err)
}

func TestAmountLimitValidate(t *testing.T) {
	err := AmountLimitConfig{MaxAmount: decimal.Zero}.Validate()
	assert.ErrorIs(t, err, ErrInvalidRuleConfig)

	negative := decimal.NewFromInt(-1)
	err = AmountLimitConfig{MaxAmount: decimal.NewFromInt(10), MinAmount: &negative}.Validate()
	assert.ErrorIs(t, err, ErrInvalidRuleConfig)
}

func TestEncodeDecodeApprovalRequired(t *testing.T) {
	raw, err := EncodeRuleConfig(ApprovalRequiredConfig{
		MinAmount: decimal.NewFromInt(5000),
		Levels:    2,
	})
	require.NoError(t, err)

	decoded, err := DecodeRuleConfig(RuleTypeApprovalRequired, raw)
	require.NoError(t, err)

	cfg, ok := decoded.(ApprovalRequiredConfig)
	require.True(t, ok)
	assert.True(t, cfg.MinAmount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, 2, cfg.Levels)
}

func TestEncodeRuleConfigRejectsInvalid(t *testing.T) {
	_, err := EncodeRuleConfig(ApprovalRequiredConfig{Levels: 0})
	assert.ErrorIs(t, err, ErrInvalidRuleConfig)
}
