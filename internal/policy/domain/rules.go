package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// RuleType discriminates the payload carried in PolicyRule.RuleValue.
type RuleType string

const (
	RuleTypeAmountLimit      RuleType = "AMOUNT_LIMIT"
	RuleTypeReceiptRequired  RuleType = "RECEIPT_REQUIRED"
	RuleTypeGPSRequired      RuleType = "GPS_REQUIRED"
	RuleTypeFrequencyLimit   RuleType = "FREQUENCY_LIMIT"
	RuleTypeApprovalRequired RuleType = "APPROVAL_REQUIRED"
)

// FrequencyPeriod is the calendar window a frequency limit counts over.
type FrequencyPeriod string

const (
	PeriodDaily   FrequencyPeriod = "DAILY"
	PeriodWeekly  FrequencyPeriod = "WEEKLY"
	PeriodMonthly FrequencyPeriod = "MONTHLY"
)

// RuleConfig is the typed payload of a policy rule, keyed by RuleType.
type RuleConfig interface {
	RuleType() RuleType
	Validate() error
}

// AmountLimitConfig caps a single claim's amount, with an optional floor.
type AmountLimitConfig struct {
	MaxAmount decimal.Decimal  `json:"max_amount"`
	MinAmount *decimal.Decimal `json:"min_amount,omitempty"`
}

func (AmountLimitConfig) RuleType() RuleType { return RuleTypeAmountLimit }

func (c AmountLimitConfig) Validate() error {
	if !c.MaxAmount.IsPositive() {
		return fmt.Errorf("%w: max_amount must be positive", ErrInvalidRuleConfig)
	}
	if c.MinAmount != nil && c.MinAmount.IsNegative() {
		return fmt.Errorf("%w: min_amount must not be negative", ErrInvalidRuleConfig)
	}
	return nil
}

// ReceiptRequiredConfig has no payload; presence of the rule is the policy.
type ReceiptRequiredConfig struct{}

func (ReceiptRequiredConfig) RuleType() RuleType { return RuleTypeReceiptRequired }
func (ReceiptRequiredConfig) Validate() error    { return nil }

// GPSRequiredConfig has no payload; presence of the rule is the policy.
type GPSRequiredConfig struct{}

func (GPSRequiredConfig) RuleType() RuleType { return RuleTypeGPSRequired }
func (GPSRequiredConfig) Validate() error    { return nil }

// FrequencyLimitConfig caps how many claims an employee may file per window.
type FrequencyLimitConfig struct {
	Period   FrequencyPeriod `json:"period"`
	MaxCount int             `json:"max_count"`
}

func (FrequencyLimitConfig) RuleType() RuleType { return RuleTypeFrequencyLimit }

func (c FrequencyLimitConfig) Validate() error {
	switch c.Period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
	default:
		return fmt.Errorf("%w: unknown period %q", ErrInvalidRuleConfig, c.Period)
	}
	if c.MaxCount < 1 {
		return fmt.Errorf("%w: max_count must be at least 1", ErrInvalidRuleConfig)
	}
	return nil
}

// ApprovalRequiredConfig forces an approval chain above a threshold amount.
type ApprovalRequiredConfig struct {
	MinAmount decimal.Decimal `json:"min_amount"`
	Levels    int             `json:"levels"`
}

func (ApprovalRequiredConfig) RuleType() RuleType { return RuleTypeApprovalRequired }

func (c ApprovalRequiredConfig) Validate() error {
	if c.MinAmount.IsNegative() {
		return fmt.Errorf("%w: min_amount must not be negative", ErrInvalidRuleConfig)
	}
	if c.Levels < 1 {
		return fmt.Errorf("%w: levels must be at least 1", ErrInvalidRuleConfig)
	}
	return nil
}

// DecodeRuleConfig decodes a raw payload into the variant for ruleType.
func DecodeRuleConfig(ruleType RuleType, raw datatypes.JSON) (RuleConfig, error) {
	if len(raw) == 0 {
		raw = datatypes.JSON(`{}`)
	}

	var cfg RuleConfig
	switch ruleType {
	case RuleTypeAmountLimit:
		var c AmountLimitConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRuleConfig, err)
		}
		cfg = c
	case RuleTypeReceiptRequired:
		cfg = ReceiptRequiredConfig{}
	case RuleTypeGPSRequired:
		cfg = GPSRequiredConfig{}
	case RuleTypeFrequencyLimit:
		var c FrequencyLimitConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRuleConfig, err)
		}
		cfg = c
	case RuleTypeApprovalRequired:
		var c ApprovalRequiredConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRuleConfig, err)
		}
		cfg = c
	default:
		return nil, fmt.Errorf("%w: unknown rule type %q", ErrInvalidRuleConfig, ruleType)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EncodeRuleConfig serializes a typed payload for storage.
func EncodeRuleConfig(cfg RuleConfig) (datatypes.JSON, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleConfig, err)
	}
	return datatypes.JSON(raw), nil
}
