// Package validator applies per-document-type rules to a merged record:
// required-field presence, arithmetic identities, date orderings, and the
// per-field confidence floor. All rules run even when one fails.
package validator

import (
	"context"

	"fieldlens/internal/domain"
	"fieldlens/internal/typeconfig"
)

// Severity splits failed rules into hard errors and soft warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// RuleResult is the outcome of one rule evaluation against one field or
// identity.
type RuleResult struct {
	Passed   bool
	Field    string
	Expected string
	Actual   string
	Message  string
}

// Validator is the interface for a single built-in validation rule.
type Validator interface {
	RuleKey() string
	RuleName() string
	Severity() Severity
	Validate(ctx context.Context, record *domain.MergedRecord, tc *typeconfig.DocumentTypeConfig) []RuleResult
}
