package webhook

import (
	"fmt"
	"strings"
)

// FieldKind names the waitlist attributes a form field can map to.
type FieldKind string

const (
	FieldEmail        FieldKind = "email"
	FieldFirstName    FieldKind = "first_name"
	FieldLastName     FieldKind = "last_name"
	FieldFullName     FieldKind = "full_name"
	FieldReferralCode FieldKind = "referral_code"
	FieldOptIn        FieldKind = "opt_in"
)

// MappingRule matches a form field by a case-insensitive substring of its
// label. Rules are evaluated in order; the first match wins.
type MappingRule struct {
	Contains string
	Field    FieldKind
}

// FieldMapping translates form labels into waitlist attributes. The mapping
// is versioned so label changes in the form builder are an explicit config
// change rather than a silent parsing drift.
type FieldMapping struct {
	Version string
	Rules   []MappingRule
}

// DefaultTallyMapping covers the labels used by the production signup form.
func DefaultTallyMapping() *FieldMapping {
	return &FieldMapping{
		Version: "2024-06",
		Rules: []MappingRule{
			{Contains: "email", Field: FieldEmail},
			{Contains: "first name", Field: FieldFirstName},
			{Contains: "last name", Field: FieldLastName},
			{Contains: "full name", Field: FieldFullName},
			{Contains: "name", Field: FieldFullName},
			{Contains: "referral", Field: FieldReferralCode},
			{Contains: "updates", Field: FieldOptIn},
			{Contains: "newsletter", Field: FieldOptIn},
		},
	}
}

// Validate is run at startup so a broken mapping fails the boot instead of
// silently dropping submissions.
func (m *FieldMapping) Validate() error {
	if m.Version == "" {
		return fmt.Errorf("field mapping version is required")
	}

	if len(m.Rules) == 0 {
		return fmt.Errorf("field mapping %q has no rules", m.Version)
	}

	hasEmail := false
	for i, rule := range m.Rules {
		if strings.TrimSpace(rule.Contains) == "" {
			return fmt.Errorf("field mapping %q rule %d has an empty label pattern", m.Version, i)
		}
		if rule.Field == "" {
			return fmt.Errorf("field mapping %q rule %d has no target field", m.Version, i)
		}
		if rule.Field == FieldEmail {
			hasEmail = true
		}
	}

	if !hasEmail {
		return fmt.Errorf("field mapping %q has no rule for the email field", m.Version)
	}

	return nil
}

// Resolve returns the waitlist attribute for a form label, if any rule
// matches.
func (m *FieldMapping) Resolve(label string) (FieldKind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))

	for _, rule := range m.Rules {
		if strings.Contains(normalized, strings.ToLower(rule.Contains)) {
			return rule.Field, true
		}
	}

	return "", false
}
