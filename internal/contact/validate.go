package contact

import (
	"github.com/Lydell2627/portfolio-sub000/internal/types"
	"github.com/Lydell2627/portfolio-sub000/internal/validation"
)

// Field limits.
const (
	MinNameLength    = 2
	MinMessageLength = 10
	MaxNameLength    = 100
	MaxCompanyLength = 100
	MaxEmailLength   = 254
	MaxMessageLength = 5000
)

// Field names used in field error maps.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldCompany = "company"
	FieldTier    = "tier"
	FieldMessage = "message"
)

// Validate checks form input against the known tiers and returns one
// message per invalid field. An empty map means the input is valid.
func Validate(in Input, tiers []types.PricingTier) map[string]string {
	ids := make([]string, len(tiers))
	for i, t := range tiers {
		ids[i] = t.ID
	}

	var c validation.Collector
	c.AddFirst(
		validation.ValidateRequired(FieldName, in.Name),
		validation.ValidateUTF8(FieldName, in.Name),
		validation.ValidateNoNullBytes(FieldName, in.Name),
		validation.ValidateMinLength(FieldName, in.Name, MinNameLength),
		validation.ValidateMaxLength(FieldName, in.Name, MaxNameLength),
	)
	c.AddFirst(
		validation.ValidateRequired(FieldEmail, in.Email),
		validation.ValidateMaxLength(FieldEmail, in.Email, MaxEmailLength),
		validation.ValidateEmail(FieldEmail, in.Email),
	)
	c.AddFirst(
		validation.ValidateUTF8(FieldCompany, in.Company),
		validation.ValidateNoNullBytes(FieldCompany, in.Company),
		validation.ValidateMaxLength(FieldCompany, in.Company, MaxCompanyLength),
	)
	c.AddFirst(
		validation.ValidateRequired(FieldTier, in.Tier),
		validation.ValidateEnum(FieldTier, in.Tier, ids),
	)
	c.AddFirst(
		validation.ValidateRequired(FieldMessage, in.Message),
		validation.ValidateUTF8(FieldMessage, in.Message),
		validation.ValidateNoNullBytes(FieldMessage, in.Message),
		validation.ValidateMinLength(FieldMessage, in.Message, MinMessageLength),
		validation.ValidateMaxLength(FieldMessage, in.Message, MaxMessageLength),
	)

	return c.ByField()
}

// ValidateSubmission checks a submission received by the submission
// endpoint. The tier is identified by its display name there.
func ValidateSubmission(sub types.ContactSubmission, tiers []types.PricingTier) map[string]string {
	in := Input{
		Name:    sub.Name,
		Email:   sub.Email,
		Company: sub.Company,
		Message: sub.ProjectDetails,
	}
	for _, t := range tiers {
		if t.Name == sub.SelectedBudgetTier {
			in.Tier = t.ID
			break
		}
	}

	errs := Validate(in, tiers)
	if _, ok := errs[FieldTier]; ok && sub.SelectedBudgetTier != "" {
		errs[FieldTier] = "must be one of the offered packages"
	}
	return errs
}
