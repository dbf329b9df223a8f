package records

import (
	"strings"

	"github.com/brightpath-ai/siteadmin/internal/validation"
	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidateRecord checks required fields, the slug format and the payload
// schema configured on desc. It returns nil or a *ValidationError.
func ValidateRecord(desc Descriptor, record *Record) error {
	if record == nil {
		return newValidationError(desc.Table, ozzo.Errors{"record": ozzo.NewError("records.record_required", "record is required")})
	}
	issues := ozzo.Errors{}
	for _, field := range desc.Required {
		if isBlank(fieldValue(record, field)) {
			issues[field] = requiredIssue(field)
		}
	}
	switch {
	case strings.TrimSpace(record.Slug) == "":
		issues["slug"] = requiredIssue("slug")
	case !ValidSlug(record.Slug):
		issues["slug"] = slugInvalidIssue()
	}
	if desc.Schema != nil {
		if err := validation.ValidatePayload(desc.Schema, record.Fields); err != nil {
			for _, issue := range validation.Issues(err) {
				key := "fields"
				if issue.Path != "" {
					key += "." + issue.Path
				}
				if _, exists := issues[key]; exists {
					continue
				}
				issues[key] = ozzo.NewError("records.fields_invalid", issue.Message)
			}
		}
	}
	if len(issues) > 0 {
		return newValidationError(desc.Table, issues)
	}
	return nil
}

func slugInvalidIssue() error {
	return ozzo.NewError("records.slug_invalid", "slug must contain lowercase letters, digits and single hyphens")
}

func slugInvalid(desc Descriptor) error {
	return newValidationError(desc.Table, ozzo.Errors{"slug": slugInvalidIssue()})
}

func slugTaken(desc Descriptor, slug string) error {
	return newValidationError(desc.Table, ozzo.Errors{
		"slug": ozzo.NewError("records.slug_taken", "slug "+slug+" is already in use"),
	})
}

// fieldValue resolves a required-field path against core columns first and the
// payload second.
func fieldValue(record *Record, path string) any {
	switch path {
	case "title":
		return record.Title
	case "slug":
		return record.Slug
	case "category":
		return record.Category
	}
	parts := splitPath(strings.TrimPrefix(path, "fields."))
	if parts == nil {
		return nil
	}
	value, _ := lookupPath(record.Fields, parts)
	return value
}
