package coachprofile

import (
	"coach_marketplace_backend/internal/common"
)

// DiffEntry is the comparison of one field between the published profile and the draft.
type DiffEntry struct {
	Field     string `json:"field"`
	IsNew     bool   `json:"isNew"`
	IsDeleted bool   `json:"isDeleted"`
	OldValue  string `json:"oldValue"`
	NewValue  string `json:"newValue"`
}

// DiffOptions tunes ComputeDiff.
type DiffOptions struct {
	// ReportIdentical keeps a change entry for fields whose values are equal on both sides.
	ReportIdentical bool
}

// profileField describes one comparable field. Accessors are bound to the struct field so
// the list cannot drift from the schema.
type profileField struct {
	name   string
	column string
	get    func(*CoachProfile) *string
	set    func(*CoachProfile, *string)
}

var comparableFields = []profileField{
	{"firstName", "first_name", func(p *CoachProfile) *string { return p.FirstName }, func(p *CoachProfile, v *string) { p.FirstName = v }},
	{"lastName", "last_name", func(p *CoachProfile) *string { return p.LastName }, func(p *CoachProfile, v *string) { p.LastName = v }},
	{"bio", "bio", func(p *CoachProfile) *string { return p.Bio }, func(p *CoachProfile, v *string) { p.Bio = v }},
	{"companyName", "company_name", func(p *CoachProfile) *string { return p.CompanyName }, func(p *CoachProfile, v *string) { p.CompanyName = v }},
	{"addressLine1", "address_line1", func(p *CoachProfile) *string { return p.AddressLine1 }, func(p *CoachProfile, v *string) { p.AddressLine1 = v }},
	{"addressLine2", "address_line2", func(p *CoachProfile) *string { return p.AddressLine2 }, func(p *CoachProfile, v *string) { p.AddressLine2 = v }},
	{"zip", "zip", func(p *CoachProfile) *string { return p.Zip }, func(p *CoachProfile, v *string) { p.Zip = v }},
	{"city", "city", func(p *CoachProfile) *string { return p.City }, func(p *CoachProfile, v *string) { p.City = v }},
	{"country", "country", func(p *CoachProfile) *string { return p.Country }, func(p *CoachProfile, v *string) { p.Country = v }},
	{"appointmentTypes", "appointment_types", func(p *CoachProfile) *string { return p.AppointmentTypes }, func(p *CoachProfile, v *string) { p.AppointmentTypes = v }},
}

// ComparableFields lists the field names ComputeDiff and RevertField accept, in order.
func ComparableFields() []string {
	names := make([]string, len(comparableFields))
	for i, f := range comparableFields {
		names[i] = f.name
	}
	return names
}

func lookupField(name string) (profileField, bool) {
	for _, f := range comparableFields {
		if f.name == name {
			return f, true
		}
	}
	return profileField{}, false
}

// ComputeDiff compares draft against published field by field. published may be nil when
// the coach was never published. A nil draft is a Not-Found error.
func ComputeDiff(published, draft *CoachProfile, opts DiffOptions) ([]DiffEntry, error) {
	if draft == nil {
		return nil, common.ErrNotFound.WithDetails("Draft profile not found.")
	}

	entries := make([]DiffEntry, 0, len(comparableFields))
	for _, f := range comparableFields {
		var oldValue string
		if published != nil {
			oldValue = common.StringValue(f.get(published))
		}
		newValue := common.StringValue(f.get(draft))

		if entry, ok := diffValues(f.name, oldValue, newValue, opts); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func diffValues(field, oldValue, newValue string, opts DiffOptions) (DiffEntry, bool) {
	switch {
	case oldValue == "" && newValue == "":
		return DiffEntry{}, false
	case oldValue == "":
		return DiffEntry{Field: field, IsNew: true, NewValue: newValue}, true
	case newValue == "":
		return DiffEntry{Field: field, IsDeleted: true, OldValue: oldValue}, true
	case oldValue == newValue && !opts.ReportIdentical:
		return DiffEntry{}, false
	default:
		return DiffEntry{Field: field, OldValue: oldValue, NewValue: newValue}, true
	}
}
