package coachsearch

import (
	"strconv"
	"strings"
	"time"

	"coach_marketplace_backend/internal/coachprofile"
	"coach_marketplace_backend/internal/common"
)

// IndexName is the Elasticsearch index holding published coach profiles.
const IndexName = "coaches"

// Document is the search representation of a published profile. Documents are keyed by
// the coach's user id so the public profile URL and the search hit agree.
type Document struct {
	UserID              uint      `json:"user_id"`
	ProfileID           uint      `json:"profile_id"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	FullName            string    `json:"full_name"`
	Bio                 string    `json:"bio,omitempty"`
	CompanyName         string    `json:"company_name,omitempty"`
	City                string    `json:"city,omitempty"`
	Zip                 string    `json:"zip,omitempty"`
	Country             string    `json:"country,omitempty"`
	AppointmentTypes    []string  `json:"appointment_types"`
	SpecializationIDs   []uint    `json:"specialization_ids"`
	SpecializationNames []string  `json:"specialization_names"`
	SpecializationSlugs []string  `json:"specialization_slugs"`
	CertificateNames    []string  `json:"certificate_names"`
	PublishedAt         time.Time `json:"published_at"`
}

// DocumentID is the _id used for the coach's document.
func (d Document) DocumentID() string {
	return strconv.FormatUint(uint64(d.UserID), 10)
}

// NewDocument expects Specializations and Certificates to be preloaded.
func NewDocument(p *coachprofile.CoachProfile) Document {
	doc := Document{
		UserID:              p.UserID,
		ProfileID:           p.ID,
		FirstName:           common.StringValue(p.FirstName),
		LastName:            common.StringValue(p.LastName),
		Bio:                 common.StringValue(p.Bio),
		CompanyName:         common.StringValue(p.CompanyName),
		City:                common.StringValue(p.City),
		Zip:                 common.StringValue(p.Zip),
		Country:             common.StringValue(p.Country),
		AppointmentTypes:    []string{},
		SpecializationIDs:   []uint{},
		SpecializationNames: []string{},
		SpecializationSlugs: []string{},
		CertificateNames:    []string{},
		PublishedAt:         p.UpdatedAt,
	}
	doc.FullName = strings.TrimSpace(doc.FirstName + " " + doc.LastName)
	if p.ReviewedAt != nil {
		doc.PublishedAt = *p.ReviewedAt
	}

	types, _ := coachprofile.ParseAppointmentTypes(common.StringValue(p.AppointmentTypes))
	for _, t := range types {
		doc.AppointmentTypes = append(doc.AppointmentTypes, string(t))
	}
	for _, s := range p.Specializations {
		doc.SpecializationIDs = append(doc.SpecializationIDs, s.ID)
		doc.SpecializationNames = append(doc.SpecializationNames, s.Name)
		doc.SpecializationSlugs = append(doc.SpecializationSlugs, s.Slug)
	}
	for _, c := range p.Certificates {
		doc.CertificateNames = append(doc.CertificateNames, c.Name)
	}
	return doc
}

// Mapping is the index body passed to CreateIndexIfNotExists.
func Mapping() map[string]interface{} {
	keyword := map[string]interface{}{"type": "keyword"}
	text := map[string]interface{}{"type": "text"}
	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"user_id":              map[string]interface{}{"type": "long"},
				"profile_id":           map[string]interface{}{"type": "long"},
				"first_name":           text,
				"last_name":            text,
				"full_name":            text,
				"bio":                  text,
				"company_name":         text,
				"city":                 keyword,
				"zip":                  keyword,
				"country":              keyword,
				"appointment_types":    keyword,
				"specialization_ids":   map[string]interface{}{"type": "long"},
				"specialization_names": text,
				"specialization_slugs": keyword,
				"certificate_names":    text,
				"published_at":         map[string]interface{}{"type": "date"},
			},
		},
	}
}
