package schema

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	metadataPolicyOnce sync.Once
	metadataPolicy     *bluemonday.Policy
)

func metadataSanitizer() *bluemonday.Policy {
	metadataPolicyOnce.Do(func() {
		metadataPolicy = bluemonday.StrictPolicy()
	})
	return metadataPolicy
}

// sanitize strips markup from display metadata. Labels and help text come
// from schema authors, which may include documents converted by external
// extraction services; they end up in rendered pages, so everything that is
// not plain text is removed at load time.
func (s *FormSchema) sanitize() {
	policy := metadataSanitizer()
	clean := func(raw string) string {
		return strings.TrimSpace(policy.Sanitize(raw))
	}

	s.Title = clean(s.Title)
	s.Description = clean(s.Description)

	sanitizeFields := func(fields []FieldSpec) {
		for i := range fields {
			fields[i].Label = clean(fields[i].Label)
			fields[i].Placeholder = clean(fields[i].Placeholder)
			fields[i].HelpText = clean(fields[i].HelpText)
		}
	}

	sanitizeFields(s.FieldList)
	for i := range s.Sections {
		s.Sections[i].Title = clean(s.Sections[i].Title)
		s.Sections[i].Description = clean(s.Sections[i].Description)
		sanitizeFields(s.Sections[i].Fields)
	}
}
