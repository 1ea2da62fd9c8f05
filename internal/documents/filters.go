package documents

import "github.com/JaimeStill/pdf-annotator/pkg/query"

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.WhereSearch(f.Search, "Filename", "FirstName", "LastName", "Title", "Subject")
	if f.Subject != nil {
		b.WhereEquals("Subject", *f.Subject)
	}
	return b.Limit(f.Limit)
}
