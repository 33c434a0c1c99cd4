package types

import (
	"github.com/samber/lo"
)

// Metadata holds opaque caller supplied key-value pairs attached to a checkout session.
// Values are untrusted strings and every key is optional.
type Metadata map[string]string

const (
	MetadataKeyBusinessName = "businessName"
	MetadataKeyContactName  = "contactName"
	MetadataKeyPhone        = "phone"
)

// Compact returns a copy without empty values
func (m Metadata) Compact() Metadata {
	return lo.OmitBy(m, func(_ string, v string) bool {
		return v == ""
	})
}

// Get returns the value for key or the empty string
func (m Metadata) Get(key string) string {
	if m == nil {
		return ""
	}
	return m[key]
}
