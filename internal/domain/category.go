package domain

// Category is one of the fixed result buckets.
type Category string

// Result categories.
const (
	CategoryContactInfo    Category = "contact_info"
	CategorySocialProfiles Category = "social_profiles"
	CategoryDomainInfo     Category = "domain_info"
	CategoryBreachData     Category = "breach_data"
	CategoryLocationData   Category = "location_data"
	CategoryRelatedLinks   Category = "related_links"
	CategoryRawData        Category = "raw_data"
)

// Categories lists every category in presentation order.
var Categories = []Category{
	CategoryContactInfo,
	CategorySocialProfiles,
	CategoryDomainInfo,
	CategoryBreachData,
	CategoryLocationData,
	CategoryRelatedLinks,
	CategoryRawData,
}

// Known reports whether c is one of the fixed categories.
func (c Category) Known() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
