// Package domain defines the data model shared by every pipeline stage.
package domain

// QueryType is the detected semantic class of a query.
type QueryType string

// Query types, in classification priority order.
const (
	QueryTypeEmail    QueryType = "email"
	QueryTypeIP       QueryType = "ip"
	QueryTypePhone    QueryType = "phone"
	QueryTypeDomain   QueryType = "domain"
	QueryTypeUsername QueryType = "username"
	QueryTypeUnknown  QueryType = "unknown"
)

// Query is a classified search input. It is not modified after
// classification.
type Query struct {
	Text string
	Type QueryType
	// Term is the identifying part of Text that collectors look up, such
	// as the bare email address or the username without a leading @.
	Term string
}
