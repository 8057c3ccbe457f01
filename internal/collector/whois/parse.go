package whois

import (
	"bufio"
	"strings"

	"github.com/jonesrussell/intelsleuth/internal/collector"
)

// Field names produced by Parse.
const (
	FieldDomainName     = "domain_name"
	FieldRegistrar      = "registrar"
	FieldCreationDate   = "creation_date"
	FieldExpirationDate = "expiration_date"
	FieldUpdatedDate    = "updated_date"
	FieldNameServers    = "name_servers"
	FieldStatus         = "status"
	FieldRegistrantName = "registrant_name"
	FieldRegistrantOrg  = "registrant_organization"
	FieldRegistrantMail = "registrant_email"
	FieldAdminName      = "admin_name"
	FieldAdminEmail     = "admin_email"
	FieldTechName       = "tech_name"
	FieldTechEmail      = "tech_email"
	FieldNetName        = "netname"
	FieldNetRange       = "netrange"
	FieldOrganization   = "organization"
	FieldCIDR           = "cidr"
	FieldCountry        = "country"
)

// fieldMap maps lowercased WHOIS keys to field names.
var fieldMap = map[string]string{
	"domain name":                            FieldDomainName,
	"registrar":                              FieldRegistrar,
	"created":                                FieldCreationDate,
	"creation date":                          FieldCreationDate,
	"registry expiry date":                   FieldExpirationDate,
	"registrar registration expiration date": FieldExpirationDate,
	"updated date":                           FieldUpdatedDate,
	"last-modified":                          FieldUpdatedDate,
	"name server":                            FieldNameServers,
	"nserver":                                FieldNameServers,
	"status":                                 FieldStatus,
	"domain status":                          FieldStatus,
	"registrant name":                        FieldRegistrantName,
	"registrant organization":                FieldRegistrantOrg,
	"registrant email":                       FieldRegistrantMail,
	"admin name":                             FieldAdminName,
	"admin email":                            FieldAdminEmail,
	"tech name":                              FieldTechName,
	"tech email":                             FieldTechEmail,
	"netname":                                FieldNetName,
	"netrange":                               FieldNetRange,
	"inetnum":                                FieldNetRange,
	"organization":                           FieldOrganization,
	"org":                                    FieldOrganization,
	"orgname":                                FieldOrganization,
	"cidr":                                   FieldCIDR,
	"country":                                FieldCountry,
}

// Groups of fields reported together.
var (
	domainFields = []string{
		FieldDomainName, FieldRegistrar, FieldCreationDate, FieldExpirationDate,
		FieldUpdatedDate, FieldStatus, FieldNameServers, FieldOrganization,
	}
	contactFields = []string{
		FieldRegistrantName, FieldRegistrantOrg, FieldRegistrantMail,
		FieldAdminName, FieldAdminEmail, FieldTechName, FieldTechEmail,
	}
	networkFields = []string{
		FieldNetName, FieldNetRange, FieldCIDR, FieldOrganization, FieldCountry,
	}
)

// Record is a parsed WHOIS reply. Repeated keys keep every value in order
// of appearance.
type Record map[string][]string

// Parse extracts known fields from a raw WHOIS reply. Comment lines and
// unknown keys are skipped.
func Parse(raw string) Record {
	rec := make(Record)
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ">>>") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field, known := fieldMap[strings.ToLower(strings.TrimSpace(key))]
		value = strings.TrimSpace(value)
		if !known || value == "" {
			continue
		}
		rec.add(field, value)
	}
	return rec
}

func (r Record) add(field, value string) {
	for _, v := range r[field] {
		if strings.EqualFold(v, value) {
			return
		}
	}
	r[field] = append(r[field], value)
}

// Get returns the first value of field.
func (r Record) Get(field string) string {
	if vs := r[field]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Format renders the given fields as "Label: value" lines, skipping
// absent ones. Multi-valued fields are comma-joined.
func (r Record) Format(fields []string) string {
	var b strings.Builder
	for _, f := range fields {
		vs := r[f]
		if len(vs) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(collector.Label(f))
		b.WriteString(": ")
		b.WriteString(strings.Join(vs, ", "))
	}
	return b.String()
}
