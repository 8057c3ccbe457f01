// Package whois looks up domain and IP registration data over the WHOIS
// protocol.
package whois

import (
	"context"
	"errors"
	"strings"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// SourceID names this collector.
const SourceID = "whois"

const (
	registryConfidence = 0.9
	rawConfidence      = 0.5
)

var applicable = collector.Types(domain.QueryTypeDomain, domain.QueryTypeIP)

// Collector is the WHOIS collector.
type Collector struct {
	client *Client
	log    logger.Logger
}

// New returns a WHOIS collector starting lookups at server.
func New(server string, log logger.Logger) *Collector {
	return &Collector{client: NewClient(server), log: log}
}

// Name implements collector.Collector.
func (c *Collector) Name() string { return SourceID }

// Applicable implements collector.Collector.
func (c *Collector) Applicable(t domain.QueryType) bool { return applicable.Has(t) }

// Collect implements collector.Collector.
func (c *Collector) Collect(ctx context.Context, q domain.Query) ([]domain.RawFinding, error) {
	raw, servers, err := c.client.Lookup(ctx, q.Term)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &collector.Error{SourceID: SourceID, Reason: "deadline exceeded", Err: errors.Join(collector.ErrTimeout, err)}
		}
		return nil, collector.NewError(SourceID, err)
	}
	c.log.Debug("WHOIS lookup finished",
		logger.String("term", q.Term),
		logger.Strings("servers", servers),
	)

	rec := Parse(raw)
	if q.Type == domain.QueryTypeIP {
		return ipFindings(q.Term, rec, raw), nil
	}
	return domainFindings(q.Term, rec, raw), nil
}

func domainFindings(term string, rec Record, raw string) []domain.RawFinding {
	name := rec.Get(FieldDomainName)
	if name == "" {
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		// Registry answered without structured fields.
		return []domain.RawFinding{{
			SourceID:     SourceID,
			Title:        "WHOIS response for " + term,
			Content:      domain.Pre(strings.TrimSpace(raw)),
			CategoryHint: domain.CategoryRawData,
			Confidence:   rawConfidence,
		}}
	}

	out := []domain.RawFinding{{
		SourceID:     SourceID,
		Title:        "WHOIS information for " + strings.ToLower(name),
		Content:      domain.Pre(rec.Format(domainFields)),
		CategoryHint: domain.CategoryDomainInfo,
		Confidence:   registryConfidence,
	}}
	if contacts := rec.Format(contactFields); contacts != "" {
		out = append(out, domain.RawFinding{
			SourceID:     SourceID,
			Title:        "Domain registrant contact information",
			Content:      domain.Pre(contacts),
			CategoryHint: domain.CategoryContactInfo,
			Confidence:   registryConfidence,
		})
	}
	return out
}

func ipFindings(ip string, rec Record, raw string) []domain.RawFinding {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	out := []domain.RawFinding{{
		SourceID:     SourceID,
		Title:        "WHOIS information for IP " + ip,
		Content:      domain.Pre(strings.TrimSpace(raw)),
		CategoryHint: domain.CategoryRawData,
		Confidence:   rawConfidence,
	}}
	if network := rec.Format(networkFields); network != "" {
		out = append(out, domain.RawFinding{
			SourceID:     SourceID,
			Title:        "IP network information for " + ip,
			Content:      domain.Pre(network),
			CategoryHint: domain.CategoryLocationData,
			Confidence:   registryConfidence,
		})
	}
	return out
}
