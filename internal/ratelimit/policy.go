package ratelimit

import (
	"portfolio/internal/config"
)

// Policy names a limiter so rejections can be reported per policy.
type Policy struct {
	Name    string
	Limiter Limiter
}

// Policies holds the process-wide limiters.
type Policies struct {
	// General is a loose limit on all API traffic per client address.
	General Policy
	// Inquiry is a strict limit on inquiry submissions per client address.
	Inquiry Policy
}

// NewPolicies builds the limiters from configuration.
func NewPolicies(cfg config.RateLimitConfig) *Policies {
	return &Policies{
		General: Policy{
			Name:    "general",
			Limiter: NewBucket(cfg.GeneralMax, cfg.GeneralWindow, cfg.GeneralMax),
		},
		Inquiry: Policy{
			Name:    "inquiry",
			Limiter: NewWindow(cfg.InquiryMax, cfg.InquiryWindow),
		},
	}
}

// Close stops every limiter.
func (p *Policies) Close() {
	p.General.Limiter.Close()
	p.Inquiry.Limiter.Close()
}

// BuildKey creates a limiter key from a policy name and client identifier.
func BuildKey(policy, identifier string) string {
	return policy + ":" + identifier
}
