package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds (86400 seconds = 24 hours)
	AccessTokenTTLSeconds = 86400
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Messaging constants
const (
	// MaxSMSBodyLength is the single-segment SMS body cap
	MaxSMSBodyLength = 160

	// MaxEmailSubjectLength is the RFC 2822 recommended subject cap
	MaxEmailSubjectLength = 78

	// MaxEmailBodyLength is the cap applied to generated email bodies
	MaxEmailBodyLength = 500

	// CampaignPreviewCount is how many recipient previews a create response carries
	CampaignPreviewCount = 5
)

// Cache key constants (combined with the configured redis prefix)
const (
	FilterOptionsCacheKey = "filter_options"
)

// Pagination constants
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
