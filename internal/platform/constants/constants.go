// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and header configuration.
  - Media: Retention window for unattached uploads.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "bibliora-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim expected in staff JWTs.
	AuthIssuer = "bibliora.shop"
)

// # HTTP Headers

const (
	// HeaderXRequestID carries the correlation ID for log tracing.
	HeaderXRequestID = "X-Request-ID"

	// HeaderOrigin is inspected by the CORS middleware.
	HeaderOrigin = "Origin"

	// HeaderXRealIP and HeaderXForwardedFor identify clients behind proxies.
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
)

// # Catalog Defaults

const (
	// DefaultCurrency is applied when a book payload omits its currency.
	DefaultCurrency = "VND"

	// DefaultStockLocation is the warehouse code for new inventory records.
	DefaultStockLocation = "MAIN"
)

// # Media Lifecycle

const (
	// MediaTempRetention is how long an unattached (TEMP) upload survives
	// before the janitor reclaims it.
	MediaTempRetention = 24 * time.Hour

	// MediaJanitorInterval is how often the cleanup scan runs.
	MediaJanitorInterval = 1 * time.Hour
)

// # Database Schemas

const (
	SchemaCatalog = "catalog"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixBookSlug caches public book lookups keyed by slug.
	RedisPrefixBookSlug = "catalog:book_slug:"
)

const (
	// BookSlugCacheTTL bounds staleness of the public slug cache. Mutations
	// invalidate eagerly; the TTL is a backstop.
	BookSlugCacheTTL = 5 * time.Minute
)
