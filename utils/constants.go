// File: utils/constants.go
package utils

import "time"

// MatchCachePrefix is the prefix used for Redis match-result cache keys.
const MatchCachePrefix = "match:"

// GeoCachePrefix is the prefix used for Redis geocode cache keys.
const GeoCachePrefix = "geo:"

// GeoCacheTTL is the time-to-live for cached geocode responses. Resolved
// digital addresses are stable, so this can be generous.
const GeoCacheTTL = 24 * time.Hour
