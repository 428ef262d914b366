package http

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stoktakip/catalog-view/pkg/logger"
)

// Facet lists change rarely and are identical for every user, so their
// responses are cached in Redis. A nil client disables caching.
const facetCacheTTL = 5 * time.Minute

// CacheMiddleware caches successful GET responses in Redis
func CacheMiddleware(redisClient *redis.Client, ttl time.Duration, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient == nil || r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		cacheKey := generateCacheKey(r)
		ctx := r.Context()

		cached, err := redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil && len(cached) > 0 {
			logger.Logger.Debug().
				Str("path", r.URL.Path).
				Str("cache_key", cacheKey).
				Msg("Cache hit")

			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}

		recorder := &cachingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		if recorder.status == http.StatusOK && len(recorder.body) > 0 {
			if err := redisClient.Set(ctx, cacheKey, recorder.body, ttl).Err(); err != nil {
				logger.Logger.Warn().
					Err(err).
					Str("cache_key", cacheKey).
					Msg("Failed to cache response")
			}
		}
	}
}

// cachingWriter captures the response body as it is written through
type cachingWriter struct {
	http.ResponseWriter
	status int
	body   []byte
}

func (cw *cachingWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.Header().Set("X-Cache", "MISS")
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *cachingWriter) Write(p []byte) (int, error) {
	cw.body = append(cw.body, p...)
	return cw.ResponseWriter.Write(p)
}

// generateCacheKey hashes method, path and query into a stable key
func generateCacheKey(r *http.Request) string {
	keyComponents := fmt.Sprintf("%s:%s:%s",
		r.Method,
		r.URL.Path,
		r.URL.RawQuery,
	)
	hash := sha256.Sum256([]byte(keyComponents))
	return fmt.Sprintf("cache:%s", hex.EncodeToString(hash[:]))
}
