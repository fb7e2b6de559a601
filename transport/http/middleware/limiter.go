package middleware

import (
	"cowork/shared"
	"cowork/shared/cache"
	"cowork/shared/constant"
	"cowork/transport/http/response"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRateLimit = "limiter"

	limiterSubjectEmployer = "employer"
	limiterSubjectClient   = "client"
)

// RateLimit counts requests per employer, or per client address and user agent
// for anonymous callers, in a fixed window. Cache failures never block a request.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.config.App.RateLimiter.Enable {
				next.ServeHTTP(w, r)

				return
			}

			maxReqs := a.config.App.RateLimiter.MaxRequests
			windowSecs := a.config.App.RateLimiter.WindowSeconds
			cacheKey := a.limiterKey(r)

			var count int

			err := a.cache.Get(r.Context(), cacheKey, &count)

			switch {
			case errors.Is(err, cache.Nil):
				count = 1
			case err != nil:
				log.Warn().Err(err).Str("key", cacheKey).Msg("rate limiter unavailable, letting request through")
				next.ServeHTTP(w, r)

				return
			default:
				count++
			}

			if count > maxReqs {
				response.WithRequestLimitExceeded(w)

				return
			}

			if err = a.cache.Save(r.Context(), cacheKey, count, windowSecs); err != nil {
				log.Warn().Err(err).Str("key", cacheKey).Msg("failed to record request count")
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(maxReqs))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, maxReqs-count)))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(windowSecs))

			next.ServeHTTP(w, r)
		})
	}
}

func (a *appMiddleware) limiterKey(r *http.Request) string {
	if employerID, ok := r.Context().Value(constant.ContextKeyUserID).(string); ok && employerID != constant.Empty {
		return shared.BuildCacheKey(cacheKeyRateLimit, limiterSubjectEmployer, employerID)
	}

	return shared.BuildCacheKey(cacheKeyRateLimit, limiterSubjectClient, clientIP(r), userAgent(r))
}

func userAgent(r *http.Request) string {
	if ua := r.Header.Get(constant.RequestHeaderUserAgent); ua != constant.Empty {
		return ua
	}

	return "unknown"
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != constant.Empty {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get(constant.RequestHeaderRealIP); xri != constant.Empty {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
