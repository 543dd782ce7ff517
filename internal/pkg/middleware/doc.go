// Package middleware provides HTTP middleware for the RBO API server.
//
// Available middleware:
//   - RateLimiter: per-client token bucket limiting
//   - Recovery: converts handler panics into INTERNAL_ERROR responses
//   - RequestID: propagates or assigns X-Request-ID
//   - Logging: logs method, path, status and duration of each request
//
// Usage:
//
//	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
//	defer rl.Stop()
//	handler = middleware.Chain(mux, middleware.Recovery(log), middleware.RequestID, middleware.Logging(log), rl.Middleware)
package middleware
