package api

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Limiter entries idle longer than clientTTL are dropped during a sweep,
// and sweeps run at most once per sweepInterval.
const (
	clientTTL     = 3 * time.Minute
	sweepInterval = time.Minute
)

// recoverPanic turns a handler panic into a 500 response.
func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				s.serverErrorResponse(w, r, fmt.Errorf("%v", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// client is one IP's token bucket.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimit applies a token bucket per client IP. Stale entries are swept
// inline from the request path, so no background goroutine is needed.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.rps <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			s.serverErrorResponse(w, r, err)
			return
		}
		if !s.allow(ip) {
			s.rateLimitExceededResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > sweepInterval {
		for k, c := range s.clients {
			if now.Sub(c.lastSeen) > clientTTL {
				delete(s.clients, k)
			}
		}
		s.lastSweep = now
	}

	c, found := s.clients[ip]
	if !found {
		c = &client{limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}
