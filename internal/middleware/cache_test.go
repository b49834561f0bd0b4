package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/auth"
	"github.com/iliyamo/production-manager/internal/config"
)

func testRateConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 10,
	}
}

func routeContext(target, route string) echo.Context {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
	c.SetPath(route)
	return c
}

func TestCacheKeyFrom(t *testing.T) {
	cfg := testCacheConfig()
	a := cacheKeyFrom(cfg, routeContext("/api/clientes?page=1", "/api/clientes"))
	b := cacheKeyFrom(cfg, routeContext("/api/clientes?page=2", "/api/clientes"))
	again := cacheKeyFrom(cfg, routeContext("/api/clientes?page=1", "/api/clientes"))

	if a == b {
		t.Error("different queries share a key")
	}
	if a != again {
		t.Error("key is not stable")
	}
	if !strings.HasPrefix(a, "cache:route:/api/clientes:") {
		t.Errorf("key %q is not namespaced by route", a)
	}
}

func TestCacheKeyFrom_RoleStrategy(t *testing.T) {
	cfg := testCacheConfig()
	cfg.KeyStrategy = "role_route_query"

	anon := routeContext("/api/clientes", "/api/clientes")
	admin := routeContext("/api/clientes", "/api/clientes")
	auth.WithIdentity(admin, adminID)

	if cacheKeyFrom(cfg, anon) == cacheKeyFrom(cfg, admin) {
		t.Error("role is not part of the key")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatal(err)
	}
	status, got, body, ok := decodePayload(payload)
	if !ok {
		t.Fatal("decode failed")
	}
	if status != http.StatusOK || got.Get(echo.HeaderContentType) != echo.MIMEApplicationJSON || string(body) != `{"ok":true}` {
		t.Errorf("got %d %v %s", status, got, body)
	}
}

func TestDecodePayload_Corrupt(t *testing.T) {
	for _, bs := range [][]byte{nil, {0, 0, 0}, {0, 0, 0, 200, 0, 0, 0, 50, '{'}} {
		if _, _, _, ok := decodePayload(bs); ok {
			t.Errorf("decodePayload(%v) reported ok", bs)
		}
	}
}

func TestBuildRateKey(t *testing.T) {
	cfg := testRateConfig()
	c := routeContext("/api/auth/login", "/api/auth/login")
	c.Request().RemoteAddr = "10.0.0.1:5555"

	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:10.0.0.1"},
		{"user", "rl:user:guest"},
		{"ip_route", "rl:ip:10.0.0.1:route:GET /api/auth/login"},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			cfg.KeyStrategy = tt.strategy
			if got := buildRateKey(cfg, c); got != tt.want {
				t.Errorf("buildRateKey = %q, want %q", got, tt.want)
			}
		})
	}
}
