package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/colarrange/internal/core"
	webmw "github.com/JonMunkholm/colarrange/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for the
// service's log entries. The IP has already been resolved by TrustedRealIP.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, webmw.ClientIP(r))
	return core.ContextWithUserAgent(ctx, r.UserAgent())
}
