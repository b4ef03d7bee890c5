package layouts

import (
	"context"
	"encoding/json"

	"github.com/majupersonalizados/briefing/internal/ctxkeys"
)

const defaultAppName = "Maju Personalizados"

func appName(ctx context.Context) string {
	if cfg := ctxkeys.Config(ctx); cfg != nil && cfg.AppName != "" {
		return cfg.AppName
	}
	return defaultAppName
}

func supportEmail(ctx context.Context) string {
	if cfg := ctxkeys.Config(ctx); cfg != nil {
		return cfg.SupportEmail
	}
	return ""
}

// csrfHeaders is the hx-headers value that makes htmx send the CSRF token.
func csrfHeaders(ctx context.Context) string {
	b, err := json.Marshal(map[string]string{"X-CSRF-Token": ctxkeys.CSRFToken(ctx)})
	if err != nil {
		return "{}"
	}
	return string(b)
}
