package ctxkeys

import (
	"context"

	"github.com/majupersonalizados/briefing/internal/config"
	"github.com/majupersonalizados/briefing/internal/model"
	"github.com/majupersonalizados/briefing/internal/wizard"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	SessionKey   contextKey = "admin_session"
	FlowKey      contextKey = "flow"
	FlowIDKey    contextKey = "flow_id"
	URLPathKey   contextKey = "url_path"
	ConfigKey    contextKey = "config"
	CSRFTokenKey contextKey = "csrf_token"
)

// Session returns the signed-in dashboard session, or nil.
func Session(ctx context.Context) *model.AdminSession {
	session, _ := ctx.Value(SessionKey).(*model.AdminSession)
	return session
}

func WithSession(ctx context.Context, session *model.AdminSession) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// Flow returns the visitor's briefing form state, or nil outside the form routes.
func Flow(ctx context.Context) *wizard.Flow {
	flow, _ := ctx.Value(FlowKey).(*wizard.Flow)
	return flow
}

func FlowID(ctx context.Context) string {
	id, _ := ctx.Value(FlowIDKey).(string)
	return id
}

func WithFlow(ctx context.Context, id string, flow *wizard.Flow) context.Context {
	ctx = context.WithValue(ctx, FlowIDKey, id)
	return context.WithValue(ctx, FlowKey, flow)
}

func URLPath(ctx context.Context) string {
	path, _ := ctx.Value(URLPathKey).(string)
	return path
}

func WithURLPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, URLPathKey, path)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}

func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CSRFTokenKey, token)
}
