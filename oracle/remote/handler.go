package remote

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/pthm-cable/pasture/oracle"
)

// Handler serves decisions from Oracle.
type Handler struct {
	Oracle oracle.Oracle
	Log    *slog.Logger
}

// RegisterRoutes mounts the decision and health routes.
func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.POST(DecidePath, h.decide)
	s.GET("/healthz", h.healthz)
}

func (h Handler) decide(c context.Context, ctx *app.RequestContext) {
	var body DecideRequest
	if err := json.Unmarshal(ctx.Request.Body(), &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if h.Oracle == nil {
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "no_oracle", "no oracle configured")
		return
	}

	in, err := h.Oracle.Decide(body.AgentID, body.Needs, body.Energy, snapshotQuery{self: body.AgentID, ctx: &body.Context})
	if err != nil {
		h.logger().Warn("decide_failed", "agent", body.AgentID, "err", err)
		code := "decide_failed"
		if errors.Is(err, oracle.ErrUnavailable) {
			code = "oracle_unavailable"
		}
		writeErrorBody(ctx, consts.StatusInternalServerError, code, err.Error())
		return
	}

	ctx.JSON(consts.StatusOK, DecideResponse{Intent: in.Normalize()})
}

func (h Handler) healthz(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

func (h Handler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
