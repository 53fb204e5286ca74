// Package lambda adapts API Gateway proxy events to the caption pipeline.
package lambda

import (
	"context"

	"github.com/aws/aws-lambda-go/events"

	"mememaker/internal/domain"
	"mememaker/internal/infra/logging"
	"mememaker/internal/infra/stats"
	"mememaker/internal/meme"
)

// Generator runs one caption job.
type Generator interface {
	Generate(ctx context.Context, req meme.Request) (meme.Result, error)
}

// Handler answers API Gateway proxy requests the same way the HTTP server
// answers GET /v1/meme.
type Handler struct {
	Service Generator
	Stats   stats.Recorder
	Debug   bool
}

func NewHandler(svc Generator, rec stats.Recorder, debug bool) *Handler {
	if rec == nil {
		rec = stats.NewMemory()
	}
	return &Handler{Service: svc, Stats: rec, Debug: debug}
}

// Handle never returns an error: every failure is rendered into the response
// so API Gateway does not answer with its own 502.
func (h *Handler) Handle(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req := RequestFromEvent(ev)
	res, err := h.Service.Generate(ctx, req)

	switch {
	case err == nil:
		h.Stats.Incr(ctx, stats.Served)
	case domain.IsClientError(err):
		h.Stats.Incr(ctx, stats.Rejected)
	default:
		h.Stats.Incr(ctx, stats.Failed)
		logging.Error("Meme generation failed", "request_id", ev.RequestContext.RequestID, "error", err)
	}

	out := meme.Respond(res, err, h.Debug)
	return events.APIGatewayProxyResponse{
		StatusCode: out.Status,
		Headers:    map[string]string{"Content-Type": out.ContentType},
		Body:       out.Body,
	}, nil
}

// RequestFromEvent reads the caption parameters from the query string. The
// single-value map wins; the first multi-value entry is the fallback.
func RequestFromEvent(ev events.APIGatewayProxyRequest) meme.Request {
	param := func(name string) string {
		if v, ok := ev.QueryStringParameters[name]; ok {
			return v
		}
		if vs := ev.MultiValueQueryStringParameters[name]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}
	return meme.Request{
		Image:      param("image"),
		TopText:    param("topText"),
		BottomText: param("bottomText"),
	}
}
