package lambda

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mememaker/internal/domain"
	"mememaker/internal/infra/stats"
	"mememaker/internal/meme"
)

type fakeGenerator struct {
	got meme.Request
	res meme.Result
	err error
}

func (f *fakeGenerator) Generate(_ context.Context, req meme.Request) (meme.Result, error) {
	f.got = req
	return f.res, f.err
}

func TestRequestFromEvent(t *testing.T) {
	ev := events.APIGatewayProxyRequest{
		QueryStringParameters: map[string]string{"image": "https://x/a.jpg", "topText": "top"},
		MultiValueQueryStringParameters: map[string][]string{
			"topText":    {"ignored"},
			"bottomText": {"first", "second"},
		},
	}

	assert.Equal(t, meme.Request{Image: "https://x/a.jpg", TopText: "top", BottomText: "first"}, RequestFromEvent(ev))
	assert.Equal(t, meme.Request{}, RequestFromEvent(events.APIGatewayProxyRequest{}))
}

func TestHandle_Success(t *testing.T) {
	gen := &fakeGenerator{res: meme.Result{Base64: "QUJD"}}
	rec := stats.NewMemory()
	h := NewHandler(gen, rec, false)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		QueryStringParameters: map[string]string{"image": "https://x/a.jpg", "topText": "hi"},
	})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Headers["Content-Type"])
	assert.Equal(t, `<img src="data:image/jpeg;base64,QUJD"/>`, resp.Body)
	assert.Equal(t, "hi", gen.got.TopText)

	counters, _ := rec.Snapshot(context.Background())
	assert.Equal(t, int64(1), counters[stats.Served])
}

func TestHandle_Failures(t *testing.T) {
	rec := stats.NewMemory()
	invalid := &meme.StageError{State: meme.StateValidating, Err: fmt.Errorf("%w: image is required", domain.ErrValidation)}
	fetch := &meme.StageError{State: meme.StateFetching, Err: fmt.Errorf("%w: status 500", domain.ErrFetch)}

	resp, err := NewHandler(&fakeGenerator{err: invalid}, rec, false).Handle(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	assert.JSONEq(t, `{"error":{"code":400,"message":"validating: validation failed: image is required"}}`, resp.Body)

	resp, err = NewHandler(&fakeGenerator{err: fetch}, rec, false).Handle(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, meme.GenericFailure, resp.Body)

	resp, err = NewHandler(&fakeGenerator{err: fetch}, rec, true).Handle(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, "fetching: fetch failed: status 500", resp.Body)

	counters, _ := rec.Snapshot(context.Background())
	assert.Equal(t, int64(1), counters[stats.Rejected])
	assert.Equal(t, int64(2), counters[stats.Failed])
}
