package meme

import (
	"encoding/json"
	"net/http"

	"mememaker/internal/domain"
)

// GenericFailure is the body of every failed response outside debug mode.
const GenericFailure = "Internal server error"

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
)

// Response is the outcome of a Generate call, independent of the transport
// delivering it.
type Response struct {
	Status      int
	ContentType string
	Body        string
}

// Respond maps a Generate result to a response. Validation errors become a
// 400 JSON error envelope, every other failure a 500.
func Respond(res Result, err error, debug bool) Response {
	switch {
	case err == nil:
		return Response{Status: http.StatusOK, ContentType: contentTypeHTML, Body: HTML(res)}
	case domain.IsClientError(err):
		return Response{Status: http.StatusBadRequest, ContentType: contentTypeJSON, Body: ErrorEnvelope(http.StatusBadRequest, err.Error())}
	default:
		return Response{Status: http.StatusInternalServerError, ContentType: contentTypeText, Body: FailureBody(err, debug)}
	}
}

// HTML embeds the result in the response page.
func HTML(res Result) string {
	return `<img src="data:image/jpeg;base64,` + res.Base64 + `"/>`
}

// FailureBody hides err unless debug is set.
func FailureBody(err error, debug bool) string {
	if debug && err != nil {
		return err.Error()
	}
	return GenericFailure
}

type envelopeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope renders {"error":{"code":..,"message":..}}.
func ErrorEnvelope(code int, msg string) string {
	b, _ := json.Marshal(struct {
		Error envelopeError `json:"error"`
	}{envelopeError{Code: code, Message: msg}})
	return string(b)
}
