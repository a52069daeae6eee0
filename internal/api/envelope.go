package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// Envelope is the versioned wrapper around every API response body.
// Clients switch on "success" and read either "data" or the error fields.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// envelopeVersion is bumped only on breaking changes to the wrapper itself.
const envelopeVersion = 1

// EnvelopeTransformer wraps huma response bodies in the standard envelope.
// Error bodies (anything implementing error) become failure envelopes with
// the flat code/message/details fields clients parse.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	if err, ok := v.(error); ok {
		return Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   err.Error(),
			Message: err.Error(),
		}, nil
	}

	if len(status) > 0 && status[0] >= '4' {
		return Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   "request failed",
		}, nil
	}

	return Envelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
