package models

import "encoding/json"

// Envelope wraps every successful API response.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RawEnvelope is the client-side view of Envelope, with data decoded later.
type RawEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ErrorBody is the JSON body of every failed API response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
