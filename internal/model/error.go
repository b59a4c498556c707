package model

// ErrorResponse is the JSON body of every failed API call.
// Code is the failure kind, e.g. "not_found"; Retryable tells the client
// whether the same request may succeed later with backoff.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable"`
}
