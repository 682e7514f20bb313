package dto

// ErrorResponse is the uniform error shape. Details carries field
// errors for validation failures; First names the field the client
// should focus.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
	First   string            `json:"first,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
