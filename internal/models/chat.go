package models

// Client-facing API request/response models

// ChatRequest represents an incoming chat request
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse represents a successful chat reply
type ChatResponse struct {
	Reply     string `json:"reply"`
	Timestamp string `json:"timestamp"`
	Model     string `json:"model"`
}

// HealthResponse is the payload for the health check endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the single shape every failure takes. The message is
// human-readable and never carries upstream detail.
type ErrorResponse struct {
	Error string `json:"error"`
}
