package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler  healthHandler
	projectHandler projectHandler
	commentHandler commentHandler
	fileHandler    fileHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

// MessageResponse acknowledges a mutation that has no body of its own.
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadResponse is returned by the upload endpoint. Message says whether the
// file was linked to a project.
type UploadResponse struct {
	FileURL  string `json:"fileUrl"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mimeType"`
	Message  string `json:"message"`
}

// ImageResponse carries a project's main image, null when it has none.
type ImageResponse struct {
	FileURL *string `json:"fileUrl"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
	Database  string `json:"database"`
}

// deleteCommentRequest accepts the ownership email in the body.
type deleteCommentRequest struct {
	Email string `json:"email"`
}
