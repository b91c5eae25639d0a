package dto

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
	Warning string   `json:"warning,omitempty"`
}

func OK(data any) Response {
	return Response{Success: true, Data: data}
}

func Fail(message string, details ...string) Response {
	return Response{Success: false, Error: message, Details: details}
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Storage   string `json:"storage"`
}

type UploadResponse struct {
	FileURL string `json:"fileUrl"`
}
