package dto

type CreateReportCardRequest struct {
	FullName        string  `json:"fullName"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email"`
	IDType          string  `json:"idType"`
	IDDescription   string  `json:"idDescription"`
	FileDescription *string `json:"fileDescription"`
	FileURL         *string `json:"fileUrl"`
}

// UpdateReportCardStatusRequest moves a card between lost, found and resolved.
type UpdateReportCardStatusRequest struct {
	Status string `json:"status"`
}
