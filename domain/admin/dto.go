package admin

type TestEmailsRequest struct {
	Email string `json:"email" binding:"required,max=255"`
}

type TestEmailsResponse struct {
	Email string   `json:"email"`
	Sent  []string `json:"sent"`
}
