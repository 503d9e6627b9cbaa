package confirmation

type ConfirmResponse struct {
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
}
