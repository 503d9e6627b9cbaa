package webhook

// EventTypeFormResponse is the only event kind that creates entries; all
// other event types are acknowledged and dropped.
const EventTypeFormResponse = "FORM_RESPONSE"

type TallyField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type TallyData struct {
	ResponseID   string       `json:"responseId"`
	SubmissionID string       `json:"submissionId"`
	FormID       string       `json:"formId"`
	FormName     string       `json:"formName"`
	CreatedAt    string       `json:"createdAt"`
	Fields       []TallyField `json:"fields"`
}

type TallyPayload struct {
	EventID   string    `json:"eventId"`
	EventType string    `json:"eventType"`
	CreatedAt string    `json:"createdAt"`
	Data      TallyData `json:"data"`
}
