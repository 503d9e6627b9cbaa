package signup

import (
	"github.com/akeren/waitlist-funnel/internal/models"
	"github.com/akeren/waitlist-funnel/pkg/constants"
)

// SignupRequest is the direct web-form payload. The email format is checked
// by the service after normalization, not by a binding tag, so inputs like
// " User@Example.COM " are accepted and folded to one canonical entry.
type SignupRequest struct {
	Email        string `json:"email" binding:"required,max=255"`
	Name         string `json:"name" binding:"omitempty,max=255"`
	FirstName    string `json:"first_name" binding:"omitempty,max=255"`
	LastName     string `json:"last_name" binding:"omitempty,max=255"`
	ReferredBy   string `json:"referred_by" binding:"omitempty,max=64"`
	OptInUpdates bool   `json:"opt_in_updates"`
}

// IngestRequest is the channel-independent signup shape. Both the direct
// form and the webhook adapter reduce to this before reaching the service.
type IngestRequest struct {
	Email        string
	Name         string
	FirstName    string
	LastName     string
	ReferredBy   string
	OptInUpdates bool
	Source       string
	SubmissionID string
	ClientIP     string
}

type SignupResponse struct {
	Position      int    `json:"position"`
	ReferralCode  string `json:"referral_code"`
	AlreadyExists bool   `json:"already_exists"`
	SignupDate    string `json:"signup_date,omitempty"`
}

// ========================================
// Mappers
// ========================================

func ToIngestRequest(req *SignupRequest, clientIP string) *IngestRequest {
	if req == nil {
		return nil
	}
	return &IngestRequest{
		Email:        req.Email,
		Name:         req.Name,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		ReferredBy:   req.ReferredBy,
		OptInUpdates: req.OptInUpdates,
		Source:       models.SourceDirect,
		ClientIP:     clientIP,
	}
}

func ToSignupResponse(entry *models.WaitlistEntry, alreadyExists bool) *SignupResponse {
	if entry == nil {
		return &SignupResponse{}
	}
	return &SignupResponse{
		Position:      entry.Position,
		ReferralCode:  entry.ReferralCode,
		AlreadyExists: alreadyExists,
		SignupDate:    entry.SignupDate.Format(constants.RFC3339DateTimeFormat),
	}
}
