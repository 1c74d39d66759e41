package api

import "github.com/grouptalk-dev/grouptalk/shared/domain"

// Request DTOs sent to the forum API.

type CreateTopicRequest struct {
	Title             string `json:"title" validate:"required"`
	Text              string `json:"text" validate:"required"`
	VerificationToken string `json:"verification_token"`
}

type EditTopicRequest struct {
	Title             string `json:"title" validate:"required"`
	Text              string `json:"text" validate:"required"`
	VerificationToken string `json:"verification_token"`
}

// WriteData is the body of every topic write response. On success Id carries
// the topic identifier; on rejection Message carries human-readable text.
type WriteData struct {
	Id      domain.TopicId `json:"id,omitempty"`
	Message string         `json:"message,omitempty"`
}

// WriteResult pairs the HTTP status of a write with its decoded body.
// Success is exactly Status == 200.
type WriteResult struct {
	Status int
	Data   WriteData
}

func (r WriteResult) OK() bool {
	return r.Status == 200
}
