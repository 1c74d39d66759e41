// Package form owns the topic submission protocol: validation, the
// bot-verification step, and the create/edit write flows. Handlers feed it
// user input plus per-request Notifier and Navigator capabilities; everything
// user-visible goes through those, which keeps the protocol testable.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"github.com/grouptalk-dev/grouptalk/internal/verify"
	"github.com/grouptalk-dev/grouptalk/shared/api"
	"github.com/grouptalk-dev/grouptalk/shared/domain"
	"github.com/grouptalk-dev/grouptalk/shared/logger"
)

// Notifier surfaces a transient user-facing message (toast).
type Notifier interface {
	Notify(message string)
}

// Navigator moves the user to a new page after a successful write.
type Navigator interface {
	NavigateTo(url string)
}

// TopicWriter is the slice of the API client the protocol needs.
type TopicWriter interface {
	CreateTopic(ctx context.Context, group domain.GroupName, data api.CreateTopicRequest) (api.WriteResult, error)
	EditTopic(ctx context.Context, id domain.TopicId, data api.EditTopicRequest) (api.WriteResult, error)
}

// Mode selects exactly one submission flow. The two constructors below are
// the only ways to obtain a Mode, so a form configured with both or neither
// flow cannot be represented; a nil Mode is rejected by Submit.
type Mode interface {
	isMode()
}

// CreateMode submits a new topic under a group.
type CreateMode struct {
	Group domain.GroupName
}

func (CreateMode) isMode() {}

func NewCreateMode(group domain.GroupName) (CreateMode, error) {
	if group == "" {
		return CreateMode{}, ErrInvalidMode
	}
	return CreateMode{Group: group}, nil
}

// EditMode rewrites an existing topic. OnUpdate receives the topic with its
// new title and text so the caller can refresh its local copy; the
// verification token is never part of that value.
type EditMode struct {
	Topic    domain.Topic
	OnUpdate func(domain.Topic)
}

func (EditMode) isMode() {}

func NewEditMode(topic domain.Topic, onUpdate func(domain.Topic)) (EditMode, error) {
	if topic.Id <= 0 || onUpdate == nil {
		return EditMode{}, ErrInvalidMode
	}
	return EditMode{Topic: topic, OnUpdate: onUpdate}, nil
}

// ErrInvalidMode reports a misconfigured form: it must carry exactly one of
// the create or edit flows. This is a programming error, not user input.
var ErrInvalidMode = errors.New("form: exactly one of create or edit mode must be supplied")

// Input is what the user typed. Field order matters: the first failing
// field's message is the one shown.
type Input struct {
	Title string `validate:"required"`
	Text  string `validate:"required"`
}

const (
	msgTitleRequired   = "请填写标题"
	msgTextRequired    = "请填写正文内容"
	msgWriteFailed     = "服务暂时不可用，请稍后重试"
	topicPermalinkBase = "/group/topic"
)

// Submitter runs the submission protocol against the forum API.
type Submitter struct {
	api        TopicWriter
	challenger verify.Challenger
	validate   *validator.Validate

	// Advisory flag for presentation only (a resubmission cue), not a lock:
	// concurrent submissions are still allowed through.
	sending atomic.Bool
}

func NewSubmitter(api TopicWriter, challenger verify.Challenger) *Submitter {
	return &Submitter{
		api:        api,
		challenger: challenger,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Sending reports whether a submission is currently in flight.
func (s *Submitter) Sending() bool {
	return s.sending.Load()
}

// Submit runs the full protocol:
//
//  1. validate input; on failure notify with the first error and stop,
//     no write is issued
//  2. set the advisory sending flag (cleared on every path)
//  3. execute the verification challenge; without a token the submission
//     silently does not proceed
//  4. issue the create or edit write; on status 200 navigate to the topic
//     page (edit additionally pushes the updated topic through OnUpdate),
//     otherwise notify with the server-supplied message
//
// The returned error is non-nil only for configuration errors (nil mode);
// user-level failures are reported through the Notifier.
func (s *Submitter) Submit(ctx context.Context, mode Mode, in Input, notifier Notifier, navigator Navigator) error {
	if mode == nil {
		return ErrInvalidMode
	}

	if msg := s.firstValidationMessage(in); msg != "" {
		notifier.Notify(msg)
		return nil
	}

	s.sending.Store(true)
	defer s.sending.Store(false)

	token, err := s.challenger.Execute(ctx)
	if err != nil || token == "" {
		// Challenge failures abort without user feedback; this log line is
		// the only trace. Kept as observed behavior, pending product call.
		logger.Log.Debug("verification challenge yielded no token", "error", err)
		return nil
	}

	switch m := mode.(type) {
	case CreateMode:
		result, err := s.api.CreateTopic(ctx, m.Group, api.CreateTopicRequest{
			Title:             in.Title,
			Text:              in.Text,
			VerificationToken: token,
		})
		if err != nil {
			logger.Log.Error("create topic call failed", "group", m.Group, "error", err)
			notifier.Notify(msgWriteFailed)
			return nil
		}
		if !result.OK() {
			logger.Log.Warn("create topic rejected", "group", m.Group, "status", result.Status, "message", result.Data.Message)
			notifier.Notify(result.Data.Message)
			return nil
		}
		navigator.NavigateTo(fmt.Sprintf("%s/%d", topicPermalinkBase, result.Data.Id))

	case EditMode:
		result, err := s.api.EditTopic(ctx, m.Topic.Id, api.EditTopicRequest{
			Title:             in.Title,
			Text:              in.Text,
			VerificationToken: token,
		})
		if err != nil {
			logger.Log.Error("edit topic call failed", "topic", m.Topic.Id, "error", err)
			notifier.Notify(msgWriteFailed)
			return nil
		}
		if !result.OK() {
			logger.Log.Warn("edit topic rejected", "topic", m.Topic.Id, "status", result.Status, "message", result.Data.Message)
			notifier.Notify(result.Data.Message)
			return nil
		}

		updated := m.Topic
		updated.Title = in.Title
		updated.Text = in.Text
		m.OnUpdate(updated)
		navigator.NavigateTo(fmt.Sprintf("%s/%d", topicPermalinkBase, m.Topic.Id))

	default:
		return ErrInvalidMode
	}

	return nil
}

// firstValidationMessage maps the first failing required field to its
// user-facing message, in Input declaration order.
func (s *Submitter) firstValidationMessage(in Input) string {
	err := s.validate.Struct(in)
	if err == nil {
		return ""
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return msgTitleRequired
	}

	switch fieldErrors[0].Field() {
	case "Title":
		return msgTitleRequired
	case "Text":
		return msgTextRequired
	default:
		return msgTitleRequired
	}
}
