package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grouptalk-dev/grouptalk/shared/api"
	"github.com/grouptalk-dev/grouptalk/shared/domain"
)

type mockWriter struct {
	createCalls int
	editCalls   int
	lastCreate  api.CreateTopicRequest
	lastEdit    api.EditTopicRequest
	lastGroup   domain.GroupName
	lastTopicId domain.TopicId
	result      api.WriteResult
	err         error
}

func (m *mockWriter) CreateTopic(ctx context.Context, group domain.GroupName, data api.CreateTopicRequest) (api.WriteResult, error) {
	m.createCalls++
	m.lastGroup = group
	m.lastCreate = data
	return m.result, m.err
}

func (m *mockWriter) EditTopic(ctx context.Context, id domain.TopicId, data api.EditTopicRequest) (api.WriteResult, error) {
	m.editCalls++
	m.lastTopicId = id
	m.lastEdit = data
	return m.result, m.err
}

type mockChallenger struct {
	token  string
	err    error
	called bool
	during func()
}

func (m *mockChallenger) Execute(ctx context.Context) (string, error) {
	m.called = true
	if m.during != nil {
		m.during()
	}
	return m.token, m.err
}

type recordingReply struct {
	messages  []string
	navigated []string
}

func (r *recordingReply) Notify(message string) { r.messages = append(r.messages, message) }
func (r *recordingReply) NavigateTo(url string) { r.navigated = append(r.navigated, url) }

func okChallenger() *mockChallenger {
	return &mockChallenger{token: "tok-1"}
}

func TestSubmit_MissingTitleShowsMessageWithoutWrite(t *testing.T) {
	writer := &mockWriter{}
	challenger := okChallenger()
	s := NewSubmitter(writer, challenger)
	reply := &recordingReply{}

	mode, err := NewCreateMode("life")
	require.NoError(t, err)

	err = s.Submit(context.Background(), mode, Input{Title: "", Text: "world"}, reply, reply)
	require.NoError(t, err)

	assert.Equal(t, []string{"请填写标题"}, reply.messages)
	assert.Empty(t, reply.navigated)
	assert.Zero(t, writer.createCalls+writer.editCalls, "validation failure must not reach the network")
	assert.False(t, challenger.called, "validation failure must not run the challenge")
}

func TestSubmit_MissingTextShowsMessageWithoutWrite(t *testing.T) {
	writer := &mockWriter{}
	s := NewSubmitter(writer, okChallenger())
	reply := &recordingReply{}

	mode, err := NewCreateMode("life")
	require.NoError(t, err)

	err = s.Submit(context.Background(), mode, Input{Title: "hello", Text: ""}, reply, reply)
	require.NoError(t, err)

	assert.Equal(t, []string{"请填写正文内容"}, reply.messages)
	assert.Zero(t, writer.createCalls+writer.editCalls)
}

func TestSubmit_BothMissingShowsTitleMessageFirst(t *testing.T) {
	s := NewSubmitter(&mockWriter{}, okChallenger())
	reply := &recordingReply{}

	mode, err := NewCreateMode("life")
	require.NoError(t, err)

	err = s.Submit(context.Background(), mode, Input{}, reply, reply)
	require.NoError(t, err)

	assert.Equal(t, []string{"请填写标题"}, reply.messages)
}

func TestSubmit_CreateSuccessNavigatesToNewTopic(t *testing.T) {
	writer := &mockWriter{result: api.WriteResult{Status: 200, Data: api.WriteData{Id: 42}}}
	s := NewSubmitter(writer, okChallenger())
	reply := &recordingReply{}

	mode, err := NewCreateMode("life")
	require.NoError(t, err)

	err = s.Submit(context.Background(), mode, Input{Title: "hello", Text: "world"}, reply, reply)
	require.NoError(t, err)

	assert.Equal(t, 1, writer.createCalls)
	assert.Equal(t, "life", writer.lastGroup)
	assert.Equal(t, "hello", writer.lastCreate.Title)
	assert.Equal(t, "world", writer.lastCreate.Text)
	assert.Equal(t, "tok-1", writer.lastCreate.VerificationToken)
	assert.Equal(t, []string{"/group/topic/42"}, reply.navigated)
	assert.Empty(t, reply.messages, "no error toast on success")
}

func TestSubmit_EditSuccessUpdatesCacheThenNavigates(t *testing.T) {
	writer := &mockWriter{result: api.WriteResult{Status: 200}}
	s := NewSubmitter(writer, okChallenger())
	reply := &recordingReply{}

	existing := domain.Topic{
		TopicMetadata: domain.TopicMetadata{Id: 7, Title: "old"},
		Text:          "old body",
	}
	var updated *domain.Topic
	mode, err := NewEditMode(existing, func(topic domain.Topic) { updated = &topic })
	require.NoError(t, err)

	err = s.Submit(context.Background(), mode, Input{Title: "new", Text: "new body"}, reply, reply)
	require.NoError(t, err)

	assert.Equal(t, 1, writer.editCalls)
	assert.Equal(t, domain.TopicId(7), writer.lastTopicId)
	assert.Equal(t, "tok-1", writer.lastEdit.VerificationToken)

	require.NotNil(t, updated, "edit success must push the updated topic through OnUpdate")
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "new body", updated.Text)
	assert.Equal(t, domain.TopicId(7), updated.Id)

	assert.Equal(t, []string{"/group/topic/7"}, reply.navigated)
	assert.Empty(t, reply.messages)
}

func TestSubmit_ServerRejectionShowsServerMessage(t *testing.T) {
	writer := &mockWriter{result: api.WriteResult{Status: 400, Data: api.WriteData{Message: "标题过长"}}}
	s := NewSubmitter(writer, okChallenger())
	reply := &recordingReply{}

	mode, err := NewCreateMode("life")
	require.NoError(t, err)

	err = s.Submit(context.Background(), mode, Input{Title: "hello", Text: "world"}, reply, reply)
	require.NoError(t, err)

	assert.Equal(t, []string{"标题过长"}, reply.messages)
	assert.Empty(t, reply.navigated, "rejected writes must not navigate")
}

func TestSubmit_ChallengeFailureAbortsSilently(t *testing.T) {
	for name, challenger := range map[string]*mockChallenger{
		"error":       {err: errors.New("challenge provider unavailable")},
		"empty token": {token: ""},
	} {
		t.Run(name, func(t *testing.T) {
			writer := &mockWriter{}
			s := NewSubmitter(writer, challenger)
			reply := &recordingReply{}

			mode, err := NewCreateMode("life")
			require.NoError(t, err)

			err = s.Submit(context.Background(), mode, Input{Title: "hello", Text: "world"}, reply, reply)
			require.NoError(t, err)

			assert.Empty(t, reply.messages, "challenge failure surfaces no message")
			assert.Empty(t, reply.navigated)
			assert.Zero(t, writer.createCalls+writer.editCalls)
			assert.False(t, s.Sending(), "sending flag must be cleared")
		})
	}
}

func TestSubmit_SendingFlagSetDuringAndClearedAfter(t *testing.T) {
	writer := &mockWriter{result: api.WriteResult{Status: 200, Data: api.WriteData{Id: 1}}}
	challenger := okChallenger()
	s := NewSubmitter(writer, challenger)
	challenger.during = func() {
		assert.True(t, s.Sending(), "sending must be set while the challenge runs")
	}
	reply := &recordingReply{}

	mode, err := NewCreateMode("life")
	require.NoError(t, err)

	err = s.Submit(context.Background(), mode, Input{Title: "a", Text: "b"}, reply, reply)
	require.NoError(t, err)
	assert.True(t, challenger.called)
	assert.False(t, s.Sending())
}

func TestSubmit_NilModeFailsFast(t *testing.T) {
	writer := &mockWriter{}
	challenger := okChallenger()
	s := NewSubmitter(writer, challenger)
	reply := &recordingReply{}

	err := s.Submit(context.Background(), nil, Input{Title: "a", Text: "b"}, reply, reply)
	require.ErrorIs(t, err, ErrInvalidMode)

	assert.False(t, challenger.called, "misconfiguration must fail before any work")
	assert.Zero(t, writer.createCalls+writer.editCalls)
	assert.Empty(t, reply.messages)
}

func TestNewCreateMode_RequiresGroup(t *testing.T) {
	_, err := NewCreateMode("")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestNewEditMode_RequiresTopicAndCallback(t *testing.T) {
	valid := domain.Topic{TopicMetadata: domain.TopicMetadata{Id: 7}}

	_, err := NewEditMode(domain.Topic{}, func(domain.Topic) {})
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = NewEditMode(valid, nil)
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = NewEditMode(valid, func(domain.Topic) {})
	assert.NoError(t, err)
}
