package handler

import (
	"context"
	"encoding/base64"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grouptalk-dev/grouptalk/internal/apiclient"
	"github.com/grouptalk-dev/grouptalk/internal/form"
	"github.com/grouptalk-dev/grouptalk/internal/markdown"
	"github.com/grouptalk-dev/grouptalk/internal/topiccache"
	"github.com/grouptalk-dev/grouptalk/shared/config"
	"github.com/grouptalk-dev/grouptalk/shared/domain"
	mw "github.com/grouptalk-dev/grouptalk/shared/middleware"
)

type stubChallenger struct {
	token string
	err   error
}

func (s stubChallenger) Execute(ctx context.Context) (string, error) {
	return s.token, s.err
}

func testTemplates(t *testing.T) map[string]*template.Template {
	t.Helper()
	parse := func(body string) *template.Template {
		return template.Must(template.New("base.html").Parse(body))
	}
	return map[string]*template.Template{
		"topic.html":      parse(`{{.Data.Header.Title}}|{{.Data.Header.Permalink}}|{{.Data.Header.AuthorURL}}|{{range .Data.Posts}}{{.Author.Name}};{{end}}`),
		"group.html":      parse(`{{.Data.Group.Title}}|{{.Data.Form.Action}}`),
		"topic_form.html": parse(`{{.Data.Form.Action}}|{{.Data.Form.Title}}|{{.Data.Form.Text}}`),
	}
}

func newTestHandler(t *testing.T, apiURL string, challenger stubChallenger) *Handler {
	t.Helper()
	client := apiclient.New(apiURL)
	return New(
		testTemplates(t),
		config.Public{TopicTitleMaxLen: 100, TopicTextMaxLen: 20000},
		markdown.New(),
		client,
		topiccache.New(client),
		form.NewSubmitter(client, challenger),
	)
}

func newTestRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/group/{group}", h.GroupGetHandler)
	r.Get("/group/topic/{topic}", h.TopicGetHandler)
	r.Get("/group/{group}/new", h.TopicNewGetHandler)
	r.Post("/group/{group}/topics", h.TopicCreatePostHandler)
	r.Get("/group/topic/{topic}/edit", h.TopicEditGetHandler)
	r.Post("/group/topic/{topic}/edit", h.TopicEditPostHandler)
	return r
}

func withUser(r *http.Request, user *domain.User) *http.Request {
	ctx := context.WithValue(r.Context(), mw.UserClaimsKey, user)
	return r.WithContext(ctx)
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func flashMessage(t *testing.T, rr *httptest.ResponseRecorder, name string) string {
	t.Helper()
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == name && cookie.MaxAge >= 0 {
			decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
			require.NoError(t, err)
			return string(decoded)
		}
	}
	return ""
}

func seedTopic(h *Handler) domain.Topic {
	topic := domain.Topic{
		TopicMetadata: domain.TopicMetadata{
			Id:        7,
			Title:     "old",
			Group:     domain.GroupMetadata{Name: "life", Title: "生活"},
			Author:    domain.User{Id: 5, Name: "amy"},
			CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Text: "old body",
		Posts: []*domain.Post{
			{Id: 1, Author: domain.User{Id: 9, Name: "ben"}, Text: "reply", CreatedAt: time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)},
		},
	}
	h.Topics.Set(topic.Id, topic)
	return topic
}

func TestTopicGetHandler(t *testing.T) {
	h := newTestHandler(t, "http://unused", stubChallenger{})
	seedTopic(h)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/group/topic/7", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "old")
	assert.Contains(t, body, "/group/topic/7")
	assert.Contains(t, body, "/people/amy")
	assert.Contains(t, body, "ben;")
	assert.NotEmpty(t, rr.Header().Get("Last-Modified"))
}

func TestTopicGetHandler_NotModified(t *testing.T) {
	h := newTestHandler(t, "http://unused", stubChallenger{})
	seedTopic(h)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/group/topic/7", nil)
	// Last post is from 2024-03-02; a later If-Modified-Since gets a 304.
	req.Header.Set("If-Modified-Since", time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotModified, rr.Code)
}

func TestTopicGetHandler_InvalidId(t *testing.T) {
	h := newTestHandler(t, "http://unused", stubChallenger{})
	router := newTestRouter(h)

	for _, target := range []string{"/group/topic/abc", "/group/topic/-1", "/group/topic/0"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code, target)
	}
}

func TestTopicCreatePostHandler_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/group/life/topics", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42}`))
	}))
	defer ts.Close()

	h := newTestHandler(t, ts.URL, stubChallenger{token: "tok-1"})
	router := newTestRouter(h)

	req := postForm("/group/life/topics", url.Values{"title": {"hello"}, "text": {"world"}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withUser(req, &domain.User{Id: 5, Name: "amy"}))

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/group/topic/42", rr.Header().Get("Location"))
	assert.Empty(t, flashMessage(t, rr, "flash_error"))
}

func TestTopicCreatePostHandler_ForwardsUserCookies(t *testing.T) {
	var backendCookies []*http.Cookie
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendCookies = r.Cookies()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42}`))
	}))
	defer ts.Close()

	h := newTestHandler(t, ts.URL, stubChallenger{token: "tok-1"})
	router := newTestRouter(h)

	req := postForm("/group/life/topics", url.Values{"title": {"hello"}, "text": {"world"}})
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "jwt-value"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withUser(req, &domain.User{Id: 5, Name: "amy"}))

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/group/topic/42", rr.Header().Get("Location"))

	// The write must carry the poster's identity to the backend.
	require.Len(t, backendCookies, 1)
	assert.Equal(t, "accessToken", backendCookies[0].Name)
	assert.Equal(t, "jwt-value", backendCookies[0].Value)
}

func TestTopicCreatePostHandler_ValidationError(t *testing.T) {
	apiCalled := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalled = true
	}))
	defer ts.Close()

	h := newTestHandler(t, ts.URL, stubChallenger{token: "tok-1"})
	router := newTestRouter(h)

	req := postForm("/group/life/topics", url.Values{"title": {""}, "text": {"world"}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/group/life", rr.Header().Get("Location"), "validation failure lands back on the group page")
	assert.Equal(t, "请填写标题", flashMessage(t, rr, "flash_error"))
	assert.False(t, apiCalled, "no write call on validation failure")
}

func TestTopicCreatePostHandler_ServerRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "标题过长"}`))
	}))
	defer ts.Close()

	h := newTestHandler(t, ts.URL, stubChallenger{token: "tok-1"})
	router := newTestRouter(h)

	req := postForm("/group/life/topics", url.Values{"title": {"hello"}, "text": {"world"}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/group/life", rr.Header().Get("Location"))
	assert.Equal(t, "标题过长", flashMessage(t, rr, "flash_error"))
}

func TestTopicEditPostHandler_SuccessUpdatesCache(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/group/topics/7", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	h := newTestHandler(t, ts.URL, stubChallenger{token: "tok-1"})
	seedTopic(h)
	router := newTestRouter(h)

	req := postForm("/group/topic/7/edit", url.Values{"title": {"new"}, "text": {"new body"}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withUser(req, &domain.User{Id: 5, Name: "amy"}))

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/group/topic/7", rr.Header().Get("Location"))

	cached, err := h.Topics.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "new", cached.Title)
	assert.Equal(t, "new body", cached.Text)
}

func TestTopicEditPostHandler_ForbiddenForOtherUsers(t *testing.T) {
	h := newTestHandler(t, "http://unused", stubChallenger{token: "tok-1"})
	seedTopic(h)
	router := newTestRouter(h)

	req := postForm("/group/topic/7/edit", url.Values{"title": {"new"}, "text": {"new body"}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withUser(req, &domain.User{Id: 6, Name: "eve"}))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestTopicEditGetHandler_PrefillsForm(t *testing.T) {
	h := newTestHandler(t, "http://unused", stubChallenger{})
	seedTopic(h)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/group/topic/7/edit", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withUser(req, &domain.User{Id: 5, Name: "amy"}))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "/group/topic/7/edit")
	assert.Contains(t, body, "old")
	assert.Contains(t, body, "old body")
}
