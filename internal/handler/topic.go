package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/grouptalk-dev/grouptalk/internal/apiclient"
	frontend_domain "github.com/grouptalk-dev/grouptalk/internal/domain"
	"github.com/grouptalk-dev/grouptalk/internal/form"
	"github.com/grouptalk-dev/grouptalk/shared/domain"
	"github.com/grouptalk-dev/grouptalk/shared/logger"
	mw "github.com/grouptalk-dev/grouptalk/shared/middleware"
	"github.com/grouptalk-dev/grouptalk/shared/utils"
)

func (h *Handler) TopicGetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseTopicId(chi.URLParam(r, "topic"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	ctx := apiclient.WithRequestCookies(r.Context(), r.Cookies())
	topic, err := h.Topics.Get(ctx, id)
	if err != nil {
		logger.Log.Error("getting topic", "topic", id, "error", err)
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	lastModified := topic.CreatedAt
	if n := len(topic.Posts); n > 0 {
		lastModified = topic.Posts[n-1].CreatedAt
	}
	if checkNotModified(w, r, lastModified) {
		return
	}

	body, err := h.Markdown.Render(topic.Text)
	if err != nil {
		logger.Log.Error("rendering topic body", "topic", id, "error", err)
	}

	data := frontend_domain.TopicPageData{
		Header: TopicHeaderView(topic.TopicMetadata),
		Body:   body,
		Posts:  make([]*frontend_domain.Post, len(topic.Posts)),
	}
	for i, post := range topic.Posts {
		data.Posts[i] = h.renderPost(*post)
	}

	if user := mw.GetUserFromContext(r); user != nil && (user.Id == topic.Author.Id || user.Admin) {
		data.CanEdit = true
		data.EditURL = fmt.Sprintf("/group/topic/%d/edit", id)
	}

	h.renderTemplate(w, r, "topic.html", data)
}

func (h *Handler) TopicEditGetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseTopicId(chi.URLParam(r, "topic"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	topic, err := h.Topics.Get(apiclient.WithRequestCookies(r.Context(), r.Cookies()), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if !canEdit(mw.GetUserFromContext(r), topic.Author) {
		http.Error(w, "只有楼主可以编辑", http.StatusForbidden)
		return
	}

	data := frontend_domain.TopicFormPageData{
		Form: frontend_domain.TopicFormData{
			Action:  fmt.Sprintf("/group/topic/%d/edit", id),
			Editing: true,
			Title:   topic.Title,
			Text:    topic.Text,
			Group:   topic.Group.Name,
		},
	}
	h.renderTemplate(w, r, "topic_form.html", data)
}

// TopicEditPostHandler drives the edit flow of the submission protocol.
// On success the cached copy is refreshed through the cache mutator before
// the user is navigated to the topic page.
func (h *Handler) TopicEditPostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseTopicId(chi.URLParam(r, "topic"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	fallbackURL := fmt.Sprintf("/group/topic/%d/edit", id)

	ctx := apiclient.WithRequestCookies(r.Context(), r.Cookies())
	topic, err := h.Topics.Get(ctx, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if !canEdit(mw.GetUserFromContext(r), topic.Author) {
		http.Error(w, "只有楼主可以编辑", http.StatusForbidden)
		return
	}

	mode, err := form.NewEditMode(*topic, func(updated domain.Topic) {
		h.Topics.Set(updated.Id, updated)
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	in := form.Input{
		Title: strings.TrimSpace(r.FormValue("title")),
		Text:  strings.TrimSpace(r.FormValue("text")),
	}

	reply := h.newReply(w, r, fallbackURL)
	if err := h.Submitter.Submit(ctx, mode, in, reply, reply); err != nil {
		logger.Log.Error("edit submission misconfigured", "topic", id, "error", err)
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	reply.finish()
}

func canEdit(user *domain.User, author domain.User) bool {
	return user != nil && (user.Id == author.Id || user.Admin)
}
