package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/grouptalk-dev/grouptalk/internal/apiclient"
	frontend_domain "github.com/grouptalk-dev/grouptalk/internal/domain"
	"github.com/grouptalk-dev/grouptalk/internal/form"
	"github.com/grouptalk-dev/grouptalk/shared/logger"
	"github.com/grouptalk-dev/grouptalk/shared/utils"
)

func (h *Handler) GroupGetHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "group")

	group, err := h.APIClient.GetGroup(apiclient.WithRequestCookies(r.Context(), r.Cookies()), name)
	if err != nil {
		logger.Log.Error("getting group", "group", name, "error", err)
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	data := frontend_domain.GroupPageData{
		Group: &group,
		// Quick-post variant: compact layout, same submission flow.
		Form: frontend_domain.TopicFormData{
			Action: fmt.Sprintf("/group/%s/topics", name),
			Quick:  true,
			Group:  name,
		},
	}
	h.renderTemplate(w, r, "group.html", data)
}

func (h *Handler) TopicNewGetHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "group")

	data := frontend_domain.TopicFormPageData{
		Form: frontend_domain.TopicFormData{
			Action: fmt.Sprintf("/group/%s/topics", name),
			Group:  name,
		},
	}
	h.renderTemplate(w, r, "topic_form.html", data)
}

// TopicCreatePostHandler drives the create flow of the submission protocol.
// Both the quick-post form and the full form land here.
func (h *Handler) TopicCreatePostHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "group")
	fallbackURL := fmt.Sprintf("/group/%s", name)

	mode, err := form.NewCreateMode(name)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	in := form.Input{
		Title: strings.TrimSpace(r.FormValue("title")),
		Text:  strings.TrimSpace(r.FormValue("text")),
	}

	reply := h.newReply(w, r, fallbackURL)
	ctx := apiclient.WithRequestCookies(r.Context(), r.Cookies())
	if err := h.Submitter.Submit(ctx, mode, in, reply, reply); err != nil {
		logger.Log.Error("create submission misconfigured", "group", name, "error", err)
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	reply.finish()
}
