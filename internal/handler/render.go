package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	frontend_domain "github.com/grouptalk-dev/grouptalk/internal/domain"
	internal_mw "github.com/grouptalk-dev/grouptalk/internal/middleware"
	"github.com/grouptalk-dev/grouptalk/shared/domain"
	"github.com/grouptalk-dev/grouptalk/shared/logger"
	mw "github.com/grouptalk-dev/grouptalk/shared/middleware"
)

// checkNotModified handles HTTP conditional GET requests using Last-Modified/If-Modified-Since.
// Returns true if a 304 Not Modified response was sent (caller should return early).
func checkNotModified(w http.ResponseWriter, r *http.Request, lastModified time.Time) bool {
	lastModified = lastModified.UTC().Truncate(time.Second)

	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Vary", "Cookie")
	w.Header().Set("Last-Modified", lastModified.Format(http.TimeFormat))

	if ifModifiedSince := r.Header.Get("If-Modified-Since"); ifModifiedSince != "" {
		if t, err := http.ParseTime(ifModifiedSince); err == nil {
			if !lastModified.After(t.UTC().Truncate(time.Second)) {
				w.WriteHeader(http.StatusNotModified)
				return true
			}
		}
	}
	return false
}

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common frontend_domain.CommonTemplateData
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	tmpl, ok := h.Templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	wrapped := TemplateData{
		Data:   data,
		Common: h.initCommonTemplateData(w, r),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, wrapped); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	_, _ = buf.WriteTo(w)
}

func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request) frontend_domain.CommonTemplateData {
	return frontend_domain.CommonTemplateData{
		Error:     h.popFlash(w, r, flashCookieError),
		Success:   h.popFlash(w, r, flashCookieSuccess),
		User:      mw.GetUserFromContext(r),
		CSRFToken: internal_mw.GetCSRFTokenFromContext(r),
		Validation: frontend_domain.ValidationData{
			TopicTitleMaxLen: h.Public.TopicTitleMaxLen,
			TopicTextMaxLen:  h.Public.TopicTextMaxLen,
		},
	}
}

// TopicHeaderView is a pure function from topic metadata to the header view
// model. No I/O, no state: same inputs always yield the same header, and the
// link targets are derived from the same inputs.
func TopicHeaderView(md domain.TopicMetadata) frontend_domain.TopicHeader {
	return frontend_domain.TopicHeader{
		Id:        md.Id,
		Title:     md.Title,
		CreatedAt: md.CreatedAt,
		Author:    md.Author,
		Group:     md.Group,
		Permalink: fmt.Sprintf("/group/topic/%d", md.Id),
		AuthorURL: fmt.Sprintf("/people/%s", md.Author.Name),
		GroupURL:  fmt.Sprintf("/group/%s", md.Group.Name),
	}
}

// renderPost transforms a domain.Post into its view model.
func (h *Handler) renderPost(post domain.Post) *frontend_domain.Post {
	rendered := frontend_domain.Post{
		Post:      post,
		AuthorURL: fmt.Sprintf("/people/%s", post.Author.Name),
	}
	body, err := h.Markdown.Render(post.Text)
	if err != nil {
		logger.Log.Error("rendering post body", "post", post.Id, "error", err)
		return &rendered // body left empty rather than leaking raw input
	}
	rendered.Body = body
	return &rendered
}
