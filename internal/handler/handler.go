package handler

import (
	"html/template"
	"net/http"

	"github.com/grouptalk-dev/grouptalk/internal/apiclient"
	"github.com/grouptalk-dev/grouptalk/internal/form"
	"github.com/grouptalk-dev/grouptalk/internal/markdown"
	"github.com/grouptalk-dev/grouptalk/internal/topiccache"
	"github.com/grouptalk-dev/grouptalk/shared/config"
)

type Handler struct {
	Templates map[string]*template.Template
	Public    config.Public
	Markdown  *markdown.Renderer
	APIClient *apiclient.APIClient
	Topics    *topiccache.Cache
	Submitter *form.Submitter
}

func New(templates map[string]*template.Template, publicCfg config.Public, md *markdown.Renderer, apiClient *apiclient.APIClient, topics *topiccache.Cache, submitter *form.Submitter) *Handler {
	return &Handler{
		Templates: templates,
		Public:    publicCfg,
		Markdown:  md,
		APIClient: apiClient,
		Topics:    topics,
		Submitter: submitter,
	}
}

func FaviconHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "static/favicon.ico")
}
