package setup

import (
	"fmt"
	"html/template"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/grouptalk-dev/grouptalk/internal/apiclient"
	"github.com/grouptalk-dev/grouptalk/internal/form"
	"github.com/grouptalk-dev/grouptalk/internal/handler"
	"github.com/grouptalk-dev/grouptalk/internal/markdown"
	"github.com/grouptalk-dev/grouptalk/internal/topiccache"
	"github.com/grouptalk-dev/grouptalk/internal/verify"
	"github.com/grouptalk-dev/grouptalk/shared/config"
	"github.com/grouptalk-dev/grouptalk/shared/jwt"
	mw "github.com/grouptalk-dev/grouptalk/shared/middleware"
)

const (
	baseTemplate           = "base.html"
	tmplPath               = "templates"
	templateReloadInterval = 5 * time.Second
	accessTokenTTL         = 30 * 24 * time.Hour
)

type Dependencies struct {
	Handler *handler.Handler
	Auth    *mw.Auth
	Public  config.Public
}

func SetupDependencies(cfg *config.Config) *Dependencies {
	templates := mustLoadTemplates(tmplPath)

	md := markdown.New()
	apiClient := apiclient.New(cfg.Public.APIBaseURL)
	topics := topiccache.New(apiClient)
	challenger := verify.NewHTTPChallenger(cfg.Public.ChallengeURL, cfg.ChallengeSecret())
	submitter := form.NewSubmitter(apiClient, challenger)

	h := handler.New(templates, cfg.Public, md, apiClient, topics, submitter)
	startTemplateReloader(h, tmplPath)

	jwtSvc := jwt.New(cfg.JwtKey(), accessTokenTTL)

	return &Dependencies{
		Handler: h,
		Auth:    mw.NewAuth(jwtSvc, cfg.Public.LoginURL),
		Public:  cfg.Public,
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

func sub(a, b int) int { return a - b }
func add(a, b int) int { return a + b }

func mustLoadTemplates(tmplPath string) map[string]*template.Template {
	templates := make(map[string]*template.Template)
	files, err := os.ReadDir(tmplPath)
	if err != nil {
		log.Fatal(err)
	}

	for _, f := range files {
		if filepath.Ext(f.Name()) == ".html" && f.Name() != baseTemplate && f.Name() != "partials.html" {
			templates[f.Name()] = template.Must(template.New(baseTemplate).Funcs(
				template.FuncMap{
					"dict":       dict,
					"sub":        sub,
					"add":        add,
					"formatTime": formatTime,
				},
			).ParseFiles(
				path.Join(tmplPath, baseTemplate),
				path.Join(tmplPath, f.Name()),
				path.Join(tmplPath, "partials.html"),
			),
			)
		}
	}
	return templates
}

func startTemplateReloader(h *handler.Handler, tmplPath string) {
	if os.Getenv("ENV") == "development" {
		ticker := time.NewTicker(templateReloadInterval)
		go func() {
			for range ticker.C {
				h.Templates = mustLoadTemplates(tmplPath)
			}
		}()
	}
}
