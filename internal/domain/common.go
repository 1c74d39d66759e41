package frontend_domain

import "github.com/grouptalk-dev/grouptalk/shared/domain"

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error      string
	Success    string
	User       *domain.User
	CSRFToken  string
	Validation ValidationData
}

// ValidationData holds validation constants needed by templates.
type ValidationData struct {
	TopicTitleMaxLen int
	TopicTextMaxLen  int
}
