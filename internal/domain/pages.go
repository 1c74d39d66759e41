package frontend_domain

import (
	"html/template"
	"time"

	"github.com/grouptalk-dev/grouptalk/shared/domain"
)

// TopicHeader is the fully-resolved view model for the topic page header.
// It is a pure function of the topic; link targets are derived from the
// same inputs (see handler.TopicHeaderView).
type TopicHeader struct {
	Id        domain.TopicId
	Title     domain.TopicTitle
	CreatedAt time.Time
	Author    domain.User
	Group     domain.GroupMetadata

	Permalink string
	AuthorURL string
	GroupURL  string
}

// Post is a post enriched with rendered body HTML.
type Post struct {
	domain.Post
	Body      template.HTML
	AuthorURL string
}

type TopicPageData struct {
	Header  TopicHeader
	Body    template.HTML
	Posts   []*Post
	CanEdit bool
	EditURL string
}

type GroupPageData struct {
	Group *domain.Group
	Form  TopicFormData
}

// TopicFormData drives both form layouts. Quick switches the compact
// variant; submission semantics are identical either way.
type TopicFormData struct {
	Action  string
	Editing bool
	Quick   bool
	Title   string
	Text    string
	Group   domain.GroupName
}

type TopicFormPageData struct {
	Form TopicFormData
}
