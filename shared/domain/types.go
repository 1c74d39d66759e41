package domain

type (
	UserId = int64

	GroupName  = string // url slug, e.g. "life"
	GroupTitle = string

	TopicId    = int64
	TopicTitle = string
	TopicText  = string

	PostId = int64
)
