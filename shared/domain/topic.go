package domain

import (
	"time"
)

type GroupMetadata struct {
	Name  GroupName
	Title GroupTitle
}

type TopicMetadata struct {
	Id        TopicId
	Title     TopicTitle
	Group     GroupMetadata
	Author    User
	CreatedAt time.Time
	NumPosts  int
}

type Group struct {
	GroupMetadata
	Topics []*TopicMetadata
}

type Topic struct {
	TopicMetadata
	Text  TopicText
	Posts []*Post
}

type Post struct {
	Id        PostId
	Author    User
	Text      string
	CreatedAt time.Time
}
