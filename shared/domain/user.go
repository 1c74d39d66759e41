package domain

type User struct {
	Id        UserId
	Name      string
	AvatarURL string
	Admin     bool
}
