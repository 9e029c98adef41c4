package domain

import "time"

// Comment is a comment on a post. Author fields are a snapshot taken at
// write time and are not re-synced.
type Comment struct {
	ID             string    `json:"_id" bson:"_id"`
	PostID         string    `json:"postId" bson:"postId"`
	Username       string    `json:"username" bson:"username"`
	AvatarColor    string    `json:"avatarColor" bson:"avatarColor"`
	ProfilePicture string    `json:"profilePicture" bson:"profilePicture"`
	Comment        string    `json:"comment" bson:"comment"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// CommentNames lists the distinct commenters on a post and the total number
// of comments.
type CommentNames struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}
