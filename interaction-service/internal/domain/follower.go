package domain

import "time"

// Follower is a directed follow edge.
type Follower struct {
	ID         string    `json:"_id" bson:"_id"`
	FollowerID string    `json:"followerId" bson:"followerId"`
	FolloweeID string    `json:"followeeId" bson:"followeeId"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// FollowerData is the profile snapshot shown in follower lists and sent with
// the "add follower" event.
type FollowerData struct {
	ID             string `json:"_id"`
	UID            int64  `json:"uId"`
	Username       string `json:"username"`
	AvatarColor    string `json:"avatarColor"`
	ProfilePicture string `json:"profilePicture"`
	PostsCount     int    `json:"postCount"`
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
}

// BlockAction toggles a block-list entry.
type BlockAction string

const (
	ActionBlock   BlockAction = "block"
	ActionUnblock BlockAction = "unblock"
)

// Block-list fields on a user profile.
const (
	FieldBlocked   = "blocked"
	FieldBlockedBy = "blockedBy"
)

// Counter fields on a user profile.
const (
	FieldPostsCount     = "postsCount"
	FieldFollowersCount = "followersCount"
	FieldFollowingCount = "followingCount"
)
