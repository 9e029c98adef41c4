package domain

// NotificationSettings are the per-kind notification preferences of a user.
type NotificationSettings struct {
	Messages  bool `json:"messages" bson:"messages"`
	Reactions bool `json:"reactions" bson:"reactions"`
	Comments  bool `json:"comments" bson:"comments"`
	Follows   bool `json:"follows" bson:"follows"`
}

// DefaultNotificationSettings enables every kind.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{Messages: true, Reactions: true, Comments: true, Follows: true}
}

// Enabled reports whether the preference for kind is on.
func (s NotificationSettings) Enabled(kind NotificationType) bool {
	switch kind {
	case NotificationComment:
		return s.Comments
	case NotificationReaction:
		return s.Reactions
	case NotificationFollow:
		return s.Follows
	case NotificationMessage:
		return s.Messages
	}
	return false
}

// User is the cached profile of a user. Profiles are created by the auth
// service; this service only maintains counters, block lists and reads
// preferences.
type User struct {
	ID             string               `json:"_id" bson:"_id"`
	UID            int64                `json:"uId" bson:"uId"`
	Username       string               `json:"username" bson:"username"`
	Email          string               `json:"email" bson:"email"`
	AvatarColor    string               `json:"avatarColor" bson:"avatarColor"`
	ProfilePicture string               `json:"profilePicture" bson:"profilePicture"`
	PostsCount     int                  `json:"postsCount" bson:"postsCount"`
	FollowersCount int                  `json:"followersCount" bson:"followersCount"`
	FollowingCount int                  `json:"followingCount" bson:"followingCount"`
	Blocked        []string             `json:"blocked" bson:"blocked"`
	BlockedBy      []string             `json:"blockedBy" bson:"blockedBy"`
	Notifications  NotificationSettings `json:"notifications" bson:"notifications"`
}

// FollowerData returns the profile snapshot used in follower lists.
func (u *User) FollowerData() FollowerData {
	return FollowerData{
		ID:             u.ID,
		UID:            u.UID,
		Username:       u.Username,
		AvatarColor:    u.AvatarColor,
		ProfilePicture: u.ProfilePicture,
		PostsCount:     u.PostsCount,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
	}
}

// Actor is the authenticated caller of an orchestrator.
type Actor struct {
	UserID         string
	UID            int64
	Username       string
	Email          string
	AvatarColor    string
	ProfilePicture string
}
