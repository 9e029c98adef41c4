package domain

import (
	"time"

	"github.com/weiawesome/wes-io-live/pkg/database"
)

// PostModel is the GORM model for the posts table. Reaction counts live in
// one column per kind so they can be incremented in place.
type PostModel struct {
	ID             string    `gorm:"primaryKey;type:varchar(24)"`
	UserID         string    `gorm:"column:user_id;type:varchar(24);index;not null"`
	Username       string    `gorm:"column:username"`
	Email          string    `gorm:"column:email"`
	AvatarColor    string    `gorm:"column:avatar_color"`
	ProfilePicture string    `gorm:"column:profile_picture"`
	Post           string    `gorm:"column:post;type:text"`
	BgColor        string    `gorm:"column:bg_color"`
	Feelings       string    `gorm:"column:feelings"`
	Privacy        string    `gorm:"column:privacy"`
	GifURL         string    `gorm:"column:gif_url"`
	CommentsCount  int       `gorm:"column:comments_count;not null;default:0"`
	ImgVersion     string    `gorm:"column:img_version"`
	ImgID          string    `gorm:"column:img_id"`
	VideoVersion   string    `gorm:"column:video_version"`
	VideoID        string    `gorm:"column:video_id"`
	Like           int       `gorm:"column:reaction_like;not null;default:0"`
	Love           int       `gorm:"column:reaction_love;not null;default:0"`
	Happy          int       `gorm:"column:reaction_happy;not null;default:0"`
	Wow            int       `gorm:"column:reaction_wow;not null;default:0"`
	Sad            int       `gorm:"column:reaction_sad;not null;default:0"`
	Angry          int       `gorm:"column:reaction_angry;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;index"`
}

func (PostModel) TableName() string { return "posts" }

// ReactionColumn returns the posts column holding the count for t.
func ReactionColumn(t ReactionType) string {
	return "reaction_" + string(t)
}

// NewPostModel converts a post for storage.
func NewPostModel(p *Post) *PostModel {
	r := p.Reactions
	return &PostModel{
		ID: p.ID, UserID: p.UserID, Username: p.Username, Email: p.Email,
		AvatarColor: p.AvatarColor, ProfilePicture: p.ProfilePicture,
		Post: p.Post, BgColor: p.BgColor, Feelings: p.Feelings, Privacy: string(p.Privacy),
		GifURL: p.GifURL, CommentsCount: p.CommentsCount,
		ImgVersion: p.ImgVersion, ImgID: p.ImgID, VideoVersion: p.VideoVersion, VideoID: p.VideoID,
		Like: r[ReactionLike], Love: r[ReactionLove], Happy: r[ReactionHappy],
		Wow: r[ReactionWow], Sad: r[ReactionSad], Angry: r[ReactionAngry],
		CreatedAt: p.CreatedAt,
	}
}

// ToDomain converts the row back to a post.
func (m *PostModel) ToDomain() *Post {
	return &Post{
		ID: m.ID, UserID: m.UserID, Username: m.Username, Email: m.Email,
		AvatarColor: m.AvatarColor, ProfilePicture: m.ProfilePicture,
		Post: m.Post, BgColor: m.BgColor, Feelings: m.Feelings, Privacy: Privacy(m.Privacy),
		GifURL: m.GifURL, CommentsCount: m.CommentsCount,
		ImgVersion: m.ImgVersion, ImgID: m.ImgID, VideoVersion: m.VideoVersion, VideoID: m.VideoID,
		Reactions: Reactions{
			ReactionLike: m.Like, ReactionLove: m.Love, ReactionHappy: m.Happy,
			ReactionWow: m.Wow, ReactionSad: m.Sad, ReactionAngry: m.Angry,
		},
		CreatedAt: m.CreatedAt,
	}
}

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID             string    `gorm:"primaryKey;type:varchar(24)"`
	PostID         string    `gorm:"column:post_id;type:varchar(24);index;not null"`
	Username       string    `gorm:"column:username"`
	AvatarColor    string    `gorm:"column:avatar_color"`
	ProfilePicture string    `gorm:"column:profile_picture"`
	Comment        string    `gorm:"column:comment;type:text"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (CommentModel) TableName() string { return "comments" }

func NewCommentModel(c *Comment) *CommentModel {
	return &CommentModel{
		ID: c.ID, PostID: c.PostID, Username: c.Username, AvatarColor: c.AvatarColor,
		ProfilePicture: c.ProfilePicture, Comment: c.Comment, CreatedAt: c.CreatedAt,
	}
}

func (m *CommentModel) ToDomain() *Comment {
	return &Comment{
		ID: m.ID, PostID: m.PostID, Username: m.Username, AvatarColor: m.AvatarColor,
		ProfilePicture: m.ProfilePicture, Comment: m.Comment, CreatedAt: m.CreatedAt,
	}
}

// ReactionModel is the GORM model for the reactions table.
type ReactionModel struct {
	ID             string    `gorm:"primaryKey;type:varchar(24)"`
	PostID         string    `gorm:"column:post_id;type:varchar(24);uniqueIndex:uidx_reaction_post_user;not null"`
	Username       string    `gorm:"column:username;uniqueIndex:uidx_reaction_post_user;index;not null"`
	Type           string    `gorm:"column:type;not null"`
	AvatarColor    string    `gorm:"column:avatar_color"`
	ProfilePicture string    `gorm:"column:profile_picture"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (ReactionModel) TableName() string { return "reactions" }

func NewReactionModel(r *Reaction) *ReactionModel {
	return &ReactionModel{
		ID: r.ID, PostID: r.PostID, Username: r.Username, Type: string(r.Type),
		AvatarColor: r.AvatarColor, ProfilePicture: r.ProfilePicture, CreatedAt: r.CreatedAt,
	}
}

func (m *ReactionModel) ToDomain() *Reaction {
	return &Reaction{
		ID: m.ID, PostID: m.PostID, Username: m.Username, Type: ReactionType(m.Type),
		AvatarColor: m.AvatarColor, ProfilePicture: m.ProfilePicture, CreatedAt: m.CreatedAt,
	}
}

// FollowerModel is the GORM model for the followers table.
type FollowerModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(24)"`
	FollowerID string    `gorm:"column:follower_id;type:varchar(24);uniqueIndex:uidx_follow_pair;not null"`
	FolloweeID string    `gorm:"column:followee_id;type:varchar(24);uniqueIndex:uidx_follow_pair;index;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (FollowerModel) TableName() string { return "followers" }

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID              string               `gorm:"primaryKey;type:varchar(24)"`
	UID             int64                `gorm:"column:uid;index"`
	Username        string               `gorm:"column:username"`
	Email           string               `gorm:"column:email"`
	AvatarColor     string               `gorm:"column:avatar_color"`
	ProfilePicture  string               `gorm:"column:profile_picture"`
	PostsCount      int                  `gorm:"column:posts_count;not null;default:0"`
	FollowersCount  int                  `gorm:"column:followers_count;not null;default:0"`
	FollowingCount  int                  `gorm:"column:following_count;not null;default:0"`
	Blocked         database.StringArray `gorm:"column:blocked"`
	BlockedBy       database.StringArray `gorm:"column:blocked_by"`
	NotifyMessages  bool                 `gorm:"column:notify_messages;not null"`
	NotifyReactions bool                 `gorm:"column:notify_reactions;not null"`
	NotifyComments  bool                 `gorm:"column:notify_comments;not null"`
	NotifyFollows   bool                 `gorm:"column:notify_follows;not null"`
}

func (UserModel) TableName() string { return "users" }

// NewUserModel converts a profile for storage.
func NewUserModel(u *User) *UserModel {
	return &UserModel{
		ID: u.ID, UID: u.UID, Username: u.Username, Email: u.Email,
		AvatarColor: u.AvatarColor, ProfilePicture: u.ProfilePicture,
		PostsCount: u.PostsCount, FollowersCount: u.FollowersCount, FollowingCount: u.FollowingCount,
		Blocked: database.StringArray(u.Blocked), BlockedBy: database.StringArray(u.BlockedBy),
		NotifyMessages: u.Notifications.Messages, NotifyReactions: u.Notifications.Reactions,
		NotifyComments: u.Notifications.Comments, NotifyFollows: u.Notifications.Follows,
	}
}

func (m *UserModel) ToDomain() *User {
	return &User{
		ID: m.ID, UID: m.UID, Username: m.Username, Email: m.Email,
		AvatarColor: m.AvatarColor, ProfilePicture: m.ProfilePicture,
		PostsCount: m.PostsCount, FollowersCount: m.FollowersCount, FollowingCount: m.FollowingCount,
		Blocked: []string(m.Blocked), BlockedBy: []string(m.BlockedBy),
		Notifications: NotificationSettings{
			Messages: m.NotifyMessages, Reactions: m.NotifyReactions,
			Comments: m.NotifyComments, Follows: m.NotifyFollows,
		},
	}
}

// NotificationModel is the GORM model for the notifications table.
type NotificationModel struct {
	ID               string    `gorm:"primaryKey;type:varchar(24)"`
	UserTo           string    `gorm:"column:user_to;type:varchar(24);index;not null"`
	UserFrom         string    `gorm:"column:user_from;type:varchar(24)"`
	Message          string    `gorm:"column:message"`
	NotificationType string    `gorm:"column:notification_type"`
	EntityID         string    `gorm:"column:entity_id"`
	CreatedItemID    string    `gorm:"column:created_item_id"`
	Comment          string    `gorm:"column:comment;type:text"`
	Reaction         string    `gorm:"column:reaction"`
	Post             string    `gorm:"column:post;type:text"`
	ImgID            string    `gorm:"column:img_id"`
	ImgVersion       string    `gorm:"column:img_version"`
	GifURL           string    `gorm:"column:gif_url"`
	Read             bool      `gorm:"column:read;not null;default:false"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (NotificationModel) TableName() string { return "notifications" }

func NewNotificationModel(n *Notification) *NotificationModel {
	return &NotificationModel{
		ID: n.ID, UserTo: n.UserTo, UserFrom: n.UserFrom, Message: n.Message,
		NotificationType: string(n.NotificationType), EntityID: n.EntityID, CreatedItemID: n.CreatedItemID,
		Comment: n.Comment, Reaction: n.Reaction, Post: n.Post,
		ImgID: n.ImgID, ImgVersion: n.ImgVersion, GifURL: n.GifURL, Read: n.Read, CreatedAt: n.CreatedAt,
	}
}

func (m *NotificationModel) ToDomain() *Notification {
	return &Notification{
		ID: m.ID, UserTo: m.UserTo, UserFrom: m.UserFrom, Message: m.Message,
		NotificationType: NotificationType(m.NotificationType), EntityID: m.EntityID, CreatedItemID: m.CreatedItemID,
		Comment: m.Comment, Reaction: m.Reaction, Post: m.Post,
		ImgID: m.ImgID, ImgVersion: m.ImgVersion, GifURL: m.GifURL, Read: m.Read, CreatedAt: m.CreatedAt,
	}
}

// Models lists every table for auto-migration.
func Models() []interface{} {
	return []interface{}{
		&PostModel{}, &CommentModel{}, &ReactionModel{}, &FollowerModel{}, &UserModel{}, &NotificationModel{},
	}
}
