// Package queue runs the durable persistence and email jobs on asynq.
package queue

import (
	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// JobType names a job. The names are shared with other producers and must
// not change.
type JobType string

const (
	AddPostToDB             JobType = "addPostToDB"
	UpdatePostInDB          JobType = "updatePostInDB"
	DeletePostFromDB        JobType = "deletePostFromDB"
	AddCommentToDB          JobType = "addCommentToDB"
	AddReactionToDB         JobType = "addReactionToDB"
	RemoveReactionFromDB    JobType = "removeReactionFromDB"
	AddFollowerToDB         JobType = "addFollowerToDB"
	RemoveFollowerFromDB    JobType = "removeFollowerFromDB"
	AddBlockedUserToDB      JobType = "addBlockedUserToDB"
	RemoveBlockedUserFromDB JobType = "removeBlockedUserFromDB"
	UpdateNotification      JobType = "updateNotification"
	DeleteNotification      JobType = "deleteNotification"
	CommentsEmail           JobType = "commentsEmail"
	ReactionsEmail          JobType = "reactionsEmail"
	FollowersEmail          JobType = "followersEmail"
)

// JobTypes lists every job type. A Registry must handle all of them.
var JobTypes = []JobType{
	AddPostToDB, UpdatePostInDB, DeletePostFromDB,
	AddCommentToDB,
	AddReactionToDB, RemoveReactionFromDB,
	AddFollowerToDB, RemoveFollowerFromDB,
	AddBlockedUserToDB, RemoveBlockedUserFromDB,
	UpdateNotification, DeleteNotification,
	CommentsEmail, ReactionsEmail, FollowersEmail,
}

// Payload is the body of a job. Each job type carries exactly one payload
// variant.
type Payload interface {
	jobPayload()
}

// PostJob carries a post write.
type PostJob struct {
	PostID string             `json:"postId"`
	UserID string             `json:"userId"`
	Post   *domain.Post       `json:"post,omitempty"`
	Update *domain.PostUpdate `json:"update,omitempty"`
}

// CommentJob carries a new comment and the notification recipient.
type CommentJob struct {
	Comment        *domain.Comment `json:"comment"`
	PostID         string          `json:"postId"`
	UserTo         string          `json:"userTo"`
	UserFrom       string          `json:"userFrom"`
	Username       string          `json:"username"`
	NotificationID string          `json:"notificationId"`
}

// ReactionJob carries a reaction replace or removal.
type ReactionJob struct {
	Reaction       *domain.Reaction    `json:"reaction,omitempty"`
	PostID         string              `json:"postId"`
	Username       string              `json:"username"`
	Previous       domain.ReactionType `json:"previousReaction"`
	UserTo         string              `json:"userTo"`
	UserFrom       string              `json:"userFrom"`
	NotificationID string              `json:"notificationId"`
}

// FollowerJob carries a follow edge. KeyOne follows KeyTwo.
type FollowerJob struct {
	KeyOne             string `json:"keyOne"`
	KeyTwo             string `json:"keyTwo"`
	Username           string `json:"username"`
	FollowerDocumentID string `json:"followerDocumentId"`
	NotificationID     string `json:"notificationId"`
}

// BlockedUserJob carries a block-list change. KeyOne blocks or unblocks
// KeyTwo.
type BlockedUserJob struct {
	KeyOne string             `json:"keyOne"`
	KeyTwo string             `json:"keyTwo"`
	Type   domain.BlockAction `json:"type"`
}

// NotificationJob carries a change to one user's notification.
type NotificationJob struct {
	NotificationID string `json:"key"`
	UserTo         string `json:"userTo"`
}

// EmailJob carries a rendered email.
type EmailJob struct {
	ReceiverEmail string `json:"receiverEmail"`
	Template      string `json:"template"`
	Subject       string `json:"subject"`
}

func (*PostJob) jobPayload()         {}
func (*CommentJob) jobPayload()      {}
func (*ReactionJob) jobPayload()     {}
func (*FollowerJob) jobPayload()     {}
func (*BlockedUserJob) jobPayload()  {}
func (*NotificationJob) jobPayload() {}
func (*EmailJob) jobPayload()        {}

// NewPayload returns an empty payload of the variant t carries.
func NewPayload(t JobType) (Payload, bool) {
	switch t {
	case AddPostToDB, UpdatePostInDB, DeletePostFromDB:
		return &PostJob{}, true
	case AddCommentToDB:
		return &CommentJob{}, true
	case AddReactionToDB, RemoveReactionFromDB:
		return &ReactionJob{}, true
	case AddFollowerToDB, RemoveFollowerFromDB:
		return &FollowerJob{}, true
	case AddBlockedUserToDB, RemoveBlockedUserFromDB:
		return &BlockedUserJob{}, true
	case UpdateNotification, DeleteNotification:
		return &NotificationJob{}, true
	case CommentsEmail, ReactionsEmail, FollowersEmail:
		return &EmailJob{}, true
	}
	return nil, false
}
