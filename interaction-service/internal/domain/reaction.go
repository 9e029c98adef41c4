package domain

import "time"

// ReactionType is one of the fixed reaction kinds.
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionHappy ReactionType = "happy"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

// ReactionTypes lists every reaction kind in display order.
var ReactionTypes = []ReactionType{
	ReactionLike, ReactionLove, ReactionHappy, ReactionWow, ReactionSad, ReactionAngry,
}

// Valid reports whether t is a known reaction kind.
func (t ReactionType) Valid() bool {
	for _, k := range ReactionTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Reactions maps a reaction kind to its count on a post.
type Reactions map[ReactionType]int

// NewReactions returns a map with every kind at zero.
func NewReactions() Reactions {
	r := make(Reactions, len(ReactionTypes))
	for _, k := range ReactionTypes {
		r[k] = 0
	}
	return r
}

// Validate rejects unknown kinds and negative counts.
func (r Reactions) Validate() error {
	for k, v := range r {
		if !k.Valid() {
			return ValidationError("unknown reaction %q", k)
		}
		if v < 0 {
			return ValidationError("reaction count for %q is negative", k)
		}
	}
	return nil
}

// Total sums every kind.
func (r Reactions) Total() int {
	total := 0
	for _, v := range r {
		total += v
	}
	return total
}

// Reaction is one user's reaction to a post. At most one exists per
// (post, username).
type Reaction struct {
	ID             string       `json:"_id" bson:"_id"`
	PostID         string       `json:"postId" bson:"postId"`
	Type           ReactionType `json:"type" bson:"type"`
	Username       string       `json:"username" bson:"username"`
	AvatarColor    string       `json:"avatarColor" bson:"avatarColor"`
	ProfilePicture string       `json:"profilePicture" bson:"profilePicture"`
	CreatedAt      time.Time    `json:"createdAt" bson:"createdAt"`
}
