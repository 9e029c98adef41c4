// Package realtime pushes interaction events to connected websocket
// clients across every instance.
package realtime

import "github.com/weiawesome/wes-io-live/pkg/pubsub"

// Event names sent to clients.
const (
	EventAddPost            = "add post"
	EventUpdatePost         = "update post"
	EventDeletePost         = "delete post"
	EventAddComment         = "add comment"
	EventAddReaction        = "add reaction"
	EventRemoveReaction     = "remove reaction"
	EventAddFollower        = "add follower"
	EventRemoveFollower     = "remove follower"
	EventBlockedUser        = "blocked user"
	EventUnblockedUser      = "unblocked user"
	EventInsertNotification = "insert notification"
	EventUpdateNotification = "update notification"
	EventDeleteNotification = "delete notification"
)

var eventNamespaces = map[string]string{
	EventAddPost:            pubsub.NamespacePosts,
	EventUpdatePost:         pubsub.NamespacePosts,
	EventDeletePost:         pubsub.NamespacePosts,
	EventAddComment:         pubsub.NamespaceComments,
	EventAddReaction:        pubsub.NamespaceReactions,
	EventRemoveReaction:     pubsub.NamespaceReactions,
	EventAddFollower:        pubsub.NamespaceFollowers,
	EventRemoveFollower:     pubsub.NamespaceFollowers,
	EventBlockedUser:        pubsub.NamespaceFollowers,
	EventUnblockedUser:      pubsub.NamespaceFollowers,
	EventInsertNotification: pubsub.NamespaceNotifications,
	EventUpdateNotification: pubsub.NamespaceNotifications,
	EventDeleteNotification: pubsub.NamespaceNotifications,
}

// NamespaceFor returns the namespace an event is published on.
func NamespaceFor(event string) (string, bool) {
	ns, ok := eventNamespaces[event]
	return ns, ok
}

// Frame is what a websocket client receives.
type Frame struct {
	Namespace string      `json:"namespace"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
}
