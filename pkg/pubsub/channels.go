package pubsub

import "strings"

// Real-time channels are named realtime:<namespace>, one per resource kind.
const (
	ChannelPrefix   = "realtime:"
	RealtimePattern = ChannelPrefix + "*"

	NamespacePosts         = "posts"
	NamespaceComments      = "comments"
	NamespaceReactions     = "reactions"
	NamespaceFollowers     = "followers"
	NamespaceNotifications = "notifications"
)

// Namespaces lists every real-time namespace.
var Namespaces = []string{
	NamespacePosts,
	NamespaceComments,
	NamespaceReactions,
	NamespaceFollowers,
	NamespaceNotifications,
}

// RealtimeChannel returns the channel name for a namespace.
func RealtimeChannel(namespace string) string {
	return ChannelPrefix + namespace
}

// NamespaceOf returns the namespace part of a real-time channel.
func NamespaceOf(channel string) string {
	return strings.TrimPrefix(channel, ChannelPrefix)
}
