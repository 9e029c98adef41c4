package domain

import "time"

// NotificationType is the kind of interaction that produced a notification.
// The values double as the preference names.
type NotificationType string

const (
	NotificationComment  NotificationType = "comment"
	NotificationReaction NotificationType = "reactions"
	NotificationFollow   NotificationType = "follows"
	NotificationMessage  NotificationType = "messages"
)

// Notification tells a recipient about an interaction. Content fields are a
// snapshot of the triggering entity.
type Notification struct {
	ID               string           `json:"_id" bson:"_id"`
	UserTo           string           `json:"userTo" bson:"userTo"`
	UserFrom         string           `json:"userFrom" bson:"userFrom"`
	Message          string           `json:"message" bson:"message"`
	NotificationType NotificationType `json:"notificationType" bson:"notificationType"`
	EntityID         string           `json:"entityId" bson:"entityId"`
	CreatedItemID    string           `json:"createdItemId" bson:"createdItemId"`
	Comment          string           `json:"comment" bson:"comment"`
	Reaction         string           `json:"reaction" bson:"reaction"`
	Post             string           `json:"post" bson:"post"`
	ImgID            string           `json:"imgId" bson:"imgId"`
	ImgVersion       string           `json:"imgVersion" bson:"imgVersion"`
	GifURL           string           `json:"gifUrl" bson:"gifUrl"`
	Read             bool             `json:"read" bson:"read"`
	CreatedAt        time.Time        `json:"createdAt" bson:"createdAt"`
}
