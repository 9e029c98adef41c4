package domain

import "time"

// Privacy controls who may see a post.
type Privacy string

const (
	PrivacyPublic    Privacy = "Public"
	PrivacyPrivate   Privacy = "Private"
	PrivacyFollowers Privacy = "Followers"
)

// Valid reports whether p is a known privacy level.
func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyFollowers:
		return true
	}
	return false
}

// MediaKind selects posts carrying a given media attachment.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Post is a user post. Author fields are a snapshot taken at creation.
type Post struct {
	ID             string    `json:"_id" bson:"_id"`
	UserID         string    `json:"userId" bson:"userId"`
	Username       string    `json:"username" bson:"username"`
	Email          string    `json:"email" bson:"email"`
	AvatarColor    string    `json:"avatarColor" bson:"avatarColor"`
	ProfilePicture string    `json:"profilePicture" bson:"profilePicture"`
	Post           string    `json:"post" bson:"post"`
	BgColor        string    `json:"bgColor" bson:"bgColor"`
	Feelings       string    `json:"feelings" bson:"feelings"`
	Privacy        Privacy   `json:"privacy" bson:"privacy"`
	GifURL         string    `json:"gifUrl" bson:"gifUrl"`
	CommentsCount  int       `json:"commentsCount" bson:"commentsCount"`
	ImgVersion     string    `json:"imgVersion" bson:"imgVersion"`
	ImgID          string    `json:"imgId" bson:"imgId"`
	VideoVersion   string    `json:"videoVersion" bson:"videoVersion"`
	VideoID        string    `json:"videoId" bson:"videoId"`
	Reactions      Reactions `json:"reactions" bson:"reactions"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// HasImage reports whether the post references an uploaded image.
func (p *Post) HasImage() bool { return p.ImgID != "" && p.ImgVersion != "" }

// HasVideo reports whether the post references an uploaded video.
func (p *Post) HasVideo() bool { return p.VideoID != "" && p.VideoVersion != "" }

// HasGif reports whether the post embeds an external GIF.
func (p *Post) HasGif() bool { return p.GifURL != "" }

// Validate checks the media invariant: at most one of image, video or GIF.
func (p *Post) Validate() error {
	n := 0
	for _, set := range []bool{p.ImgID != "" || p.ImgVersion != "", p.VideoID != "" || p.VideoVersion != "", p.HasGif()} {
		if set {
			n++
		}
	}
	if n > 1 {
		return ValidationError("a post may carry only one of image, video or gif")
	}
	if p.ImgID != "" && p.ImgVersion == "" || p.ImgID == "" && p.ImgVersion != "" {
		return ValidationError("imgId and imgVersion must be set together")
	}
	if p.VideoID != "" && p.VideoVersion == "" || p.VideoID == "" && p.VideoVersion != "" {
		return ValidationError("videoId and videoVersion must be set together")
	}
	if p.Privacy != "" && !p.Privacy.Valid() {
		return ValidationError("unknown privacy %q", p.Privacy)
	}
	return nil
}

// PostUpdate carries the editable fields of a post. Only non-nil fields are
// applied.
type PostUpdate struct {
	Post           *string  `json:"post,omitempty"`
	BgColor        *string  `json:"bgColor,omitempty"`
	Feelings       *string  `json:"feelings,omitempty"`
	Privacy        *Privacy `json:"privacy,omitempty"`
	GifURL         *string  `json:"gifUrl,omitempty"`
	ProfilePicture *string  `json:"profilePicture,omitempty"`
	ImgVersion     *string  `json:"imgVersion,omitempty"`
	ImgID          *string  `json:"imgId,omitempty"`
	VideoVersion   *string  `json:"videoVersion,omitempty"`
	VideoID        *string  `json:"videoId,omitempty"`
}

// Fields returns the supplied fields keyed by their stored name.
func (u PostUpdate) Fields() map[string]string {
	out := make(map[string]string)
	put := func(name string, v *string) {
		if v != nil {
			out[name] = *v
		}
	}
	put("post", u.Post)
	put("bgColor", u.BgColor)
	put("feelings", u.Feelings)
	put("gifUrl", u.GifURL)
	put("profilePicture", u.ProfilePicture)
	put("imgVersion", u.ImgVersion)
	put("imgId", u.ImgID)
	put("videoVersion", u.VideoVersion)
	put("videoId", u.VideoID)
	if u.Privacy != nil {
		out["privacy"] = string(*u.Privacy)
	}
	return out
}

// Apply overwrites the supplied fields on p.
func (u PostUpdate) Apply(p *Post) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Post, u.Post)
	set(&p.BgColor, u.BgColor)
	set(&p.Feelings, u.Feelings)
	set(&p.GifURL, u.GifURL)
	set(&p.ProfilePicture, u.ProfilePicture)
	set(&p.ImgVersion, u.ImgVersion)
	set(&p.ImgID, u.ImgID)
	set(&p.VideoVersion, u.VideoVersion)
	set(&p.VideoID, u.VideoID)
	if u.Privacy != nil {
		p.Privacy = *u.Privacy
	}
}
