package cache

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// encodePost flattens a post into hash fields. Counters are decimal strings,
// reactions are JSON and createdAt is RFC 3339 with nanoseconds.
func encodePost(p *domain.Post) (map[string]interface{}, error) {
	reactions := p.Reactions
	if reactions == nil {
		reactions = domain.NewReactions()
	}
	rj, err := json.Marshal(reactions)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"_id":            p.ID,
		"userId":         p.UserID,
		"username":       p.Username,
		"email":          p.Email,
		"avatarColor":    p.AvatarColor,
		"profilePicture": p.ProfilePicture,
		"post":           p.Post,
		"bgColor":        p.BgColor,
		"feelings":       p.Feelings,
		"privacy":        string(p.Privacy),
		"gifUrl":         p.GifURL,
		"commentsCount":  strconv.Itoa(p.CommentsCount),
		"imgVersion":     p.ImgVersion,
		"imgId":          p.ImgID,
		"videoVersion":   p.VideoVersion,
		"videoId":        p.VideoID,
		"reactions":      string(rj),
		"createdAt":      p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func decodePost(m map[string]string) (*domain.Post, error) {
	p := &domain.Post{
		ID:             m["_id"],
		UserID:         m["userId"],
		Username:       m["username"],
		Email:          m["email"],
		AvatarColor:    m["avatarColor"],
		ProfilePicture: m["profilePicture"],
		Post:           m["post"],
		BgColor:        m["bgColor"],
		Feelings:       m["feelings"],
		Privacy:        domain.Privacy(m["privacy"]),
		GifURL:         m["gifUrl"],
		ImgVersion:     m["imgVersion"],
		ImgID:          m["imgId"],
		VideoVersion:   m["videoVersion"],
		VideoID:        m["videoId"],
	}
	var err error
	if p.CommentsCount, err = atoi(m["commentsCount"]); err != nil {
		return nil, fmt.Errorf("decode post %s commentsCount: %w", p.ID, err)
	}
	p.Reactions = domain.NewReactions()
	if raw := m["reactions"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.Reactions); err != nil {
			return nil, fmt.Errorf("decode post %s reactions: %w", p.ID, err)
		}
	}
	if raw := m["createdAt"]; raw != "" {
		if p.CreatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return nil, fmt.Errorf("decode post %s createdAt: %w", p.ID, err)
		}
	}
	return p, nil
}

func encodeUser(u *domain.User) (map[string]interface{}, error) {
	blocked, err := json.Marshal(nonNil(u.Blocked))
	if err != nil {
		return nil, err
	}
	blockedBy, err := json.Marshal(nonNil(u.BlockedBy))
	if err != nil {
		return nil, err
	}
	notifications, err := json.Marshal(u.Notifications)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"_id":                      u.ID,
		"uId":                      strconv.FormatInt(u.UID, 10),
		"username":                 u.Username,
		"email":                    u.Email,
		"avatarColor":              u.AvatarColor,
		"profilePicture":           u.ProfilePicture,
		domain.FieldPostsCount:     strconv.Itoa(u.PostsCount),
		domain.FieldFollowersCount: strconv.Itoa(u.FollowersCount),
		domain.FieldFollowingCount: strconv.Itoa(u.FollowingCount),
		domain.FieldBlocked:        string(blocked),
		domain.FieldBlockedBy:      string(blockedBy),
		"notifications":            string(notifications),
	}, nil
}

func decodeUser(m map[string]string) (*domain.User, error) {
	u := &domain.User{
		ID:             m["_id"],
		Username:       m["username"],
		Email:          m["email"],
		AvatarColor:    m["avatarColor"],
		ProfilePicture: m["profilePicture"],
		Blocked:        []string{},
		BlockedBy:      []string{},
	}
	var err error
	if raw := m["uId"]; raw != "" {
		if u.UID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("decode user %s uId: %w", u.ID, err)
		}
	}
	for field, dst := range map[string]*int{
		domain.FieldPostsCount:     &u.PostsCount,
		domain.FieldFollowersCount: &u.FollowersCount,
		domain.FieldFollowingCount: &u.FollowingCount,
	} {
		if *dst, err = atoi(m[field]); err != nil {
			return nil, fmt.Errorf("decode user %s %s: %w", u.ID, field, err)
		}
	}
	for field, dst := range map[string]*[]string{
		domain.FieldBlocked:   &u.Blocked,
		domain.FieldBlockedBy: &u.BlockedBy,
	} {
		if raw := m[field]; raw != "" {
			if err := json.Unmarshal([]byte(raw), dst); err != nil {
				return nil, fmt.Errorf("decode user %s %s: %w", u.ID, field, err)
			}
		}
	}
	if raw := m["notifications"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &u.Notifications); err != nil {
			return nil, fmt.Errorf("decode user %s notifications: %w", u.ID, err)
		}
	}
	return u, nil
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
