package cache

// Caches bundles the entity caches sharing one Store.
type Caches struct {
	Store     *Store
	Posts     *PostCache
	Comments  *CommentCache
	Reactions *ReactionCache
	Followers *FollowerCache
	Users     *UserCache
}

// NewCaches builds every entity cache on store.
func NewCaches(store *Store) *Caches {
	return &Caches{
		Store:     store,
		Posts:     NewPostCache(store),
		Comments:  NewCommentCache(store),
		Reactions: NewReactionCache(store),
		Followers: NewFollowerCache(store),
		Users:     NewUserCache(store),
	}
}
