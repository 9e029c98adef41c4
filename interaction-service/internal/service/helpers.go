package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks struct tags and reports the first failure as a
// validation error.
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		if f.Param() != "" {
			return domain.ValidationError("%s failed %s=%s", f.Field(), f.Tag(), f.Param())
		}
		return domain.ValidationError("%s failed %s", f.Field(), f.Tag())
	}
	return domain.ValidationError("%v", err)
}

// requirePostID checks an id allocated by this service.
func requirePostID(name, id string) error {
	if err := validate.Var(id, "required,mongodb"); err != nil {
		return domain.ValidationError("%s must be a 24 character hex id", name)
	}
	return nil
}

// requireUserID checks an id issued by the auth service.
func requireUserID(name, id string) error {
	if err := validate.Var(id, "required,max=64,excludesall=/:"); err != nil {
		return domain.ValidationError("invalid %s", name)
	}
	return nil
}

// enqueue submits a durable write. The request has already succeeded once
// the cache is written, so a failure is only logged.
func enqueue(ctx context.Context, q queue.Enqueuer, t queue.JobType, p queue.Payload) {
	if err := q.Enqueue(ctx, t, p); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldJobType, string(t)).Msg("failed to enqueue job")
	}
}

// pageBounds turns a 1-based page into the store offset and the cache
// range. The cache range starts one past skip after the first page.
func pageBounds(page int) (skip int, start, end int64, err error) {
	if page < 1 {
		return 0, 0, 0, domain.ValidationError("page must be at least 1")
	}
	skip = (page - 1) * PageSize
	start = int64(skip)
	if skip != 0 {
		start = int64(skip + 1)
	}
	return skip, start, int64(PageSize * page), nil
}

// postAuthor returns the id of the user who wrote the post, the recipient
// of comment and reaction notifications.
func (d Deps) postAuthor(ctx context.Context, postID string) (string, error) {
	post, err := d.Caches.Posts.Get(ctx, postID)
	if err != nil {
		return "", err
	}
	if post == nil {
		if post, err = d.Store.Posts.Get(ctx, postID); err != nil {
			return "", err
		}
	}
	return post.UserID, nil
}
