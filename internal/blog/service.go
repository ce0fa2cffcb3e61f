package blog

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/2beens/blogservice/internal/auth"
	"github.com/2beens/blogservice/internal/messages"
	"github.com/2beens/blogservice/internal/telemetry/metrics"
	"github.com/2beens/blogservice/internal/telemetry/tracing"
)

type blogRepo interface {
	Add(ctx context.Context, blog *Blog) error
	Get(ctx context.Context, id int) (*Blog, error)
	Update(ctx context.Context, id, userID int, fields Fields) (*Blog, error)
	CountVerified(ctx context.Context) (int, error)
	ListVerifiedPage(ctx context.Context, limit, offset int) ([]*Blog, error)
}

type Service struct {
	repo     blogRepo
	cache    *VerifiedCache
	metrics  *metrics.Manager
	pageSize int
}

// NewService creates the blog service. Both cache and metricsManager are optional.
func NewService(repo blogRepo, cache *VerifiedCache, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		metrics:  metricsManager,
		pageSize: DefaultPageSize,
	}
}

// List returns one page of verified blogs, newest first. Pages past the end are empty.
func (s *Service) List(ctx context.Context, page int) (_ *ListResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.blog.list")
	defer endSpan(span, &err)

	if page < 1 {
		page = 1
	}
	span.SetAttributes(attribute.Int("page", page))

	total, err := s.repo.CountVerified(ctx)
	if err != nil {
		return nil, s.persistenceErr("count verified blogs", messages.InternalError, err)
	}

	res := &ListResult{
		Blogs:   []*Blog{},
		Total:   total,
		Page:    page,
		PerPage: s.pageSize,
	}

	// compared before computing the offset, huge page numbers would overflow it
	if total == 0 || page > LastPage(total, s.pageSize) {
		return res, nil
	}
	offset := (page - 1) * s.pageSize

	blogs, err := s.repo.ListVerifiedPage(ctx, s.pageSize, offset)
	if err != nil {
		return nil, s.persistenceErr("list verified blogs", messages.InternalError, err)
	}
	res.Blogs = blogs

	return res, nil
}

// Create stores a new unverified blog owned by the caller.
func (s *Service) Create(ctx context.Context, caller auth.Caller, fields Fields) (_ *Blog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.blog.create")
	defer endSpan(span, &err)

	if caller.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	if failed := fields.Validate(); len(failed) > 0 {
		return nil, &ValidationError{Fields: failed}
	}

	fields = fields.Trimmed()
	blog := &Blog{
		Title:       fields.Title,
		Description: fields.Description,
		Article:     fields.Article,
		UserID:      caller.UserID,
		Verified:    false,
	}
	if err := s.repo.Add(ctx, blog); err != nil {
		return nil, s.persistenceErr("create blog", messages.BlogNotCreated, err)
	}

	if s.metrics != nil {
		s.metrics.CounterBlogsCreated.Inc()
	}
	log.Tracef("new blog %d: [%s] added by user %d", blog.ID, blog.Title, caller.UserID)

	return blog, nil
}

// Show returns the blog if it is verified or owned by the caller. Caller may be anonymous.
func (s *Service) Show(ctx context.Context, caller auth.Caller, id int) (_ *Blog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.blog.show")
	span.SetAttributes(attribute.Int("id", id))
	defer endSpan(span, &err)

	if s.cache != nil {
		if blog, found := s.cache.Get(id); found {
			if s.metrics != nil {
				s.metrics.CounterBlogCacheHits.Inc()
			}
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return blog, nil
		}
	}

	blog, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrBlogNotFound) {
		return nil, ErrBlogNotFound
	}
	if err != nil {
		return nil, s.persistenceErr("get blog", messages.InternalError, err)
	}

	if !blog.Verified && !caller.Owns(blog.UserID) {
		return nil, ErrForbidden
	}

	if blog.Verified && s.cache != nil {
		s.cache.Set(blog)
	}

	return blog, nil
}

// Update applies the fields to a blog the caller owns, as long as it is not verified yet.
func (s *Service) Update(ctx context.Context, caller auth.Caller, id int, fields Fields) (_ *Blog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.blog.update")
	span.SetAttributes(attribute.Int("id", id))
	defer endSpan(span, &err)

	if caller.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	if failed := fields.Validate(); len(failed) > 0 {
		return nil, &ValidationError{Fields: failed}
	}

	existing, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrBlogNotFound) {
		return nil, ErrBlogNotFound
	}
	if err != nil {
		return nil, s.persistenceErr("get blog for update", messages.BlogNotUpdated, err)
	}

	if !caller.Owns(existing.UserID) || existing.Verified {
		return nil, ErrForbidden
	}

	updated, err := s.repo.Update(ctx, id, caller.UserID, fields.Trimmed())
	if errors.Is(err, ErrBlogNotEditable) {
		// verified in the meantime
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, s.persistenceErr("update blog", messages.BlogNotUpdated, err)
	}

	if s.metrics != nil {
		s.metrics.CounterBlogsUpdated.Inc()
	}

	return updated, nil
}

func (s *Service) persistenceErr(op string, msgID messages.ID, err error) error {
	log.Errorf("blog service, %s: %s", op, err)
	return &PersistenceError{
		Op:        op,
		MessageID: msgID,
		Err:       err,
	}
}

func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
