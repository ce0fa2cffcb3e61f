package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/blogservice/internal/auth"
	"github.com/2beens/blogservice/internal/telemetry/tracing"
	"github.com/2beens/blogservice/pkg"
)

// manual caching of blog posts not needed (at least for this use case):
// https://github.com/jackc/pgx/wiki/Automatic-Prepared-Statement-Caching

const blogColumns = `id, title, description, article, user_id, verified, created_at, updated_at`

var _ blogRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add inserts the blog, setting its ID and timestamps from the stored row.
func (r *Repo) Add(ctx context.Context, blog *Blog) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.add")
	defer span.End()

	if err := r.db.QueryRow(
		ctx,
		`
			INSERT INTO blog (title, description, article, user_id, verified)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at;
		`,
		blog.Title, blog.Description, blog.Article, blog.UserID, blog.Verified,
	).Scan(&blog.ID, &blog.CreatedAt, &blog.UpdatedAt); err != nil {
		span.RecordError(err)
		if pkg.IsForeignKeyViolationError(err) {
			return fmt.Errorf("insert blog, owner %d: %w", blog.UserID, auth.ErrUserNotFound)
		}
		return fmt.Errorf("insert blog: %w", err)
	}

	span.SetAttributes(attribute.Int("id", blog.ID))
	return nil
}

func (r *Repo) Get(ctx context.Context, id int) (*Blog, error) {
	log.Tracef("getting blog %d", id)

	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.get")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	blog, err := scanBlog(r.db.QueryRow(
		ctx,
		`SELECT `+blogColumns+` FROM blog WHERE id = $1;`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBlogNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get blog: %w", err)
	}

	return blog, nil
}

// Update sets the editable fields, but only while the blog is unverified and owned by userID.
// If no row matched, ErrBlogNotEditable is returned.
func (r *Repo) Update(ctx context.Context, id, userID int, fields Fields) (*Blog, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.update")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	blog, err := scanBlog(r.db.QueryRow(
		ctx,
		`
			UPDATE blog
			SET title = $1, description = $2, article = $3, updated_at = NOW()
			WHERE id = $4 AND user_id = $5 AND NOT verified
			RETURNING `+blogColumns+`;
		`,
		fields.Title, fields.Description, fields.Article, id, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		log.Tracef("blog %d not updated", id)
		return nil, ErrBlogNotEditable
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update blog: %w", err)
	}

	return blog, nil
}

func (r *Repo) CountVerified(ctx context.Context) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.countVerified")
	defer span.End()

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM blog WHERE verified;`).Scan(&count); err != nil {
		span.RecordError(err)
		return -1, fmt.Errorf("count verified blogs: %w", err)
	}

	return count, nil
}

// ListVerifiedPage returns verified blogs, newest first.
func (r *Repo) ListVerifiedPage(ctx context.Context, limit, offset int) ([]*Blog, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.listVerifiedPage")
	span.SetAttributes(attribute.Int("limit", limit))
	span.SetAttributes(attribute.Int("offset", offset))
	defer span.End()

	log.Tracef("getting verified blogs, limit %d, offset %d", limit, offset)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT `+blogColumns+` FROM blog
			WHERE verified
			ORDER BY created_at DESC, id DESC
			LIMIT $1
			OFFSET $2;
		`,
		limit,
		offset,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list verified blogs: %w", err)
	}

	return rows2blogs(rows)
}

// ListUnverified returns blogs waiting for moderation, oldest first.
func (r *Repo) ListUnverified(ctx context.Context) ([]*Blog, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.listUnverified")
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+blogColumns+` FROM blog WHERE NOT verified ORDER BY created_at ASC, id ASC;`,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list unverified blogs: %w", err)
	}

	return rows2blogs(rows)
}

// SetVerified marks the given blogs as verified, after which they are frozen.
// Returns the number of blogs that changed state.
func (r *Repo) SetVerified(ctx context.Context, ids ...int) (int64, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.setVerified")
	defer span.End()

	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE blog SET verified = TRUE, updated_at = NOW() WHERE id = ANY($1) AND NOT verified;`,
		ids,
	)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("set verified: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanBlog(row pgx.Row) (*Blog, error) {
	var b Blog
	if err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Description,
		&b.Article,
		&b.UserID,
		&b.Verified,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func rows2blogs(rows pgx.Rows) ([]*Blog, error) {
	defer rows.Close()

	blogs := make([]*Blog, 0)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}
