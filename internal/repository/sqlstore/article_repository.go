package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"seo-writer/internal/domain"
	"seo-writer/internal/repository"
)

const createArticlesTable = `
CREATE TABLE IF NOT EXISTS articles (
	id VARCHAR(36) PRIMARY KEY,
	user_id VARCHAR(36) NOT NULL,
	keyword VARCHAR(255) NOT NULL,
	content TEXT NOT NULL,
	research TEXT NULL,
	published BOOLEAN NOT NULL DEFAULT FALSE,
	publish_url TEXT NULL,
	created_at %[1]s NOT NULL,
	updated_at %[1]s NOT NULL,
	published_at %[1]s NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
)`

const selectArticle = `
SELECT id, user_id, keyword, content, COALESCE(research, ''), published, publish_url, created_at, updated_at, published_at
FROM articles`

type ArticleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) repository.ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(createArticlesTable, r.db.dialect.Timestamp)); err != nil {
		return fmt.Errorf("create articles table: %w", err)
	}
	if err := r.db.ensureColumns(ctx, "articles", map[string]string{
		"research":     "TEXT NULL",
		"published_at": r.db.dialect.Timestamp + " NULL",
	}); err != nil {
		return err
	}
	if err := r.db.widenToText(ctx, "articles", "publish_url", true); err != nil {
		return err
	}
	return r.db.ensureIndex(ctx, "idx_articles_user_created", "articles", "user_id, created_at")
}

func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now

	var publishURL any
	if article.PublishURL != nil {
		publishURL = *article.PublishURL
	}

	_, err := r.db.execContext(ctx, `
INSERT INTO articles (id, user_id, keyword, content, research, published, publish_url, created_at, updated_at, published_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		article.ID,
		article.UserID,
		article.Keyword,
		article.Content,
		article.Research,
		article.Published,
		publishURL,
		article.CreatedAt,
		article.UpdatedAt,
		nullTime(article.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (r *ArticleRepository) Get(ctx context.Context, userID, id string) (*domain.Article, error) {
	row := r.db.queryRowContext(ctx, selectArticle+`
WHERE id=? AND user_id=?`,
		id,
		userID,
	)
	return scanArticle(row)
}

func (r *ArticleRepository) ListByUser(ctx context.Context, userID string) ([]domain.Article, error) {
	rows, err := r.db.queryContext(ctx, selectArticle+`
WHERE user_id=?
ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := []domain.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *article)
	}

	return articles, rows.Err()
}

func (r *ArticleRepository) MarkPublished(ctx context.Context, userID, id, publishURL string, publishedAt time.Time) (bool, error) {
	res, err := r.db.execContext(ctx, `
UPDATE articles
SET published=?, publish_url=?, published_at=?, updated_at=?
WHERE id=? AND user_id=? AND published=?`,
		true,
		publishURL,
		publishedAt.UTC(),
		time.Now().UTC(),
		id,
		userID,
		false,
	)
	if err != nil {
		return false, fmt.Errorf("mark published: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("article publish rows affected: %w", err)
	}
	if aff > 0 {
		return true, nil
	}

	// Nothing changed: either the article is not the caller's or someone
	// else published it first.
	if _, err := r.Get(ctx, userID, id); err != nil {
		return false, err
	}
	return false, nil
}

func scanArticle(scanner interface {
	Scan(dest ...any) error
}) (*domain.Article, error) {
	var (
		article     domain.Article
		publishURL  sql.NullString
		publishedAt sql.NullTime
	)

	if err := scanner.Scan(
		&article.ID,
		&article.UserID,
		&article.Keyword,
		&article.Content,
		&article.Research,
		&article.Published,
		&publishURL,
		&article.CreatedAt,
		&article.UpdatedAt,
		&publishedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("article: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan article: %w", err)
	}

	if publishURL.Valid {
		v := publishURL.String
		article.PublishURL = &v
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		article.PublishedAt = &t
	}
	return &article, nil
}
