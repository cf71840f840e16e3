package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"seo-writer/internal/domain"
	"seo-writer/internal/events"
	"seo-writer/internal/generator"
	"seo-writer/internal/publisher"
	"seo-writer/internal/repository"
)

// maxKeywordLength matches the articles.keyword column.
const maxKeywordLength = 255

// ArticleService coordinates generation, storage and publishing of articles.
// Every operation is scoped to the calling user.
type ArticleService interface {
	Generate(ctx context.Context, userID, keyword string) (*domain.Article, error)
	List(ctx context.Context, userID string) ([]domain.Article, error)
	Get(ctx context.Context, userID, id string) (*domain.Article, error)
	Publish(ctx context.Context, userID, id string) (*domain.Article, error)
}

type articleService struct {
	articles  repository.ArticleRepository
	settings  repository.SettingsRepository
	generator generator.Generator
	publisher publisher.Publisher
	events    events.Publisher
	logger    *logrus.Logger

	publishing keyedMutex
}

func NewArticleService(
	articles repository.ArticleRepository,
	settings repository.SettingsRepository,
	gen generator.Generator,
	pub publisher.Publisher,
	ev events.Publisher,
	logger *logrus.Logger,
) ArticleService {
	if pub == nil {
		pub = publisher.StaticPublisher{}
	}
	if ev == nil {
		ev = events.NoopPublisher{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &articleService{
		articles:  articles,
		settings:  settings,
		generator: gen,
		publisher: pub,
		events:    ev,
		logger:    logger,
	}
}

// Generate validates the request and the caller's settings before any
// external call; the article row is written only after generation succeeds.
func (s *articleService) Generate(ctx context.Context, userID, keyword string) (*domain.Article, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, invalid("keyword is required")
	}
	if utf8.RuneCountInString(keyword) > maxKeywordLength {
		return nil, invalid("keyword must be at most %d characters", maxKeywordLength)
	}

	settings, err := s.settings.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSettingsRequired
		}
		return nil, err
	}
	if missing := settings.MissingForGeneration(); len(missing) > 0 {
		return nil, fmt.Errorf("%w (missing %s)", ErrSettingsRequired, strings.Join(missing, ", "))
	}

	result, err := s.generator.Generate(ctx, *settings, keyword)
	if err != nil {
		return nil, err
	}

	article := &domain.Article{
		ID:       ulid.Make().String(),
		UserID:   userID,
		Keyword:  keyword,
		Content:  result.Content,
		Research: result.Research,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}

	s.emit(ctx, events.ArticleGenerated, article)
	return article, nil
}

func (s *articleService) List(ctx context.Context, userID string) ([]domain.Article, error) {
	return s.articles.ListByUser(ctx, userID)
}

func (s *articleService) Get(ctx context.Context, userID, id string) (*domain.Article, error) {
	return s.articles.Get(ctx, userID, id)
}

// Publish is idempotent: an already published article is returned unchanged
// without touching the publisher or emitting events. Concurrent calls for one
// article are serialised here; across processes the conditional write decides
// which caller's URL sticks.
func (s *articleService) Publish(ctx context.Context, userID, id string) (*domain.Article, error) {
	unlock := s.publishing.lock(id)
	defer unlock()

	article, err := s.articles.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if article.Published {
		return article, nil
	}

	settings, err := s.settings.GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	url, err := s.publisher.Publish(ctx, settings, *article)
	if err != nil {
		return nil, fmt.Errorf("publish article: %w", err)
	}

	publishedAt := time.Now().UTC()
	won, err := s.articles.MarkPublished(ctx, userID, id, url, publishedAt)
	if err != nil {
		return nil, err
	}
	if !won {
		return s.articles.Get(ctx, userID, id)
	}

	article.Published = true
	article.PublishURL = &url
	article.PublishedAt = &publishedAt
	article.UpdatedAt = publishedAt

	s.emit(ctx, events.ArticlePublished, article)
	return article, nil
}

func (s *articleService) emit(ctx context.Context, eventType string, article *domain.Article) {
	event := events.ArticleEvent{
		Type:       eventType,
		ArticleID:  article.ID,
		UserID:     article.UserID,
		Keyword:    article.Keyword,
		OccurredAt: time.Now().UTC(),
	}
	if article.PublishURL != nil {
		event.PublishURL = *article.PublishURL
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event":      eventType,
			"article_id": article.ID,
		}).Warn("publish article event")
	}
}

// keyedMutex hands out one lock per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
