package sqlstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"seo-writer/internal/domain"
	"seo-writer/internal/repository"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *DB, email string) *domain.User {
	t.Helper()
	user := &domain.User{ID: uuid.NewString(), Email: email, PasswordHash: "digest"}
	if err := NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestParseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		dialect Dialect
		dsn     string
		wantErr bool
	}{
		{name: "sqlite relative", raw: "sqlite:///app.db", dialect: SQLite, dsn: "app.db"},
		{name: "sqlite absolute", raw: "sqlite:////var/lib/app.db", dialect: SQLite, dsn: "/var/lib/app.db"},
		{name: "sqlite memory", raw: "sqlite:///:memory:", dialect: SQLite, dsn: ":memory:"},
		{name: "bare path", raw: "data/app.db", dialect: SQLite, dsn: "data/app.db"},
		{name: "postgres", raw: "postgres://u:p@localhost:5432/app", dialect: Postgres, dsn: "postgres://u:p@localhost:5432/app"},
		{name: "postgresql", raw: "postgresql://localhost/app", dialect: Postgres, dsn: "postgresql://localhost/app"},
		{name: "mysql", raw: "mysql://u:p@tcp(localhost:3306)/app", dialect: MySQL, dsn: "u:p@tcp(localhost:3306)/app?parseTime=true&loc=UTC"},
		{name: "mysql with params", raw: "mysql://u@tcp(db)/app?charset=utf8mb4", dialect: MySQL, dsn: "u@tcp(db)/app?charset=utf8mb4&parseTime=true&loc=UTC"},
		{name: "empty", raw: "", wantErr: true},
		{name: "unknown scheme", raw: "mongodb://localhost", wantErr: true},
		{name: "sqlite without path", raw: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialect, dsn, err := ParseURL(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dialect != tt.dialect {
				t.Errorf("dialect = %v, want %v", dialect.Name, tt.dialect.Name)
			}
			if dsn != tt.dsn {
				t.Errorf("dsn = %q, want %q", dsn, tt.dsn)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	t.Parallel()

	query := "UPDATE articles SET published=? WHERE id=? AND user_id=?"
	if got := SQLite.Rebind(query); got != query {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
	if got := MySQL.Rebind(query); got != query {
		t.Errorf("mysql rebind changed query: %q", got)
	}
	want := "UPDATE articles SET published=$1 WHERE id=$2 AND user_id=$3"
	if got := Postgres.Rebind(query); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createUser(t, db, "a@example.com")
	if user.SubscriptionStatus != domain.SubscriptionFree {
		t.Errorf("subscription = %q, want free", user.SubscriptionStatus)
	}

	dup := &domain.User{ID: uuid.NewString(), Email: "a@example.com", PasswordHash: "x"}
	if err := repo.Create(ctx, dup); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("duplicate email error = %v, want ErrConflict", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.PasswordHash != "digest" {
		t.Errorf("unexpected user: %+v", byEmail)
	}

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("email = %q, want %q", byID.Email, user.Email)
	}

	if _, err := repo.GetByID(ctx, uuid.NewString()); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
}

func TestSettingsRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "s@example.com")

	if _, err := repo.GetByUser(ctx, user.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before create, got %v", err)
	}

	settings := &domain.Settings{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		BrandName:       "VoltCo",
		BusinessType:    "retailer",
		BrandGuidelines: "friendly tone",
		ContentType:     "casual",
	}
	if err := repo.Create(ctx, settings); err != nil {
		t.Fatalf("create: %v", err)
	}

	settings.BrandName = "VoltCo Bikes"
	if err := repo.Update(ctx, settings); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.BrandName != "VoltCo Bikes" || got.ContentType != "casual" {
		t.Errorf("unexpected settings: %+v", got)
	}

	second := &domain.Settings{ID: uuid.NewString(), UserID: user.ID}
	if err := repo.Create(ctx, second); !errors.Is(err, repository.ErrConflict) {
		t.Errorf("second settings row error = %v, want ErrConflict", err)
	}
}

func TestArticleRepositoryScopesByUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	var aliceIDs []string
	for _, kw := range []string{"first", "second", "third"} {
		a := &domain.Article{ID: ulid.Make().String(), UserID: alice.ID, Keyword: kw, Content: "<h1>" + kw + "</h1>"}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("create: %v", err)
		}
		aliceIDs = append(aliceIDs, a.ID)
		time.Sleep(2 * time.Millisecond)
	}
	bobArticle := &domain.Article{ID: ulid.Make().String(), UserID: bob.ID, Keyword: "bob", Content: "<h1>bob</h1>"}
	if err := repo.Create(ctx, bobArticle); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := repo.ListByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].Keyword != "third" || list[2].Keyword != "first" {
		t.Errorf("expected newest first, got %s..%s", list[0].Keyword, list[2].Keyword)
	}
	for _, a := range list {
		if a.UserID != alice.ID {
			t.Errorf("foreign article %s in alice's list", a.ID)
		}
	}

	if _, err := repo.Get(ctx, alice.ID, bobArticle.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("cross-user get error = %v, want ErrNotFound", err)
	}
	if _, err := repo.MarkPublished(ctx, alice.ID, bobArticle.ID, "https://x", time.Now()); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("cross-user publish error = %v, want ErrNotFound", err)
	}

	empty, err := repo.ListByUser(ctx, uuid.NewString())
	if err != nil {
		t.Fatalf("list unknown user: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", empty)
	}

	won, err := repo.MarkPublished(ctx, alice.ID, aliceIDs[0], "https://shop/blogs/news/first", time.Now())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !won {
		t.Fatal("first publish should flip the row")
	}
	published, err := repo.Get(ctx, alice.ID, aliceIDs[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !published.Published || published.PublishURL == nil || *published.PublishURL != "https://shop/blogs/news/first" {
		t.Errorf("unexpected publish state: %+v", published)
	}
	if published.PublishedAt == nil {
		t.Error("expected published_at to be set")
	}
}

func TestMarkPublishedKeepsFirstURL(t *testing.T) {
	db := openTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "pub@example.com")

	a := &domain.Article{ID: ulid.Make().String(), UserID: user.ID, Keyword: "bikes", Content: "<h1>bikes</h1>"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	first := time.Now().UTC()
	if won, err := repo.MarkPublished(ctx, user.ID, a.ID, "https://shop/blogs/news/one", first); err != nil || !won {
		t.Fatalf("first publish: won=%v err=%v", won, err)
	}
	won, err := repo.MarkPublished(ctx, user.ID, a.ID, "https://shop/blogs/news/two", first.Add(time.Minute))
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if won {
		t.Error("second publish overwrote a published article")
	}

	got, err := repo.Get(ctx, user.ID, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got.PublishURL != "https://shop/blogs/news/one" || !got.PublishedAt.Equal(first) {
		t.Errorf("stored publish state changed: %s at %v", *got.PublishURL, got.PublishedAt)
	}
}

func TestLongURLColumnsAreText(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for table, column := range map[string]string{"articles": "publish_url", "settings": "store_url"} {
		rows, err := db.QueryContext(ctx, "SELECT "+column+" FROM "+table+" WHERE 1=0")
		if err != nil {
			t.Fatalf("describe %s: %v", table, err)
		}
		types, err := rows.ColumnTypes()
		rows.Close()
		if err != nil {
			t.Fatalf("column types: %v", err)
		}
		if got := types[0].DatabaseTypeName(); got != "TEXT" {
			t.Errorf("%s.%s type = %q, want TEXT", table, column, got)
		}
	}

	user := createUser(t, db, "long@example.com")
	repo := NewArticleRepository(db)
	a := &domain.Article{ID: ulid.Make().String(), UserID: user.ID, Keyword: "k", Content: "c"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	long := "https://shop.example.com/blogs/news/" + strings.Repeat("a", 400)
	if _, err := repo.MarkPublished(ctx, user.ID, a.ID, long, time.Now()); err != nil {
		t.Fatalf("publish long url: %v", err)
	}
	got, _ := repo.Get(ctx, user.ID, a.ID)
	if got.PublishURL == nil || *got.PublishURL != long {
		t.Error("long publish url not stored intact")
	}
}
