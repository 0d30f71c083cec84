package services

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"linktrail/internal/models"
	"linktrail/internal/repository"
	"linktrail/pkg/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupTestStore(t *testing.T) repository.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Link{}, &models.Visit{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return repository.NewStore(db)
}

func TestLinkRegistry_Create(t *testing.T) {
	store := setupTestStore(t)
	registry := NewLinkRegistry(store, slog.Default())

	t.Run("Create with explicit alias", func(t *testing.T) {
		link, err := registry.Create(CreateLinkDTO{
			Alias:     "promo",
			TargetURL: "https://example.com/landing",
		})

		assert.NoError(t, err)
		assert.NotEmpty(t, link.ID)
		assert.Equal(t, "promo", link.Alias)
		assert.Equal(t, 0, link.ClickCount)
		assert.True(t, link.IsActive)

		found, err := registry.FindActiveByAlias("promo")
		assert.NoError(t, err)
		assert.Equal(t, link.ID, found.ID)
		assert.Equal(t, "https://example.com/landing", found.TargetURL)
	})

	t.Run("Generated alias when empty", func(t *testing.T) {
		link, err := registry.Create(CreateLinkDTO{TargetURL: "https://example.com"})
		assert.NoError(t, err)
		assert.Len(t, link.Alias, 6)
	})

	t.Run("Alias conflict among active links", func(t *testing.T) {
		_, err := registry.Create(CreateLinkDTO{Alias: "taken", TargetURL: "https://a.example.com"})
		assert.NoError(t, err)

		_, err = registry.Create(CreateLinkDTO{Alias: "taken", TargetURL: "https://b.example.com"})
		assert.ErrorIs(t, err, ErrAliasConflict)
	})

	t.Run("Alias reusable after deactivation", func(t *testing.T) {
		first, err := registry.Create(CreateLinkDTO{Alias: "reuse", TargetURL: "https://a.example.com"})
		assert.NoError(t, err)

		assert.NoError(t, registry.Deactivate(first.ID))

		second, err := registry.Create(CreateLinkDTO{Alias: "reuse", TargetURL: "https://b.example.com"})
		assert.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("Invalid target URL", func(t *testing.T) {
		for _, target := range []string{"", "notaurl", "ftp://example.com/file", "http://"} {
			_, err := registry.Create(CreateLinkDTO{TargetURL: target})
			assert.True(t, IsValidationError(err), "expected validation error for %q", target)
		}
	})

	t.Run("Invalid alias", func(t *testing.T) {
		for _, alias := range []string{"has space", "ümlaut", "way-too-long-alias-over-thirty-two-chars"} {
			_, err := registry.Create(CreateLinkDTO{Alias: alias, TargetURL: "https://example.com"})
			assert.True(t, IsValidationError(err), "expected validation error for %q", alias)
		}
	})

	t.Run("Expiry in the past", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		_, err := registry.Create(CreateLinkDTO{TargetURL: "https://example.com", ExpiresAt: &past})
		assert.True(t, IsValidationError(err))
	})

	t.Run("Alias generator collision retry", func(t *testing.T) {
		calls := 0
		registry.aliasGenerator = func(int) string {
			calls++
			if calls == 1 {
				return "colliding"
			}
			return "fresh1"
		}
		defer func() { registry.aliasGenerator = utils.GenerateAlias }()

		_, err := registry.Create(CreateLinkDTO{Alias: "colliding", TargetURL: "https://a.example.com"})
		assert.NoError(t, err)

		link, err := registry.Create(CreateLinkDTO{TargetURL: "https://b.example.com"})
		assert.NoError(t, err)
		assert.Equal(t, "fresh1", link.Alias)
		assert.Equal(t, 2, calls)
	})
}

func TestLinkRegistry_Lookup(t *testing.T) {
	store := setupTestStore(t)
	registry := NewLinkRegistry(store, slog.Default())

	link, err := registry.Create(CreateLinkDTO{Alias: "lookup", TargetURL: "https://example.com"})
	assert.NoError(t, err)

	t.Run("FindByID returns deactivated links", func(t *testing.T) {
		assert.NoError(t, registry.Deactivate(link.ID))

		_, err := registry.FindActiveByAlias("lookup")
		assert.ErrorIs(t, err, ErrLinkNotFound)

		found, err := registry.FindByID(link.ID)
		assert.NoError(t, err)
		assert.False(t, found.IsActive)
	})

	t.Run("FindByID unknown id", func(t *testing.T) {
		_, err := registry.FindByID("no-such-id")
		assert.ErrorIs(t, err, ErrLinkNotFound)
	})

	t.Run("Deactivate is idempotent", func(t *testing.T) {
		assert.NoError(t, registry.Deactivate(link.ID))
		assert.NoError(t, registry.Deactivate(link.ID))
	})

	t.Run("Deactivate unknown id", func(t *testing.T) {
		err := registry.Deactivate("no-such-id")
		assert.ErrorIs(t, err, ErrLinkNotFound)
	})
}

func TestLinkRegistry_Expiry(t *testing.T) {
	store := setupTestStore(t)
	registry := NewLinkRegistry(store, slog.Default())

	// Inject a clock so a link can be created already near expiry
	base := time.Now()
	registry.now = func() time.Time { return base }

	soon := base.Add(time.Minute)
	link, err := registry.Create(CreateLinkDTO{Alias: "fleeting", TargetURL: "https://example.com", ExpiresAt: &soon})
	assert.NoError(t, err)

	t.Run("Resolvable before expiry", func(t *testing.T) {
		found, err := registry.FindActiveByAlias("fleeting")
		assert.NoError(t, err)
		assert.Equal(t, link.ID, found.ID)
	})

	t.Run("Swept lazily after expiry", func(t *testing.T) {
		registry.now = func() time.Time { return base.Add(2 * time.Minute) }

		_, err := registry.FindActiveByAlias("fleeting")
		assert.ErrorIs(t, err, ErrLinkNotFound)

		// The sweep flipped the flag, it did not delete the row
		found, err := registry.FindByID(link.ID)
		assert.NoError(t, err)
		assert.False(t, found.IsActive)
	})

	t.Run("List sweeps first", func(t *testing.T) {
		links, err := registry.List()
		assert.NoError(t, err)
		for _, l := range links {
			assert.NotEqual(t, "fleeting", l.Alias)
		}
	})
}
