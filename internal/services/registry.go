package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	"linktrail/internal/models"
	"linktrail/internal/repository"
	"linktrail/pkg/utils"

	"github.com/google/uuid"
)

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

type CreateLinkDTO struct {
	Alias       string
	TargetURL   string
	Description string
	ExpiresAt   *time.Time
}

// LinkRegistry owns the alias↔target mapping lifecycle. Links are never
// physically deleted; deactivation is the only destructive operation so
// historical visits keep a valid referent.
type LinkRegistry struct {
	store          repository.Store
	logger         *slog.Logger
	aliasGenerator func(int) string
	now            func() time.Time
}

func NewLinkRegistry(store repository.Store, logger *slog.Logger) *LinkRegistry {
	return &LinkRegistry{
		store:          store,
		logger:         logger,
		aliasGenerator: utils.GenerateAlias,
		now:            time.Now,
	}
}

// Create validates the input, enforces alias uniqueness among active links
// and persists a new link with a zero counter. An empty alias gets a
// generated one.
func (r *LinkRegistry) Create(dto CreateLinkDTO) (*models.Link, error) {
	if err := validateTargetURL(dto.TargetURL); err != nil {
		return nil, err
	}
	if dto.ExpiresAt != nil && dto.ExpiresAt.Before(r.now()) {
		return nil, newValidationError("expires_at", "must be in the future")
	}

	alias := dto.Alias
	if alias != "" {
		if !aliasPattern.MatchString(alias) {
			return nil, newValidationError("alias", "must be 1-32 characters of A-Z, a-z, 0-9, _ or -")
		}
		if _, err := r.store.GetActiveLinkByAlias(alias); err == nil {
			return nil, ErrAliasConflict
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	} else {
		generated, err := r.generateAlias()
		if err != nil {
			return nil, err
		}
		alias = generated
	}

	link := &models.Link{
		ID:          uuid.NewString(),
		Alias:       alias,
		TargetURL:   dto.TargetURL,
		Description: dto.Description,
		ClickCount:  0,
		IsActive:    true,
		CreatedAt:   r.now(),
		ExpiresAt:   dto.ExpiresAt,
	}

	if err := r.store.CreateLink(link); err != nil {
		return nil, err
	}

	r.logger.Info("Link created", "id", link.ID, "alias", link.Alias)
	return link, nil
}

func (r *LinkRegistry) generateAlias() (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		candidate := r.aliasGenerator(6)
		_, err := r.store.GetActiveLinkByAlias(candidate)
		if errors.Is(err, repository.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("could not generate a free alias")
}

// FindActiveByAlias resolves an alias for end-user flows. Expired links are
// swept first so a stale row is never served.
func (r *LinkRegistry) FindActiveByAlias(alias string) (*models.Link, error) {
	r.SweepExpired(r.now())

	link, err := r.store.GetActiveLinkByAlias(alias)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// FindByID returns the link regardless of its active flag; callers that need
// to distinguish "never existed" from "deactivated" use this.
func (r *LinkRegistry) FindByID(id string) (*models.Link, error) {
	link, err := r.store.GetLinkByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// List returns all active links, sweeping expired ones first.
func (r *LinkRegistry) List() ([]models.Link, error) {
	r.SweepExpired(r.now())
	return r.store.ListActiveLinks()
}

// Deactivate flips the active flag. Idempotent: deactivating twice is fine.
func (r *LinkRegistry) Deactivate(id string) error {
	if _, err := r.FindByID(id); err != nil {
		return err
	}
	return r.store.DeactivateLink(id)
}

// SweepExpired deactivates every link whose expiry is strictly before now.
// The predicate is indexed, so cost scales with newly-expired links only.
func (r *LinkRegistry) SweepExpired(now time.Time) {
	n, err := r.store.DeactivateExpired(now)
	if err != nil {
		r.logger.Error("Expiry sweep failed", "error", err)
		return
	}
	if n > 0 {
		r.logger.Info("Expiry sweep deactivated links", "count", n)
	}
}

func validateTargetURL(raw string) error {
	if raw == "" {
		return newValidationError("target_url", "is required")
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return newValidationError("target_url", "must be a valid absolute URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return newValidationError("target_url", "scheme must be http or https")
	}
	if parsed.Host == "" {
		return newValidationError("target_url", "must include a host")
	}
	return nil
}
