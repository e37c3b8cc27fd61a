package services

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"portfolio/internal/domain"
	apperrors "portfolio/pkg/errors"
)

// Item is the pointer constraint of an ordered content record.
type Item[T any] interface {
	*T
	SetDisplayOrder(int)
	Validate() error
}

// OrderUpdate moves one record to a new display position.
type OrderUpdate struct {
	ID           uint `json:"id"`
	DisplayOrder int  `json:"displayOrder"`
}

// Collection manages one ordered content table.
type Collection[T any, PT Item[T]] struct {
	db     *gorm.DB
	name   string
	logger *slog.Logger
}

func newCollection[T any, PT Item[T]](db *gorm.DB, name string, logger *slog.Logger) *Collection[T, PT] {
	return &Collection[T, PT]{db: db, name: name, logger: logger}
}

// List returns every record in display order.
func (c *Collection[T, PT]) List(ctx context.Context) ([]T, error) {
	return c.find(ctx, nil)
}

func (c *Collection[T, PT]) find(ctx context.Context, where map[string]any) ([]T, error) {
	items := []T{}
	q := c.db.WithContext(ctx).Order("display_order ASC").Order("id ASC")
	if where != nil {
		q = q.Where(where)
	}
	if err := q.Find(&items).Error; err != nil {
		c.logger.Error("list failed: database error", "kind", c.name, "error", err)
		return nil, InternalError("Failed to fetch "+c.name, err)
	}
	return items, nil
}

// Get returns one record.
func (c *Collection[T, PT]) Get(ctx context.Context, id uint) (*T, error) {
	item := new(T)
	if err := c.db.WithContext(ctx).First(item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError(c.name)
		}
		return nil, InternalError("Failed to fetch "+c.name, err)
	}
	return item, nil
}

// Create validates item and appends it after the last record.
func (c *Collection[T, PT]) Create(ctx context.Context, item PT) error {
	if err := item.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(new(T)).Select("COALESCE(MAX(display_order), -1)").Scan(&last).Error; err != nil {
			return err
		}
		item.SetDisplayOrder(last + 1)
		return tx.Create(item).Error
	})
	if err != nil {
		c.logger.Error("create failed: database error", "kind", c.name, "error", err)
		return InternalError("Failed to create "+c.name, err)
	}
	return nil
}

// Update applies a partial change to the stored record. Fields apply leaves
// untouched keep their value; the id never changes.
func (c *Collection[T, PT]) Update(ctx context.Context, id uint, apply func(PT) error) (*T, error) {
	item, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(PT(item)); err != nil {
		return nil, BadRequestError("Invalid " + c.name + " data")
	}
	if err := PT(item).Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	err = c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Select("*").Omit("id").Updates(item).Error
	if err != nil {
		c.logger.Error("update failed: database error", "kind", c.name, "id", id, "error", err)
		return nil, InternalError("Failed to update "+c.name, err)
	}
	return c.Get(ctx, id)
}

// Delete removes a record.
func (c *Collection[T, PT]) Delete(ctx context.Context, id uint) error {
	result := c.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		c.logger.Error("delete failed: database error", "kind", c.name, "id", id, "error", result.Error)
		return InternalError("Failed to delete "+c.name, result.Error)
	}
	if result.RowsAffected == 0 {
		return NotFoundError(c.name)
	}
	return nil
}

// Reorder applies every position change or none of them.
func (c *Collection[T, PT]) Reorder(ctx context.Context, updates []OrderUpdate) error {
	if len(updates) == 0 {
		return BadRequestError("Items array is required")
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			result := tx.Model(new(T)).Where("id = ?", u.ID).Update("display_order", u.DisplayOrder)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return NotFoundError(c.name)
			}
		}
		return nil
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			return err
		}
		c.logger.Error("reorder failed: database error", "kind", c.name, "error", err)
		return InternalError("Failed to reorder "+c.name, err)
	}
	return nil
}

// ContentService manages the public site content
type ContentService struct {
	db     *gorm.DB
	logger *slog.Logger

	Skills     *Collection[domain.Skill, *domain.Skill]
	Projects   *Collection[domain.Project, *domain.Project]
	Experience *Collection[domain.Experience, *domain.Experience]
	Social     *Collection[domain.SocialLink, *domain.SocialLink]
}

// NewContentService creates a new content service
func NewContentService(db *gorm.DB, logger *slog.Logger) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "content")
	return &ContentService{
		db:         db,
		logger:     logger,
		Skills:     newCollection[domain.Skill](db, "Skill", logger),
		Projects:   newCollection[domain.Project](db, "Project", logger),
		Experience: newCollection[domain.Experience](db, "Experience", logger),
		Social:     newCollection[domain.SocialLink](db, "Social link", logger),
	}
}

// FeaturedProjects returns the projects flagged for the landing page
func (s *ContentService) FeaturedProjects(ctx context.Context) ([]domain.Project, error) {
	return s.Projects.find(ctx, map[string]any{"featured": true})
}

// Profile returns the owner profile, creating the default one on first use.
func (s *ContentService) Profile(ctx context.Context) (*domain.Profile, error) {
	var profile domain.Profile
	err := s.db.WithContext(ctx).Order("id ASC").First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = domain.DefaultProfile()
		err = s.db.WithContext(ctx).Create(&profile).Error
	}
	if err != nil {
		s.logger.Error("profile load failed: database error", "error", err)
		return nil, InternalError("Failed to fetch profile", err)
	}
	return &profile, nil
}

// UpdateProfile applies a partial change to the profile.
func (s *ContentService) UpdateProfile(ctx context.Context, apply func(*domain.Profile) error) (*domain.Profile, error) {
	profile, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	id := profile.ID
	if err := apply(profile); err != nil {
		return nil, BadRequestError("Invalid profile data")
	}
	profile.ID = id

	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		s.logger.Error("profile update failed: database error", "error", err)
		return nil, InternalError("Failed to update profile", err)
	}
	s.logger.Info("profile updated")
	return profile, nil
}
