package content

import (
	"context"

	"github.com/juju/errors"
	"gorm.io/gorm"
)

type Repository interface {
	// FindActiveByID returns ErrContentNotFound when there is no row with
	// that id or the row is inactive.
	FindActiveByID(ctx context.Context, contentID string) (Record, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindActiveByID(ctx context.Context, contentID string) (Record, error) {
	var rec Record

	err := r.db.WithContext(ctx).
		Where("content_id = ? AND is_active = ?", contentID, true).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, ErrContentNotFound
		}

		return Record{}, errors.Annotatef(err, "content: reading %s", contentID)
	}

	return rec, nil
}
