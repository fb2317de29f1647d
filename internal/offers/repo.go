package offers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
)

// Repository persists category-level percentage offers, one per category.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, offer *models.CategoryOffer) (*models.CategoryOffer, error)
	Update(ctx context.Context, offer *models.CategoryOffer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CategoryOffer, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID) (*models.CategoryOffer, error)
	List(ctx context.Context) ([]models.CategoryOffer, error)
	ActiveByCategories(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, offer *models.CategoryOffer) (*models.CategoryOffer, error) {
	if offer.ID == uuid.Nil {
		offer.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

func (r *repository) Update(ctx context.Context, offer *models.CategoryOffer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CategoryOffer, error) {
	var offer models.CategoryOffer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) FindByCategory(ctx context.Context, categoryID uuid.UUID) (*models.CategoryOffer, error) {
	var offer models.CategoryOffer
	err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) List(ctx context.Context) ([]models.CategoryOffer, error) {
	var offers []models.CategoryOffer
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// ActiveByCategories maps category id to offer percent for the provided
// set, skipping inactive offers.
func (r *repository) ActiveByCategories(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return out, nil
	}
	var offers []models.CategoryOffer
	err := r.db.WithContext(ctx).
		Where("category_id IN ? AND is_active = ?", categoryIDs, true).
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	for _, offer := range offers {
		out[offer.CategoryID] = offer.Percent
	}
	return out, nil
}
