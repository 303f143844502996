package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/shinyyama/realestate-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrImageLimit = errors.New("property image limit reached")

type PropertyFilter struct {
	City          string
	PropertyType  model.PropertyType
	MinPrice      *int64
	MaxPrice      *int64
	HasRoadAccess *bool
	Status        model.PropertyStatus
}

type PropertyRepository interface {
	Create(ctx context.Context, p *model.Property) error
	FindByID(ctx context.Context, id string) (*model.Property, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]model.Property, error)
	List(ctx context.Context, f PropertyFilter, limit, offset int) ([]model.Property, int64, error)
	ListBySeller(ctx context.Context, sellerID string) ([]model.Property, error)
	Update(ctx context.Context, p *model.Property) error
	Delete(ctx context.Context, id string) error
	AddImages(ctx context.Context, propertyID string, images []model.PropertyImage) error
	DeleteImage(ctx context.Context, propertyID, imageID string) (*model.PropertyImage, error)
}

type propertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) Create(ctx context.Context, p *model.Property) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *propertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	var p model.Property
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepository) FindByIDs(ctx context.Context, ids []string) (map[string]model.Property, error) {
	out := make(map[string]model.Property, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []model.Property
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id IN ?", ids).
		Find(&list).Error; err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func (r *propertyRepository) List(ctx context.Context, f PropertyFilter, limit, offset int) ([]model.Property, int64, error) {
	var (
		list  []model.Property
		total int64
	)
	q := r.applyFilter(r.db.WithContext(ctx).Model(&model.Property{}), f)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.applyFilter(r.db.WithContext(ctx), f).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *propertyRepository) applyFilter(q *gorm.DB, f PropertyFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if city := strings.TrimSpace(f.City); city != "" {
		q = q.Where("LOWER(location_city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}
	if f.PropertyType != "" {
		q = q.Where("property_type = ?", f.PropertyType)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.HasRoadAccess != nil {
		q = q.Where("road_has_road_access = ?", *f.HasRoadAccess)
	}
	return q
}

func (r *propertyRepository) ListBySeller(ctx context.Context, sellerID string) ([]model.Property, error) {
	var list []model.Property
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *propertyRepository) Update(ctx context.Context, p *model.Property) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *propertyRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&model.PropertyImage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Property{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *propertyRepository) AddImages(ctx context.Context, propertyID string, images []model.PropertyImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.PropertyImage{}).Where("property_id = ?", propertyID).Count(&count).Error; err != nil {
			return err
		}
		if int(count)+len(images) > model.MaxPropertyImages {
			return ErrImageLimit
		}
		for i := range images {
			images[i].PropertyID = propertyID
			images[i].Position = int(count) + i
		}
		return tx.Create(&images).Error
	})
}

func (r *propertyRepository) DeleteImage(ctx context.Context, propertyID, imageID string) (*model.PropertyImage, error) {
	var img model.PropertyImage
	if err := r.db.WithContext(ctx).
		Where("id = ? AND property_id = ?", imageID, propertyID).
		First(&img).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&img).Error; err != nil {
		return nil, err
	}
	return &img, nil
}
