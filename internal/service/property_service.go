package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shinyyama/realestate-backend/internal/apperr"
	"github.com/shinyyama/realestate-backend/internal/model"
	"github.com/shinyyama/realestate-backend/internal/repository"
	"github.com/shinyyama/realestate-backend/internal/reqctx"
	"github.com/shinyyama/realestate-backend/internal/storage"
	"gorm.io/gorm"
)

const (
	MaxImageBytes     = 5 << 20
	DefaultPageLimit  = 10
	MaxPageLimit      = 50
	maxTitleLength    = 120
	maxDescriptionLen = 2000
)

var (
	areaUnits     = []string{"sqft", "sqyd", "acres", "cents", "guntas"}
	distanceUnits = []string{"meters", "feet", "km"}
	roadTypes     = []string{"national_highway", "state_highway", "district_road", "village_road", "private_road"}
	facings       = []string{"north", "south", "east", "west", "north-east", "north-west", "south-east", "south-west"}
)

type PropertyInput struct {
	Title        string
	Description  string
	PropertyType model.PropertyType
	Price        int64
	Area         model.Area
	Location     model.Location
	RoadAccess   model.RoadAccess
	Amenities    model.Amenities
	Facing       string
}

// PropertyUpdate holds the fields a seller sent; nil means unchanged.
type PropertyUpdate struct {
	Title        *string
	Description  *string
	PropertyType *model.PropertyType
	Price        *int64
	Area         *model.Area
	Location     *model.Location
	RoadAccess   *model.RoadAccess
	Amenities    *model.Amenities
	Facing       *string
	Status       *model.PropertyStatus
}

type PropertyQuery struct {
	Filter repository.PropertyFilter
	Page   int
	Limit  int
}

type PropertyPage struct {
	Total      int64
	Page       int
	Pages      int
	Properties []model.Property
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type PropertyService interface {
	Create(ctx context.Context, sellerID string, in PropertyInput) (*model.Property, error)
	Get(ctx context.Context, id string) (*model.Property, error)
	List(ctx context.Context, q PropertyQuery) (*PropertyPage, error)
	ListBySeller(ctx context.Context, sellerID string) ([]model.Property, error)
	Update(ctx context.Context, sellerID, id string, in PropertyUpdate) (*model.Property, error)
	Delete(ctx context.Context, sellerID, id string) error
	AddImages(ctx context.Context, sellerID, id string, files []ImageUpload) (*model.Property, error)
	DeleteImage(ctx context.Context, sellerID, id, imageID string) (*model.Property, error)
}

type propertyService struct {
	repo  repository.PropertyRepository
	store storage.ImageStore
}

// NewPropertyService builds the listing service. store may be nil when no
// image bucket is configured; image operations then fail validation.
func NewPropertyService(repo repository.PropertyRepository, store storage.ImageStore) PropertyService {
	return &propertyService{repo: repo, store: store}
}

// NormalizeFacing turns "North East" or "north_east" into "north-east".
func NormalizeFacing(facing string) string {
	f := strings.ToLower(strings.TrimSpace(facing))
	f = strings.Join(strings.FieldsFunc(f, func(r rune) bool { return r == ' ' || r == '_' || r == '\t' }), "-")
	return f
}

func NormalizeAreaUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "acre" {
		return "acres"
	}
	return u
}

func (s *propertyService) Create(ctx context.Context, sellerID string, in PropertyInput) (*model.Property, error) {
	p := &model.Property{
		SellerID:     sellerID,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		PropertyType: in.PropertyType,
		Price:        in.Price,
		Area:         in.Area,
		Location:     in.Location,
		RoadAccess:   in.RoadAccess,
		Amenities:    in.Amenities,
		Facing:       in.Facing,
		Status:       model.PropertyStatusActive,
	}
	normalize(p)
	if err := validateProperty(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("[property] rid=%s seller=%s property=%s stage=created", reqctx.RID(ctx), sellerID, p.ID)
	return p, nil
}

func (s *propertyService) Get(ctx context.Context, id string) (*model.Property, error) {
	return s.find(ctx, id)
}

func (s *propertyService) List(ctx context.Context, q PropertyQuery) (*PropertyPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	f := q.Filter
	f.Status = model.PropertyStatusActive
	if f.PropertyType != "" && !f.PropertyType.Valid() {
		return nil, apperr.Validation("Invalid property type.")
	}
	list, total, err := s.repo.List(ctx, f, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &PropertyPage{
		Total:      total,
		Page:       page,
		Pages:      int(math.Ceil(float64(total) / float64(limit))),
		Properties: list,
	}, nil
}

func (s *propertyService) ListBySeller(ctx context.Context, sellerID string) ([]model.Property, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

func (s *propertyService) Update(ctx context.Context, sellerID, id string, in PropertyUpdate) (*model.Property, error) {
	p, err := s.owned(ctx, sellerID, id, "You are not authorized to update this property.")
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.PropertyType != nil {
		p.PropertyType = *in.PropertyType
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Area != nil {
		p.Area = *in.Area
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.RoadAccess != nil {
		p.RoadAccess = *in.RoadAccess
	}
	if in.Amenities != nil {
		p.Amenities = *in.Amenities
	}
	if in.Facing != nil {
		p.Facing = *in.Facing
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Validation("Invalid status.")
		}
		p.Status = *in.Status
	}
	normalize(p)
	if err := validateProperty(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *propertyService) Delete(ctx context.Context, sellerID, id string) error {
	p, err := s.owned(ctx, sellerID, id, "You are not authorized to delete this property.")
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Property not found.")
		}
		return err
	}
	if s.store != nil {
		for _, img := range p.Images {
			if img.ObjectPath == "" {
				continue
			}
			if err := s.store.Delete(ctx, img.ObjectPath); err != nil {
				log.Printf("[property] rid=%s property=%s stage=image_cleanup object=%s err=%v", reqctx.RID(ctx), id, img.ObjectPath, err)
			}
		}
	}
	log.Printf("[property] rid=%s seller=%s property=%s stage=deleted", reqctx.RID(ctx), sellerID, id)
	return nil
}

func (s *propertyService) AddImages(ctx context.Context, sellerID, id string, files []ImageUpload) (*model.Property, error) {
	if s.store == nil {
		return nil, apperr.Validation("Image uploads are not enabled.")
	}
	if len(files) == 0 {
		return nil, apperr.Validation("At least one image is required.")
	}
	p, err := s.owned(ctx, sellerID, id, "You are not authorized to update this property.")
	if err != nil {
		return nil, err
	}
	if len(p.Images) >= model.MaxPropertyImages {
		return nil, apperr.Validation(fmt.Sprintf("Maximum %d images already uploaded.", model.MaxPropertyImages))
	}
	if len(p.Images)+len(files) > model.MaxPropertyImages {
		return nil, apperr.Validation(fmt.Sprintf("Maximum %d images allowed.", model.MaxPropertyImages))
	}
	for _, f := range files {
		if !storage.AllowedContentType(f.ContentType) {
			return nil, apperr.Validation("Only JPEG, PNG, and WebP images are allowed.")
		}
		if len(f.Data) == 0 || len(f.Data) > MaxImageBytes {
			return nil, apperr.Validation("Each image must be between 1 byte and 5 MB.")
		}
	}

	images := make([]model.PropertyImage, 0, len(files))
	for _, f := range files {
		objectPath := storage.ObjectPath(id, f.ContentType)
		url, err := s.store.Upload(ctx, objectPath, strings.ToLower(f.ContentType), f.Data)
		if err != nil {
			s.discard(ctx, images)
			return nil, err
		}
		images = append(images, model.PropertyImage{ObjectPath: objectPath, ImageURL: url})
	}
	if err := s.repo.AddImages(ctx, id, images); err != nil {
		s.discard(ctx, images)
		if errors.Is(err, repository.ErrImageLimit) {
			return nil, apperr.Validation(fmt.Sprintf("Maximum %d images allowed.", model.MaxPropertyImages))
		}
		return nil, err
	}
	log.Printf("[property] rid=%s property=%s stage=images_added count=%d", reqctx.RID(ctx), id, len(images))
	return s.find(ctx, id)
}

func (s *propertyService) DeleteImage(ctx context.Context, sellerID, id, imageID string) (*model.Property, error) {
	if _, err := s.owned(ctx, sellerID, id, "Not authorized."); err != nil {
		return nil, err
	}
	img, err := s.repo.DeleteImage(ctx, id, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Image not found on this property.")
		}
		return nil, err
	}
	if s.store != nil && img.ObjectPath != "" {
		if err := s.store.Delete(ctx, img.ObjectPath); err != nil {
			log.Printf("[property] rid=%s property=%s stage=image_delete object=%s err=%v", reqctx.RID(ctx), id, img.ObjectPath, err)
		}
	}
	return s.find(ctx, id)
}

func (s *propertyService) discard(ctx context.Context, images []model.PropertyImage) {
	for _, img := range images {
		if err := s.store.Delete(ctx, img.ObjectPath); err != nil {
			log.Printf("[property] rid=%s stage=upload_rollback object=%s err=%v", reqctx.RID(ctx), img.ObjectPath, err)
		}
	}
}

func (s *propertyService) find(ctx context.Context, id string) (*model.Property, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Property not found.")
		}
		return nil, err
	}
	return p, nil
}

func (s *propertyService) owned(ctx context.Context, sellerID, id, denied string) (*model.Property, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, apperr.Forbidden(denied)
	}
	return p, nil
}

func normalize(p *model.Property) {
	if p.Facing != "" {
		p.Facing = NormalizeFacing(p.Facing)
	}
	p.Area.Unit = NormalizeAreaUnit(p.Area.Unit)
	if p.Area.Unit == "" {
		p.Area.Unit = "sqft"
	}
	p.Location.City = strings.TrimSpace(p.Location.City)
	p.Location.Pincode = strings.TrimSpace(p.Location.Pincode)
	if p.RoadAccess.DistanceValue != nil && p.RoadAccess.DistanceUnit == "" {
		p.RoadAccess.DistanceUnit = "meters"
	}
}

func validateProperty(p *model.Property) error {
	switch {
	case p.Title == "":
		return apperr.Validation("Property title is required.")
	case utf8.RuneCountInString(p.Title) > maxTitleLength:
		return apperr.Validation("Title cannot exceed 120 characters.")
	case utf8.RuneCountInString(p.Description) > maxDescriptionLen:
		return apperr.Validation("Description cannot exceed 2000 characters.")
	case !p.PropertyType.Valid():
		return apperr.Validation("Property type must be one of land, apartment, villa, commercial.")
	case p.Price < 0:
		return apperr.Validation("Price cannot be negative.")
	case p.Area.Value <= 0:
		return apperr.Validation("Area value is required.")
	case !oneOf(p.Area.Unit, areaUnits):
		return apperr.Validation("Invalid area unit.")
	case strings.TrimSpace(p.Location.Address) == "":
		return apperr.Validation("Address is required.")
	case p.Location.City == "":
		return apperr.Validation("City is required.")
	case strings.TrimSpace(p.Location.State) == "":
		return apperr.Validation("State is required.")
	case p.Location.Pincode != "" && !validPincode(p.Location.Pincode):
		return apperr.Validation("Invalid pincode.")
	case p.RoadAccess.DistanceValue != nil && *p.RoadAccess.DistanceValue < 0:
		return apperr.Validation("Distance from road cannot be negative.")
	case p.RoadAccess.DistanceUnit != "" && !oneOf(p.RoadAccess.DistanceUnit, distanceUnits):
		return apperr.Validation("Invalid distance unit.")
	case p.RoadAccess.RoadType != "" && !oneOf(p.RoadAccess.RoadType, roadTypes):
		return apperr.Validation("Invalid road type.")
	case p.Facing != "" && !oneOf(p.Facing, facings):
		return apperr.Validation("Invalid facing.")
	}
	return nil
}

func validPincode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}
