package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PropertyType string

const (
	PropertyTypeLand       PropertyType = "land"
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeCommercial PropertyType = "commercial"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeLand, PropertyTypeApartment, PropertyTypeVilla, PropertyTypeCommercial:
		return true
	}
	return false
}

type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusSold     PropertyStatus = "sold"
	PropertyStatusInactive PropertyStatus = "inactive"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusActive, PropertyStatusSold, PropertyStatusInactive:
		return true
	}
	return false
}

const MaxPropertyImages = 10

type Area struct {
	Value float64 `gorm:"column:value;not null"`
	Unit  string  `gorm:"column:unit;size:16;not null;default:sqft"`
}

type Location struct {
	Address   string   `gorm:"column:address;size:255;not null"`
	City      string   `gorm:"column:city;size:120;not null;index:idx_properties_search,priority:1"`
	State     string   `gorm:"column:state;size:120;not null"`
	Pincode   string   `gorm:"column:pincode;size:6"`
	Latitude  *float64 `gorm:"column:latitude"`
	Longitude *float64 `gorm:"column:longitude"`
}

type RoadAccess struct {
	HasRoadAccess bool     `gorm:"column:has_road_access;not null;default:false"`
	DistanceValue *float64 `gorm:"column:distance_value"`
	DistanceUnit  string   `gorm:"column:distance_unit;size:16"`
	RoadType      string   `gorm:"column:road_type;size:32"`
}

type Amenities struct {
	Electricity  bool `gorm:"column:electricity;not null;default:false"`
	Water        bool `gorm:"column:water;not null;default:false"`
	Drainage     bool `gorm:"column:drainage;not null;default:false"`
	BoundaryWall bool `gorm:"column:boundary_wall;not null;default:false"`
}

// Property is a seller's listing. SellerID must never leave the server in a
// listing response; contact is only reachable through an Unlock.
type Property struct {
	ID           string          `gorm:"primaryKey;size:36"`
	SellerID     string          `gorm:"column:seller_id;size:36;index;not null"`
	Title        string          `gorm:"size:120;not null"`
	Description  string          `gorm:"type:text"`
	PropertyType PropertyType    `gorm:"column:property_type;size:16;not null;index:idx_properties_search,priority:2"`
	Price        int64           `gorm:"not null;index"`
	Area         Area            `gorm:"embedded;embeddedPrefix:area_"`
	Location     Location        `gorm:"embedded;embeddedPrefix:location_"`
	RoadAccess   RoadAccess      `gorm:"embedded;embeddedPrefix:road_"`
	Amenities    Amenities       `gorm:"embedded;embeddedPrefix:amenity_"`
	Facing       string          `gorm:"size:16"`
	Images       []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
	Status       PropertyStatus  `gorm:"size:16;not null;default:active;index:idx_properties_search,priority:3"`
	IsFeatured   bool            `gorm:"column:is_featured;not null;default:false"`
	CreatedAt    time.Time       `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (Property) TableName() string {
	return "properties"
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
