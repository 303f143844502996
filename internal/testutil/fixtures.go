package testutil

import (
	"testing"

	"github.com/shinyyama/realestate-backend/internal/model"
	"gorm.io/gorm"
)

func CreateUser(t *testing.T, gdb *gorm.DB, name string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Name:  name,
		Email: name + "@example.com",
		Phone: "9876543210",
		Role:  role,
		// never exposed by contact disclosure
		PasswordHash: "$2a$12$hash-for-" + name,
	}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func CreateProperty(t *testing.T, gdb *gorm.DB, sellerID string, status model.PropertyStatus) *model.Property {
	t.Helper()
	p := &model.Property{
		SellerID:     sellerID,
		Title:        "2BHK near lake",
		Description:  "Quiet neighbourhood",
		PropertyType: model.PropertyTypeApartment,
		Price:        4500000,
		Area:         model.Area{Value: 1200, Unit: "sqft"},
		Location:     model.Location{Address: "12 Lake Rd", City: "Hyderabad", State: "Telangana", Pincode: "500001"},
		Status:       status,
	}
	if err := gdb.Create(p).Error; err != nil {
		t.Fatalf("create property: %v", err)
	}
	return p
}
