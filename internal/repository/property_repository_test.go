package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shinyyama/realestate-backend/internal/model"
	"github.com/shinyyama/realestate-backend/internal/testutil"
	"gorm.io/gorm"
)

func TestPropertyListFilters(t *testing.T) {
	gdb := testutil.OpenDB(t)
	repo := NewPropertyRepository(gdb)
	ctx := context.Background()

	seed := []model.Property{
		{SellerID: "s", Title: "Plot", PropertyType: model.PropertyTypeLand, Price: 100, Location: model.Location{Address: "a", City: "Hyderabad", State: "TS"}, RoadAccess: model.RoadAccess{HasRoadAccess: true}, Status: model.PropertyStatusActive},
		{SellerID: "s", Title: "Flat", PropertyType: model.PropertyTypeApartment, Price: 500, Location: model.Location{Address: "b", City: "Secunderabad", State: "TS"}, Status: model.PropertyStatusActive},
		{SellerID: "s", Title: "Villa", PropertyType: model.PropertyTypeVilla, Price: 900, Location: model.Location{Address: "c", City: "Pune", State: "MH"}, Status: model.PropertyStatusActive},
		{SellerID: "s", Title: "Sold", PropertyType: model.PropertyTypeLand, Price: 100, Location: model.Location{Address: "d", City: "Hyderabad", State: "TS"}, Status: model.PropertyStatusSold},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	min, max := int64(200), int64(1000)
	yes := true
	tests := []struct {
		name   string
		filter PropertyFilter
		want   int64
	}{
		{"active only", PropertyFilter{Status: model.PropertyStatusActive}, 3},
		{"city contains, case-insensitive", PropertyFilter{Status: model.PropertyStatusActive, City: "hyder"}, 1},
		{"city substring matches two", PropertyFilter{Status: model.PropertyStatusActive, City: "abad"}, 2},
		{"type", PropertyFilter{Status: model.PropertyStatusActive, PropertyType: model.PropertyTypeVilla}, 1},
		{"price range", PropertyFilter{Status: model.PropertyStatusActive, MinPrice: &min, MaxPrice: &max}, 2},
		{"road access", PropertyFilter{Status: model.PropertyStatusActive, HasRoadAccess: &yes}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := repo.List(ctx, tt.filter, 10, 0)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if total != tt.want || int64(len(list)) != tt.want {
				t.Fatalf("total=%d len=%d want %d", total, len(list), tt.want)
			}
		})
	}
}

func TestPropertyImagesLimit(t *testing.T) {
	gdb := testutil.OpenDB(t)
	repo := NewPropertyRepository(gdb)
	ctx := context.Background()
	p := testutil.CreateProperty(t, gdb, "seller", model.PropertyStatusActive)

	batch := make([]model.PropertyImage, 8)
	for i := range batch {
		batch[i] = model.PropertyImage{ImageURL: "https://img/" + string(rune('a'+i))}
	}
	if err := repo.AddImages(ctx, p.ID, batch); err != nil {
		t.Fatalf("AddImages: %v", err)
	}
	over := []model.PropertyImage{{ImageURL: "x"}, {ImageURL: "y"}, {ImageURL: "z"}}
	if err := repo.AddImages(ctx, p.ID, over); !errors.Is(err, ErrImageLimit) {
		t.Fatalf("expected ErrImageLimit, got %v", err)
	}

	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Images) != 8 || got.Images[7].Position != 7 {
		t.Fatalf("images=%d", len(got.Images))
	}

	removed, err := repo.DeleteImage(ctx, p.ID, got.Images[0].ID)
	if err != nil || removed.ImageURL != got.Images[0].ImageURL {
		t.Fatalf("DeleteImage: %v", err)
	}
	if _, err := repo.DeleteImage(ctx, "other-property", got.Images[1].ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("image of another property must not be deleted, err=%v", err)
	}
}

func TestPropertyDelete(t *testing.T) {
	gdb := testutil.OpenDB(t)
	repo := NewPropertyRepository(gdb)
	ctx := context.Background()
	p := testutil.CreateProperty(t, gdb, "seller", model.PropertyStatusActive)
	if err := repo.AddImages(ctx, p.ID, []model.PropertyImage{{ImageURL: "u"}}); err != nil {
		t.Fatalf("AddImages: %v", err)
	}
	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, p.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("property still present: %v", err)
	}
	var imgs int64
	gdb.Model(&model.PropertyImage{}).Where("property_id = ?", p.ID).Count(&imgs)
	if imgs != 0 {
		t.Fatalf("images left behind: %d", imgs)
	}
	if err := repo.Delete(ctx, p.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestUserFindContactOmitsCredentials(t *testing.T) {
	gdb := testutil.OpenDB(t)
	repo := NewUserRepository(gdb)
	u := testutil.CreateUser(t, gdb, "asha", model.RoleSeller)

	c, err := repo.FindContact(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("FindContact: %v", err)
	}
	if c.Name != "asha" || c.Email != "asha@example.com" || c.Phone != "9876543210" {
		t.Fatalf("unexpected contact %+v", c)
	}
	many, err := repo.FindContacts(context.Background(), []string{u.ID, "missing"})
	if err != nil || len(many) != 1 {
		t.Fatalf("FindContacts: %v %v", many, err)
	}
}
