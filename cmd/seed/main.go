package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shinyyama/realestate-backend/internal/config"
	"github.com/shinyyama/realestate-backend/internal/db"
	appmw "github.com/shinyyama/realestate-backend/internal/middleware"
	"github.com/shinyyama/realestate-backend/internal/model"
	"github.com/shinyyama/realestate-backend/internal/repository"
	"github.com/shinyyama/realestate-backend/internal/service"
	"gorm.io/gorm"
)

type seedUser struct {
	Name  string
	Email string
	Phone string
	Role  model.Role
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	users := repository.NewUserRepository(gdb)
	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("properties already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	accounts := make(map[string]*model.User)
	for _, su := range []seedUser{
		{Name: "Ravi Seller", Email: "seller@demo.test", Phone: "9876500001", Role: model.RoleSeller},
		{Name: "Meena Seller", Email: "seller2@demo.test", Phone: "9876500002", Role: model.RoleSeller},
		{Name: "Arjun Buyer", Email: "buyer@demo.test", Phone: "9876500003", Role: model.RoleBuyer},
	} {
		u, err := findOrCreateUser(ctx, users, su)
		if err != nil {
			return err
		}
		accounts[su.Email] = u
	}

	props := service.NewPropertyService(repository.NewPropertyRepository(gdb), nil)
	inputs := buildSeedProperties()
	sellers := []*model.User{accounts["seller@demo.test"], accounts["seller2@demo.test"]}
	for i, in := range inputs {
		seller := sellers[i%len(sellers)]
		if _, err := props.Create(ctx, seller.ID, in); err != nil {
			return fmt.Errorf("create property %q: %w", in.Title, err)
		}
	}
	log.Printf("seeded %d properties for %d sellers", len(inputs), len(sellers))

	if cfg.JWTSecret != "" {
		for email, u := range accounts {
			tok, err := appmw.SignToken(cfg.JWTSecret, u.ID, 7*24*time.Hour)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Printf("%s (%s): %s\n", email, u.Role, tok)
		}
	}
	return nil
}

func findOrCreateUser(ctx context.Context, users repository.UserRepository, su seedUser) (*model.User, error) {
	u, err := users.FindByEmail(ctx, su.Email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user %s: %w", su.Email, err)
	}
	u = &model.User{Name: su.Name, Email: su.Email, Phone: su.Phone, Role: su.Role, IsVerified: true}
	if err := users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user %s: %w", su.Email, err)
	}
	return u, nil
}

func buildSeedProperties() []service.PropertyInput {
	type seed struct {
		Title  string
		Type   model.PropertyType
		City   string
		State  string
		Price  int64
		Area   float64
		Unit   string
		Facing string
		Road   bool
	}
	seeds := []seed{
		{"Residential plot near ORR", model.PropertyTypeLand, "Hyderabad", "Telangana", 4500000, 200, "sqyd", "east", true},
		{"2BHK apartment, Gachibowli", model.PropertyTypeApartment, "Hyderabad", "Telangana", 7800000, 1250, "sqft", "north-east", true},
		{"Farm land with borewell", model.PropertyTypeLand, "Warangal", "Telangana", 2200000, 2, "acres", "north", false},
		{"Independent villa, gated community", model.PropertyTypeVilla, "Pune", "Maharashtra", 16500000, 2400, "sqft", "west", true},
		{"Shop front on main road", model.PropertyTypeCommercial, "Vijayawada", "Andhra Pradesh", 9500000, 600, "sqft", "south", true},
		{"Agricultural land, canal fed", model.PropertyTypeLand, "Guntur", "Andhra Pradesh", 3100000, 40, "cents", "south-east", false},
	}
	out := make([]service.PropertyInput, 0, len(seeds))
	for _, s := range seeds {
		out = append(out, service.PropertyInput{
			Title:        s.Title,
			Description:  fmt.Sprintf("%s in %s. Clear title, ready for registration.", s.Title, s.City),
			PropertyType: s.Type,
			Price:        s.Price,
			Area:         model.Area{Value: s.Area, Unit: s.Unit},
			Location:     model.Location{Address: "Demo address", City: s.City, State: s.State},
			RoadAccess:   model.RoadAccess{HasRoadAccess: s.Road},
			Amenities:    model.Amenities{Electricity: true, Water: s.Road},
			Facing:       s.Facing,
		})
	}
	return out
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.Property{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count properties: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}
