// Package seed fills an empty database with an admin account and a small
// demo catalogue. Every seeder is skipped when its table already has rows,
// so running it twice is harmless.
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/pkg/cache"
	"github.com/stockbook/inventory-api/internal/repository"
	"github.com/stockbook/inventory-api/internal/repository/dao"
	"github.com/stockbook/inventory-api/internal/service"
)

type Admin struct {
	Name     string
	Email    string
	Password string
}

// Seeder inserts one kind of row. It reports false when it found existing
// data and did nothing.
type Seeder struct {
	Name string
	Run  func(ctx context.Context) (bool, error)
}

type seeds struct {
	users     *service.UserService
	suppliers *service.SupplierService
	products  *service.ProductService
	admin     Admin
	adminID   *uint
}

// Seeders returns the seeders in the order they must run.
func Seeders(db *gorm.DB, admin Admin) []Seeder {
	productRepo := repository.NewProductRepository(dao.NewProductDAO(db))
	recordRepo := repository.NewInventoryRepository(dao.NewInventoryDAO(db))
	ledger := service.NewStockLedger(productRepo, recordRepo, cache.Noop{})

	s := &seeds{
		users:     service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db))),
		suppliers: service.NewSupplierService(repository.NewSupplierRepository(dao.NewSupplierDAO(db)), nil),
		products:  service.NewProductService(dao.NewTransactor(db), productRepo, recordRepo, ledger, cache.Noop{}),
		admin:     admin,
	}

	return []Seeder{
		{Name: "users", Run: s.seedUsers},
		{Name: "suppliers", Run: s.seedSuppliers},
		{Name: "products", Run: s.seedProducts},
	}
}

// RunAll executes the seeders in order and stops on the first error. report
// is called after each seeder.
func RunAll(ctx context.Context, seeders []Seeder, report func(name string, seeded bool)) error {
	for _, sd := range seeders {
		seeded, err := sd.Run(ctx)
		if err != nil {
			return fmt.Errorf("seeder %q: %w", sd.Name, err)
		}
		if report != nil {
			report(sd.Name, seeded)
		}
	}

	return nil
}

func (s *seeds) seedUsers(ctx context.Context) (bool, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		for _, u := range users {
			if u.IsAdmin() {
				id := u.ID
				s.adminID = &id
				break
			}
		}
		return false, nil
	}

	created, err := s.users.CreateUser(ctx, domain.User{
		Name:     s.admin.Name,
		Email:    s.admin.Email,
		Password: s.admin.Password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	s.adminID = &created.ID

	return true, nil
}

func (s *seeds) seedSuppliers(ctx context.Context) (bool, error) {
	existing, err := s.suppliers.ListSuppliers(ctx, false)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	supplier, err := s.suppliers.CreateSupplier(ctx, domain.Supplier{
		Name:      "Ravi Kumar",
		Company:   "Sunrise Electricals",
		Email:     "orders@sunrise.example",
		Phone:     "+91 98450 12345",
		Address:   "14 Market Road, Bengaluru",
		CreatedBy: s.adminID,
	})
	if err != nil {
		return false, err
	}

	items := []domain.SupplierItem{
		{Name: "LED Panel 18W", Model: "SP-18", Type: "Panel", BuyPrice: decimal.NewFromInt(420)},
		{Name: "Tube Light 20W", Model: "ST-20", Type: "Tube", BuyPrice: decimal.NewFromInt(180)},
	}
	for _, item := range items {
		item.SupplierID = supplier.ID
		item.Status = domain.ItemStatusActive
		if _, err = s.suppliers.CreateItem(ctx, item); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (s *seeds) seedProducts(ctx context.Context) (bool, error) {
	page, err := s.products.ListProducts(ctx, domain.ProductFilter{}, domain.PageRequest{Page: 1, PerPage: 1})
	if err != nil {
		return false, err
	}
	if page.Total > 0 {
		return false, nil
	}

	products := []domain.Product{
		demoProduct("LED Panel", "SP-18", "Panel", 18, "8901234500018", 420, 560, 25),
		demoProduct("Tube Light", "ST-20", "Tube", 20, "8901234500025", 180, 240, 40),
		demoProduct("Street Light", "SL-60", "Street", 60, "8901234500032", 1650, 2100, 6),
		demoProduct("Flood Light", "FL-100", "Flood", 100, "8901234500049", 2300, 2950, 3),
	}
	for _, p := range products {
		if _, err = s.products.CreateProduct(ctx, p, s.adminID); err != nil {
			return false, err
		}
	}

	return true, nil
}

func demoProduct(name, model, typ string, watts float64, barcode string, buy, sell int64, qty int) domain.Product {
	return domain.Product{
		Name:      name,
		Model:     model,
		Type:      typ,
		Watts:     &watts,
		Barcode:   &barcode,
		BuyPrice:  decimal.NewFromInt(buy),
		SellPrice: decimal.NewFromInt(sell),
		Quantity:  qty,
	}
}
