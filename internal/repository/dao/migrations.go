package dao

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/stockbook/inventory-api/internal/db/migrate"
)

// Migrations lists the schema history of the application.
func Migrations() []migrate.Migration {
	return []migrate.Migration{
		createTables("20240601090000_create_users", &User{}),
		createTables("20240601090100_create_suppliers", &Supplier{}, &SupplierItem{}),
		createTables("20240601090200_create_products", &Product{}),
		createTables("20240601090300_create_bills", &Bill{}, &BillItem{}, &Payment{}),
		createTables("20240601090400_create_inventory_records", &InventoryRecord{}),
		addConstraints("20240615090000_add_foreign_keys", []constraint{
			{&BillItem{}, "Product"},
			{&InventoryRecord{}, "Product"},
			{&InventoryRecord{}, "Supplier"},
		}),
	}
}

type constraint struct {
	model any
	name  string
}

// addConstraints creates the foreign keys of tables migrated before the
// models declared them. Tables created afterwards already carry them.
func addConstraints(name string, constraints []constraint) migrate.Migration {
	return migrate.Migration{
		Name: name,
		Up: func(tx *gorm.DB) error {
			m := tx.Migrator()
			for _, c := range constraints {
				if m.HasConstraint(c.model, c.name) {
					continue
				}
				if err := m.CreateConstraint(c.model, c.name); err != nil {
					return fmt.Errorf("m.CreateConstraint(%s) -> %w", c.name, err)
				}
			}
			return nil
		},
		Down: func(tx *gorm.DB) error {
			m := tx.Migrator()
			for i := len(constraints) - 1; i >= 0; i-- {
				c := constraints[i]
				if !m.HasConstraint(c.model, c.name) {
					continue
				}
				if err := m.DropConstraint(c.model, c.name); err != nil {
					return fmt.Errorf("m.DropConstraint(%s) -> %w", c.name, err)
				}
			}
			return nil
		},
	}
}

// createTables migrates models up and drops them, in reverse order, on
// the way down.
func createTables(name string, models ...any) migrate.Migration {
	return migrate.Migration{
		Name: name,
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(models...)
		},
		Down: func(tx *gorm.DB) error {
			for i := len(models) - 1; i >= 0; i-- {
				if err := tx.Migrator().DropTable(models[i]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// InitTables applies every pending migration.
func InitTables(ctx context.Context, db *gorm.DB) error {
	runner, err := migrate.NewRunner(db, Migrations())
	if err != nil {
		return fmt.Errorf("migrate.NewRunner -> %w", err)
	}

	if _, err = runner.Run(ctx); err != nil {
		return fmt.Errorf("runner.Run -> %w", err)
	}

	return nil
}
