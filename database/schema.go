package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/davidzaratecamp/paginacarebackend/models"
	"gorm.io/gorm"
)

// tables lists every persisted model. Admins come before blog posts because of the author FK.
func tables() []any {
	return []any{
		&models.Contact{},
		&models.Review{},
		&models.Admin{},
		&models.BlogPost{},
	}
}

// Migrate creates or extends the four tables.
func (d Database) Migrate(ctx context.Context) error {
	migrateDB := d.db.WithContext(ctx).Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err := migrateDB.AutoMigrate(tables()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// ColumnReport lists, per table, database columns that no model field maps
// to. Tables that do not exist yet are skipped.
func (d Database) ColumnReport(ctx context.Context) (map[string][]string, error) {
	db := d.db.WithContext(ctx)
	report := make(map[string][]string)

	for _, model := range tables() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		tableName := stmt.Schema.Table

		if !db.Migrator().HasTable(model) {
			continue
		}
		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
		}

		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}

		if mismatches := findColumnMismatches(dbColumns, stmt.Schema.DBNames); len(mismatches) > 0 {
			report[tableName] = mismatches
		}
	}

	return report, nil
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}
	sort.Strings(mismatches)

	return mismatches
}
