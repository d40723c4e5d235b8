package database

import (
	"fmt"
	"io"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/rpupo63/project-showcase/models"
)

// schemaModels are migrated in dependency order.
var schemaModels = []any{
	&models.Project{},
	&models.Comment{},
}

// Migrate creates missing tables and adds model columns an older table
// lacks. Nothing is ever dropped.
func (d Database) Migrate() error {
	if err := d.db.AutoMigrate(schemaModels...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// TableReport lists the columns of one table that no model field maps to.
type TableReport struct {
	Table     string
	Exists    bool
	Unmatched []string
}

// ColumnReport compares the live tables with the models.
func (d Database) ColumnReport() ([]TableReport, error) {
	migrator := d.db.Migrator()
	reports := make([]TableReport, 0, len(schemaModels))
	for _, model := range schemaModels {
		fields, err := modelFields(d.db, model)
		if err != nil {
			return nil, err
		}
		table := fields[0].Schema.Table
		report := TableReport{Table: table, Exists: migrator.HasTable(model)}
		if !report.Exists {
			reports = append(reports, report)
			continue
		}

		columnTypes, err := migrator.ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("error querying columns for table %s: %w", table, err)
		}
		known := make(map[string]bool, len(fields))
		for _, field := range fields {
			known[field.DBName] = true
		}
		for _, col := range columnTypes {
			if !known[col.Name()] {
				report.Unmatched = append(report.Unmatched, col.Name())
			}
		}
		sort.Strings(report.Unmatched)
		reports = append(reports, report)
	}
	return reports, nil
}

// WriteColumnReport prints ColumnReport in a human readable form.
func (d Database) WriteColumnReport(w io.Writer) error {
	reports, err := d.ColumnReport()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "=== COLUMN MISMATCH REPORT ===")
	total := 0
	for _, report := range reports {
		fmt.Fprintf(w, "\n--- Table: %s ---\n", report.Table)
		switch {
		case !report.Exists:
			fmt.Fprintln(w, "Table does not exist yet (will be created during migration)")
		case len(report.Unmatched) == 0:
			fmt.Fprintln(w, "All columns are accounted for in the model.")
		default:
			fmt.Fprintf(w, "Found %d columns not accounted for in model:\n", len(report.Unmatched))
			for _, col := range report.Unmatched {
				fmt.Fprintf(w, "  - %s\n", col)
			}
			total += len(report.Unmatched)
		}
	}
	fmt.Fprintf(w, "\n=== SUMMARY ===\n")
	fmt.Fprintf(w, "Total mismatched columns across all tables: %d\n", total)
	return nil
}

func modelFields(db *gorm.DB, model any) ([]*schema.Field, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("parse model %T: %w", model, err)
	}
	fields := make([]*schema.Field, 0, len(stmt.Schema.Fields))
	for _, field := range stmt.Schema.Fields {
		if field.DBName != "" {
			fields = append(fields, field)
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("model %T has no columns", model)
	}
	return fields, nil
}
