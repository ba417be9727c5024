package repository

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/joseph-ayodele/label-approvals/constants"
)

const jobsTableName = "label_approval_jobs"

var (
	// JobsColumns mirrors db/ent/schema/label_approval_job.go.
	JobsColumns = []*schema.Column{
		{Name: colID, Type: field.TypeUUID},
		{Name: colBrandName, Type: field.TypeString, Size: 255},
		{Name: colProductClass, Type: field.TypeString, Size: 255},
		{Name: colStatus, Type: field.TypeString, Default: string(constants.JobStatusPending)},
		{Name: colMetadata, Type: field.TypeJSON, SchemaType: map[string]string{dialect.Postgres: "jsonb"}},
		{Name: colCreatedAt, Type: field.TypeTime},
		{Name: colUpdatedAt, Type: field.TypeTime},
		{Name: colCreatedByEntity, Type: field.TypeString},
		{Name: colCreatedByEntityID, Type: field.TypeString},
		{Name: colCreatedByEntityDomain, Type: field.TypeString},
		{Name: colUpdatedByEntity, Type: field.TypeString},
		{Name: colUpdatedByEntityID, Type: field.TypeString},
		{Name: colUpdatedByEntityDomain, Type: field.TypeString},
	}
	// JobsTable holds the schema information for the "label_approval_jobs" table.
	JobsTable = &schema.Table{
		Name:       jobsTableName,
		Columns:    JobsColumns,
		PrimaryKey: []*schema.Column{JobsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "labelapprovaljob_status_created_at",
				Unique:  false,
				Columns: []*schema.Column{JobsColumns[3], JobsColumns[5]},
			},
			{
				Name:    "labelapprovaljob_brand_name",
				Unique:  false,
				Columns: []*schema.Column{JobsColumns[1]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{JobsTable}
)

// Migrate creates or upgrades the tables this service owns.
func Migrate(ctx context.Context, db *DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	m, err := schema.NewMigrate(db.Driver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		logger.Error("schema migration failed", "error", err)
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("schema migrated", "dialect", db.Dialect(), "tables", len(Tables))
	return nil
}
