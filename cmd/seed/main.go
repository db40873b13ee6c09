package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"docflow/internal/auth"
	"docflow/internal/catalog"
	"docflow/internal/config"
	"docflow/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed the type catalog")
	clearData := flag.Bool("clear-data", false, "Clear all workflow data (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	switch {
	case *clearData:
		log.Printf("Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		log.Println("Clearing workflow data...")
		if err := clearWorkflowData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared")
		return
	}

	tenantID := getEnvDefault("SEED_TENANT_ID", "tenant-dev")

	// Install the default document type catalog for the seed tenant
	log.Printf("Installing default document type catalog for tenant %s...", tenantID)
	installed, err := installCatalog(ctx, pool, tables, tenantID)
	if err != nil {
		log.Fatalf("Failed to install catalog: %v", err)
	}
	log.Printf("Catalog ready (%d new types)", installed)

	// Provision test users against the identity provider, if configured
	if cfg.AuthURL != "" && cfg.AuthKey != "" {
		if err := seedUsers(cfg, tenantID); err != nil {
			log.Fatalf("Failed to seed users: %v", err)
		}
	} else {
		log.Println("AUTH_URL/AUTH_KEY not set, skipping user provisioning")
	}

	log.Println("Seeding complete")
}

// runSchema creates tables and indexes if they don't exist. The two
// partial unique indexes on documents carry the lineage invariants: at
// most one in-flight (draft or in_approval) version and at most one
// released version per (tenant, number, lineage kind), enforced at
// write time no matter which code path does the write.
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				tenant_id TEXT NOT NULL,
				prefix TEXT NOT NULL,
				name TEXT NOT NULL,
				next_number INTEGER NOT NULL DEFAULT 1,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (tenant_id, prefix)
			)`, tables.DocumentTypes),

		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				tenant_id TEXT NOT NULL,
				document_type_id UUID NOT NULL REFERENCES %s(id),
				document_number TEXT NOT NULL,
				version TEXT NOT NULL,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'draft',
				is_production BOOLEAN NOT NULL DEFAULT FALSE,
				project_code TEXT,
				rejection_reason TEXT,
				created_by TEXT NOT NULL,
				created_by_email TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				released_by TEXT,
				released_at TIMESTAMPTZ,
				UNIQUE (tenant_id, document_number, version)
			)`, tables.Documents, tables.DocumentTypes),

		// At most one in-flight version per lineage
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %s_one_in_flight
			ON %s (tenant_id, document_number, is_production)
			WHERE status IN ('draft', 'in_approval')`,
			tables.Documents, tables.Documents),

		// At most one released version per lineage
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %s_one_released
			ON %s (tenant_id, document_number, is_production)
			WHERE status = 'released'`,
			tables.Documents, tables.Documents),

		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_tenant_status
			ON %s (tenant_id, status)`,
			tables.Documents, tables.Documents),

		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				document_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				user_id TEXT NOT NULL,
				user_email TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				comments TEXT,
				rejection_reason TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				decided_at TIMESTAMPTZ,
				UNIQUE (document_id, user_id)
			)`, tables.Approvers, tables.Documents),

		// No foreign key on document_id: the audit trail must survive an
		// administrative document delete.
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				tenant_id TEXT NOT NULL,
				document_id UUID NOT NULL,
				action TEXT NOT NULL,
				performed_by TEXT NOT NULL,
				performed_by_email TEXT NOT NULL,
				details JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.AuditLog),

		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_document
			ON %s (tenant_id, document_id, created_at)`,
			tables.AuditLog, tables.AuditLog),

		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				document_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				file_name TEXT NOT NULL,
				size BIGINT NOT NULL,
				checksum TEXT NOT NULL,
				scan_state TEXT NOT NULL DEFAULT 'pending',
				attached_by TEXT NOT NULL,
				attached_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Files, tables.Documents),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// dropAllTables drops the workflow tables in dependency order
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	drops := []string{
		tables.Files,
		tables.Approvers,
		tables.AuditLog,
		tables.Documents,
		tables.DocumentTypes,
	}
	for _, table := range drops {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// clearWorkflowData truncates data but keeps the schema
func clearWorkflowData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	stmt := fmt.Sprintf("TRUNCATE %s, %s, %s, %s, %s",
		tables.Files, tables.Approvers, tables.AuditLog, tables.Documents, tables.DocumentTypes)
	_, err := pool.Exec(ctx, stmt)
	return err
}

// installCatalog inserts the embedded default document types for a
// tenant. Idempotent: existing prefixes are left untouched, including
// their numbering counters.
func installCatalog(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tenantID string) (int, error) {
	c, err := catalog.Load()
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, prefix, name, next_number, is_active, created_at)
		VALUES ($1, $2, $3, $4, 1, TRUE, $5)
		ON CONFLICT (tenant_id, prefix) DO NOTHING
	`, tables.DocumentTypes)

	installed := 0
	for _, dt := range c.DocumentTypes {
		tag, err := pool.Exec(ctx, query, uuid.New().String(), tenantID, dt.Prefix, dt.Name, time.Now().UTC())
		if err != nil {
			return installed, fmt.Errorf("insert type %s: %w", dt.Prefix, err)
		}
		installed += int(tag.RowsAffected())
	}
	return installed, nil
}

// seedUsers provisions test users against the identity provider's admin
// API. Idempotent through delete-then-create.
func seedUsers(cfg *config.Config, tenantID string) error {
	client := auth.NewAdminClient(cfg.AuthURL, cfg.AuthKey)

	users := []struct {
		email   string
		isAdmin bool
	}{
		{"creator@example.test", false},
		{"approver-a@example.test", false},
		{"approver-b@example.test", false},
		{"admin@example.test", true},
	}

	password := getEnvDefault("SEED_USER_PASSWORD", "docflow-dev-password")

	for _, u := range users {
		if err := client.DeleteUserByEmail(u.email); err != nil {
			return fmt.Errorf("delete %s: %w", u.email, err)
		}
		id, err := client.CreateUser(u.email, password, tenantID, u.isAdmin)
		if err != nil {
			return fmt.Errorf("create %s: %w", u.email, err)
		}
		log.Printf("Provisioned user %s (ID: %s, admin: %t)", u.email, id, u.isAdmin)
	}
	return nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
