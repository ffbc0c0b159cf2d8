package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]sassets (
				id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				user_id      text NOT NULL,
				parent_id    uuid REFERENCES %[1]sassets(id),
				kind         text NOT NULL CHECK (kind IN ('folder', 'file', 'image')),
				name         text NOT NULL,
				storage_path text,
				mimetype     text,
				size         bigint,
				created_at   timestamptz NOT NULL DEFAULT now(),
				updated_at   timestamptz NOT NULL DEFAULT now()
			)`, tablePrefix),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %[1]sassets_parent_idx
				ON %[1]sassets (user_id, parent_id)`, tablePrefix),
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %[1]sassets_folder_name_idx
				ON %[1]sassets (user_id, COALESCE(parent_id, '00000000-0000-0000-0000-000000000000'::uuid), name)
				WHERE kind = 'folder'`, tablePrefix),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]sinvoices (
				id                uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				user_id           text NOT NULL,
				number            text NOT NULL,
				client_name       text NOT NULL,
				client_email      text NOT NULL DEFAULT '',
				region            text NOT NULL DEFAULT '',
				items             jsonb NOT NULL DEFAULT '[]',
				status            text NOT NULL DEFAULT 'draft',
				subtotal          bigint NOT NULL DEFAULT 0,
				tax_rate          text NOT NULL DEFAULT '',
				tax               bigint NOT NULL DEFAULT 0,
				total             bigint NOT NULL DEFAULT 0,
				payment_reference text NOT NULL DEFAULT '',
				created_at        timestamptz NOT NULL DEFAULT now(),
				updated_at        timestamptz NOT NULL DEFAULT now()
			)`, tablePrefix),
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %[1]sinvoices_user_number_idx
				ON %[1]sinvoices (user_id, number)`, tablePrefix),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]sinvoice_counters (
				user_id text NOT NULL,
				year    int NOT NULL,
				counter int NOT NULL DEFAULT 0,
				PRIMARY KEY (user_id, year)
			)`, tablePrefix),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]sproposals (
				id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				user_id     text NOT NULL,
				title       text NOT NULL,
				client_name text NOT NULL DEFAULT '',
				brief       text NOT NULL DEFAULT '',
				body        text NOT NULL DEFAULT '',
				status      text NOT NULL DEFAULT 'draft',
				created_at  timestamptz NOT NULL DEFAULT now(),
				updated_at  timestamptz NOT NULL DEFAULT now()
			)`, tablePrefix),
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	statements := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %sproposals`, tablePrefix),
		fmt.Sprintf(`DROP TABLE IF EXISTS %sinvoice_counters`, tablePrefix),
		fmt.Sprintf(`DROP TABLE IF EXISTS %sinvoices`, tablePrefix),
		fmt.Sprintf(`DROP TABLE IF EXISTS %sassets`, tablePrefix),
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
