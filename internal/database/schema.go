package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates the POS tables in dependency order.  Two of
// the unique keys carry correctness, not just deduplication:
//
//   - orders.open_table_id is set to the table id while the order is
//     OPEN and NULLed when it is paid.  UNIQUE(open_table_id) means two
//     concurrent "open this table" requests cannot both insert; the
//     loser sees a duplicate-key error and re-reads the winner's order.
//   - UNIQUE(order_id, item_id) on order_items backs the
//     INSERT ... ON DUPLICATE KEY UPDATE merge of repeated additions.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS areas (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		sort INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS cafe_tables (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		area_id BIGINT UNSIGNED NOT NULL,
		name VARCHAR(100) NOT NULL,
		status ENUM('EMPTY','IN_USE') NOT NULL DEFAULT 'EMPTY',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_tables_area (area_id),
		CONSTRAINT fk_tables_area FOREIGN KEY (area_id) REFERENCES areas(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS menu_groups (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		sort INT NOT NULL DEFAULT 0
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS menu_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		group_id BIGINT UNSIGNED NOT NULL,
		name VARCHAR(150) NOT NULL,
		unit_price BIGINT NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		sort INT NOT NULL DEFAULT 0,
		KEY idx_items_group (group_id),
		CONSTRAINT fk_items_group FOREIGN KEY (group_id) REFERENCES menu_groups(id) ON DELETE CASCADE,
		CONSTRAINT chk_items_price CHECK (unit_price >= 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		table_id BIGINT UNSIGNED NOT NULL,
		table_name VARCHAR(100) NOT NULL,
		status ENUM('OPEN','PAID') NOT NULL DEFAULT 'OPEN',
		open_table_id BIGINT UNSIGNED NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_orders_open_table (open_table_id),
		KEY idx_orders_table (table_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT UNSIGNED NOT NULL,
		item_id BIGINT UNSIGNED NOT NULL,
		item_name VARCHAR(150) NOT NULL,
		unit_price BIGINT NOT NULL,
		qty BIGINT NOT NULL,
		amount BIGINT NOT NULL,
		UNIQUE KEY uq_order_item (order_id, item_id),
		CONSTRAINT fk_lines_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
		CONSTRAINT chk_lines_qty CHECK (qty >= 1)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS payments (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT UNSIGNED NOT NULL,
		method ENUM('CASH','TRANSFER') NOT NULL,
		paid_amount BIGINT NOT NULL,
		paid_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_payments_order (order_id),
		CONSTRAINT fk_payments_order FOREIGN KEY (order_id) REFERENCES orders(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates all tables when they do not exist yet.  It is
// run once at startup; statements are idempotent so restarting the
// server against an existing database is safe.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
