package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

type table struct {
	name  string
	query string
}

var schema = []table{
	{"Users", `
	CREATE TABLE IF NOT EXISTS Users (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		email VARCHAR(190) NOT NULL UNIQUE,
		passwordHash VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`},
	{"Restaurants", `
	CREATE TABLE IF NOT EXISTS Restaurants (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		address VARCHAR(255) NOT NULL DEFAULT '',
		rating DECIMAL(3,2) NOT NULL DEFAULT 0.00,
		reviewCount INT NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`},
	{"MenuItems", `
	CREATE TABLE IF NOT EXISTS MenuItems (
		id CHAR(36) NOT NULL PRIMARY KEY,
		restaurantId CHAR(36) NOT NULL,
		name VARCHAR(150) NOT NULL,
		description TEXT,
		price DECIMAL(10,2) NOT NULL,
		isAvailable TINYINT(1) NOT NULL DEFAULT 1,
		isDeleted TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_restaurant (restaurantId)
	)`},
	{"Orders", `
	CREATE TABLE IF NOT EXISTS Orders (
		id CHAR(36) NOT NULL PRIMARY KEY,
		customerId CHAR(36) NOT NULL,
		restaurantId CHAR(36) NOT NULL,
		riderId CHAR(36) NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		total DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		deliveryAddress VARCHAR(255) NOT NULL DEFAULT '',
		deliveryLat DOUBLE NULL,
		deliveryLng DOUBLE NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_customer (customerId),
		INDEX idx_restaurant (restaurantId),
		INDEX idx_rider (riderId),
		INDEX idx_status_rider (status, riderId)
	)`},
	{"OrderItems", `
	CREATE TABLE IF NOT EXISTS OrderItems (
		id CHAR(36) NOT NULL PRIMARY KEY,
		orderId CHAR(36) NOT NULL,
		menuItemId CHAR(36) NOT NULL,
		quantity INT NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		position INT NOT NULL DEFAULT 0,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		INDEX idx_order (orderId)
	)`},
	{"OrderStatusEvents", `
	CREATE TABLE IF NOT EXISTS OrderStatusEvents (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId CHAR(36) NOT NULL,
		fromStatus VARCHAR(20) NOT NULL,
		toStatus VARCHAR(20) NOT NULL,
		actorId CHAR(36) NOT NULL,
		actorRole VARCHAR(20) NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_order (orderId)
	)`},
	{"Reviews", `
	CREATE TABLE IF NOT EXISTS Reviews (
		id CHAR(36) NOT NULL PRIMARY KEY,
		orderId CHAR(36) NOT NULL UNIQUE,
		customerId CHAR(36) NOT NULL,
		restaurantId CHAR(36) NOT NULL,
		rating TINYINT NOT NULL,
		comment TEXT,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_restaurant (restaurantId)
	)`},
}

// Tables lists table names in creation order. Children come after parents.
func Tables() []string {
	names := make([]string, len(schema))
	for i, t := range schema {
		names[i] = t.name
	}
	return names
}

// Migrate creates any missing table. It never alters existing ones.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, t := range schema {
		if _, err := db.ExecContext(ctx, t.query); err != nil {
			return fmt.Errorf("creating table %s: %w", t.name, err)
		}
	}
	return nil
}
