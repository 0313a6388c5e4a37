// Скрипт для локальной БД каталога (CATALOG_SOURCE=postgres)
// Запуск: DATABASE_URL=postgres://... go run scripts/reset_db.go

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

func main() {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Fatal("DATABASE_URL is required")
	}

	fmt.Println("Connecting to database...")
	fmt.Printf("Host: %s\n", extractHost(connStr))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	commands := []string{
		"DROP TABLE IF EXISTS property_amenities CASCADE",
		"DROP TABLE IF EXISTS amenities CASCADE",
		"DROP TABLE IF EXISTS properties CASCADE",
		"DROP TABLE IF EXISTS property_types CASCADE",
		"DROP TABLE IF EXISTS neighborhoods CASCADE",

		`CREATE TABLE neighborhoods (
			id   BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			city TEXT NOT NULL,
			type TEXT NOT NULL
		)`,
		`CREATE TABLE property_types (
			id   BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE amenities (
			id   BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE properties (
			id              BIGSERIAL PRIMARY KEY,
			title           TEXT             NOT NULL,
			description     TEXT,
			street          TEXT,
			number          TEXT,
			status          TEXT             NOT NULL,
			operation       TEXT             NOT NULL,
			currency        TEXT             NOT NULL,
			rooms           DOUBLE PRECISION NOT NULL DEFAULT 0,
			bedrooms        DOUBLE PRECISION NOT NULL DEFAULT 0,
			bathrooms       DOUBLE PRECISION NOT NULL DEFAULT 0,
			area            DOUBLE PRECISION NOT NULL DEFAULT 0,
			covered_area    DOUBLE PRECISION NOT NULL DEFAULT 0,
			price           DOUBLE PRECISION NOT NULL DEFAULT 0,
			expenses        DOUBLE PRECISION,
			show_price      BOOLEAN          NOT NULL DEFAULT TRUE,
			credit          BOOLEAN          NOT NULL DEFAULT FALSE,
			financing       BOOLEAN          NOT NULL DEFAULT FALSE,
			outstanding     BOOLEAN          NOT NULL DEFAULT FALSE,
			neighborhood_id BIGINT           NOT NULL REFERENCES neighborhoods(id),
			type_id         BIGINT           NOT NULL REFERENCES property_types(id),
			main_image      TEXT,
			created_at      TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE property_amenities (
			property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			amenity_id  BIGINT NOT NULL REFERENCES amenities(id) ON DELETE CASCADE,
			PRIMARY KEY (property_id, amenity_id)
		)`,
		"CREATE INDEX idx_properties_neighborhood ON properties(neighborhood_id)",
		"CREATE INDEX idx_properties_type ON properties(type_id)",

		`INSERT INTO neighborhoods (id, name, city, type) VALUES
			(1, 'Palihue', 'Bahía Blanca', 'abierto'),
			(2, 'Centro', 'Bahía Blanca', 'abierto'),
			(3, 'Los Álamos', 'Monte Hermoso', 'cerrado')`,
		`INSERT INTO property_types (id, name) VALUES (1, 'Casa'), (2, 'Departamento'), (3, 'Lote')`,
		`INSERT INTO amenities (id, name) VALUES (1, 'Pileta'), (2, 'Ascensor'), (3, 'Quincho')`,
		`INSERT INTO properties
			(id, title, description, status, operation, currency, rooms, bedrooms, bathrooms, area, covered_area, price, credit, financing, neighborhood_id, type_id)
		VALUES
			(1, 'Casa con pileta en Palihue', 'Casa de 3 dormitorios con parque', 'DISPONIBLE', 'VENTA', 'USD', 4, 3, 2, 450, 210, 185000, TRUE, FALSE, 1, 1),
			(2, 'Departamento céntrico', 'Dos ambientes a estrenar', 'DISPONIBLE', 'ALQUILER', 'ARS', 2, 1, 1, 55, 50, 450000, FALSE, FALSE, 2, 2),
			(3, 'Lote en barrio cerrado', 'Lote de 800 m2 con seguridad', 'DISPONIBLE', 'VENTA', 'USD', 0, 0, 0, 800, 0, 42000, FALSE, TRUE, 3, 3),
			(4, 'Casa vendida en Centro', 'Reciclada a nuevo', 'VENDIDO', 'VENTA', 'USD', 3, 2, 1, 180, 140, 98000, FALSE, FALSE, 2, 1)`,
		`INSERT INTO property_amenities (property_id, amenity_id) VALUES (1, 1), (1, 3), (2, 2)`,
		"SELECT setval('neighborhoods_id_seq', (SELECT MAX(id) FROM neighborhoods))",
		"SELECT setval('property_types_id_seq', (SELECT MAX(id) FROM property_types))",
		"SELECT setval('amenities_id_seq', (SELECT MAX(id) FROM amenities))",
		"SELECT setval('properties_id_seq', (SELECT MAX(id) FROM properties))",
	}

	for i, cmd := range commands {
		if _, err := conn.Exec(ctx, cmd); err != nil {
			log.Fatalf("Command %d failed: %v\n%s", i+1, err, firstLine(cmd))
		}
		fmt.Printf("  [%d/%d] %s\n", i+1, len(commands), firstLine(cmd))
	}

	var propCount int
	if err := conn.QueryRow(ctx, "SELECT count(*) FROM properties").Scan(&propCount); err != nil {
		log.Fatalf("Verification failed: %v", err)
	}
	fmt.Printf("\nProperties: %d\n", propCount)
	fmt.Println("=== CATALOG RESET COMPLETE ===")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func extractHost(connStr string) string {
	parts := strings.Split(connStr, "@")
	if len(parts) > 1 {
		return strings.Split(parts[1], "/")[0]
	}
	return "unknown"
}
