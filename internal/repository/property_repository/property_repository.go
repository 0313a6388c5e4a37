package property_repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"property_search/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PropertyRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewPropertyRepository(db *pgxpool.Pool, log *slog.Logger) *PropertyRepository {
	return &PropertyRepository{db: db, log: log}
}

// selectProperty общая часть выборки объекта с баррио, типом и характеристиками.
const selectProperty = `
	SELECT
		p.id, p.title, COALESCE(p.description, ''), COALESCE(p.street, ''), COALESCE(p.number, ''),
		p.status, p.operation, p.currency,
		p.rooms, p.bedrooms, p.bathrooms, p.area, p.covered_area,
		p.price, p.expenses, p.show_price, p.credit, p.financing, p.outstanding,
		n.id, n.name, n.city, n.type,
		t.id, t.name,
		COALESCE(p.main_image, ''), p.created_at,
		COALESCE(
			(SELECT json_agg(json_build_object('id', a.id, 'name', a.name) ORDER BY a.id)
			 FROM property_amenities pa
			 JOIN amenities a ON a.id = pa.amenity_id
			 WHERE pa.property_id = p.id),
			'[]'
		)
	FROM properties p
	JOIN neighborhoods n ON n.id = p.neighborhood_id
	JOIN property_types t ON t.id = p.type_id
`

// LoadCatalog загружает весь каталог. Видимость по статусу решает поиск, не репозиторий.
func (r *PropertyRepository) LoadCatalog(ctx context.Context) ([]domain.Property, error) {
	const op = "PropertyRepository.LoadCatalog"

	rows, err := r.db.Query(ctx, selectProperty+` ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.log.Debug("catalog loaded from database",
		slog.String("op", op),
		slog.Int("count", len(properties)),
	)
	return properties, nil
}

// FetchPropertyByID получает объект по ID.
func (r *PropertyRepository) FetchPropertyByID(ctx context.Context, id int64) (domain.Property, error) {
	const op = "PropertyRepository.FetchPropertyByID"

	p, err := scanProperty(r.db.QueryRow(ctx, selectProperty+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Property{}, fmt.Errorf("%s: %w", op, domain.ErrPropertyNotFound)
		}
		return domain.Property{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func scanProperty(row pgx.Row) (domain.Property, error) {
	var (
		p         domain.Property
		operation string
		currency  string
		createdAt time.Time
		amenities []byte
	)

	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Street, &p.Number,
		&p.Status, &operation, &currency,
		&p.Rooms, &p.Bedrooms, &p.Bathrooms, &p.Area, &p.CoveredArea,
		&p.Price, &p.Expenses, &p.ShowPrice, &p.Credit, &p.Financing, &p.Outstanding,
		&p.Neighborhood.ID, &p.Neighborhood.Name, &p.Neighborhood.City, &p.Neighborhood.Type,
		&p.Type.ID, &p.Type.Name,
		&p.MainImage, &createdAt,
		&amenities,
	)
	if err != nil {
		return domain.Property{}, err
	}

	p.Operation = domain.ParseOperation(operation)
	p.Currency = domain.ParseCurrency(currency)
	p.Date = createdAt.Format(time.DateOnly)

	p.Amenities, err = decodeAmenities(amenities)
	if err != nil {
		return domain.Property{}, err
	}
	return p, nil
}

// decodeAmenities разбирает json_agg характеристик.
func decodeAmenities(raw []byte) ([]domain.Amenity, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var amenities []domain.Amenity
	if err := json.Unmarshal(raw, &amenities); err != nil {
		return nil, fmt.Errorf("decode amenities: %w", err)
	}
	if len(amenities) == 0 {
		return nil, nil
	}
	return amenities, nil
}
