package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebase/server/internal/domain/catalog"
)

var (
	_ catalog.CategoryRepository = (*CategoryRepository)(nil)
	_ catalog.SupplierRepository = (*SupplierRepository)(nil)
	_ catalog.ItemRepository     = (*ItemRepository)(nil)
)

type CategoryRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *CategoryRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const categoryColumns = `id, name, code, description, organization_id, created_at, updated_at`

func scanCategory(row pgx.Row) (*catalog.Category, error) {
	var c catalog.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.OrganizationID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context, filters catalog.CategoryFilters) ([]catalog.Category, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+categoryColumns+`
  FROM categories
 WHERE ($1::bigint IS NULL OR organization_id = $1)
   AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%' OR code ILIKE '%' || $2 || '%')
 ORDER BY id
`, filters.OrganizationID, nilIfEmpty(filters.Query))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*catalog.Category, error) {
	c, err := scanCategory(r.queryer().QueryRow(ctx, `
SELECT `+categoryColumns+` FROM categories WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (r *CategoryRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]catalog.Category, error) {
	if len(ids) == 0 {
		return map[int64]catalog.Category{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+categoryColumns+` FROM categories WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get categories by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]catalog.Category, len(ids))
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out[c.ID] = *c
	}
	return out, rows.Err()
}

func (r *CategoryRepository) Create(ctx context.Context, c catalog.Category) (*catalog.Category, error) {
	created, err := scanCategory(r.queryer().QueryRow(ctx, `
INSERT INTO categories (name, code, description, organization_id)
VALUES ($1, $2, $3, $4)
RETURNING `+categoryColumns+`
`, c.Name, c.Code, c.Description, c.OrganizationID))
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c catalog.Category) (*catalog.Category, error) {
	updated, err := scanCategory(r.queryer().QueryRow(ctx, `
UPDATE categories
   SET name = $2, code = $3, description = $4, organization_id = $5, updated_at = now()
 WHERE id = $1
RETURNING `+categoryColumns+`
`, c.ID, c.Name, c.Code, c.Description, c.OrganizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return updated, nil
}

func (r *CategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category exists %d: %w", id, err)
	}
	return exists, nil
}

type SupplierRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *SupplierRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const supplierColumns = `id, name, code, description, contact_name, contact_email, contact_phone, organization_id, created_at, updated_at`

func scanSupplier(row pgx.Row) (*catalog.Supplier, error) {
	var s catalog.Supplier
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Code,
		&s.Description,
		&s.ContactName,
		&s.ContactEmail,
		&s.ContactPhone,
		&s.OrganizationID,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepository) List(ctx context.Context, filters catalog.SupplierFilters) ([]catalog.Supplier, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+supplierColumns+`
  FROM suppliers
 WHERE ($1::bigint IS NULL OR organization_id = $1)
   AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%' OR code ILIKE '%' || $2 || '%')
 ORDER BY id
`, filters.OrganizationID, nilIfEmpty(filters.Query))
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var out []catalog.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *SupplierRepository) GetByID(ctx context.Context, id int64) (*catalog.Supplier, error) {
	s, err := scanSupplier(r.queryer().QueryRow(ctx, `
SELECT `+supplierColumns+` FROM suppliers WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("get supplier %d: %w", id, err)
	}
	return s, nil
}

func (r *SupplierRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]catalog.Supplier, error) {
	if len(ids) == 0 {
		return map[int64]catalog.Supplier{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+supplierColumns+` FROM suppliers WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get suppliers by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]catalog.Supplier, len(ids))
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		out[s.ID] = *s
	}
	return out, rows.Err()
}

func (r *SupplierRepository) Create(ctx context.Context, s catalog.Supplier) (*catalog.Supplier, error) {
	created, err := scanSupplier(r.queryer().QueryRow(ctx, `
INSERT INTO suppliers (name, code, description, contact_name, contact_email, contact_phone, organization_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+supplierColumns+`
`, s.Name, s.Code, s.Description, s.ContactName, s.ContactEmail, s.ContactPhone, s.OrganizationID))
	if err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return created, nil
}

func (r *SupplierRepository) Update(ctx context.Context, s catalog.Supplier) (*catalog.Supplier, error) {
	updated, err := scanSupplier(r.queryer().QueryRow(ctx, `
UPDATE suppliers
   SET name = $2, code = $3, description = $4, contact_name = $5, contact_email = $6,
       contact_phone = $7, organization_id = $8, updated_at = now()
 WHERE id = $1
RETURNING `+supplierColumns+`
`, s.ID, s.Name, s.Code, s.Description, s.ContactName, s.ContactEmail, s.ContactPhone, s.OrganizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("update supplier %d: %w", s.ID, err)
	}
	return updated, nil
}

func (r *SupplierRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("supplier exists %d: %w", id, err)
	}
	return exists, nil
}

type ItemRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *ItemRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const itemColumns = `id, sku, name, description, barcode, category_id, supplier_id, length, width, height, weight, reorder_point, reorder_quantity, organization_id, created_at, updated_at`

func scanItem(row pgx.Row) (*catalog.Item, error) {
	var item catalog.Item
	if err := row.Scan(
		&item.ID,
		&item.SKU,
		&item.Name,
		&item.Description,
		&item.Barcode,
		&item.CategoryID,
		&item.SupplierID,
		&item.Length,
		&item.Width,
		&item.Height,
		&item.Weight,
		&item.ReorderPoint,
		&item.ReorderQuantity,
		&item.OrganizationID,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) List(ctx context.Context, filters catalog.ItemFilters) ([]catalog.Item, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+itemColumns+`
  FROM items
 WHERE ($1::bigint IS NULL OR organization_id = $1)
   AND ($2::bigint IS NULL OR category_id = $2)
   AND ($3::bigint IS NULL OR supplier_id = $3)
   AND ($4::text IS NULL OR sku ILIKE '%' || $4 || '%' OR name ILIKE '%' || $4 || '%' OR barcode ILIKE '%' || $4 || '%')
 ORDER BY id
`, filters.OrganizationID, filters.CategoryID, filters.SupplierID, nilIfEmpty(filters.Query))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var out []catalog.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*catalog.Item, error) {
	item, err := scanItem(r.queryer().QueryRow(ctx, `
SELECT `+itemColumns+` FROM items WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

func (r *ItemRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]catalog.Item, error) {
	if len(ids) == 0 {
		return map[int64]catalog.Item{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+itemColumns+` FROM items WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get items by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]catalog.Item, len(ids))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out[item.ID] = *item
	}
	return out, rows.Err()
}

func (r *ItemRepository) GetBySKU(ctx context.Context, organizationID int64, sku string) (*catalog.Item, error) {
	item, err := scanItem(r.queryer().QueryRow(ctx, `
SELECT `+itemColumns+` FROM items WHERE organization_id = $1 AND sku = $2
`, organizationID, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item by sku %q: %w", sku, err)
	}
	return item, nil
}

func (r *ItemRepository) Create(ctx context.Context, item catalog.Item) (*catalog.Item, error) {
	created, err := scanItem(r.queryer().QueryRow(ctx, `
INSERT INTO items (sku, name, description, barcode, category_id, supplier_id,
                   length, width, height, weight, reorder_point, reorder_quantity, organization_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING `+itemColumns+`
`, item.SKU, item.Name, item.Description, item.Barcode, item.CategoryID, item.SupplierID,
		item.Length, item.Width, item.Height, item.Weight, item.ReorderPoint, item.ReorderQuantity, item.OrganizationID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, catalog.ErrSKUTaken
		}
		return nil, fmt.Errorf("create item: %w", err)
	}
	return created, nil
}

func (r *ItemRepository) Update(ctx context.Context, item catalog.Item) (*catalog.Item, error) {
	updated, err := scanItem(r.queryer().QueryRow(ctx, `
UPDATE items
   SET sku = $2, name = $3, description = $4, barcode = $5, category_id = $6, supplier_id = $7,
       length = $8, width = $9, height = $10, weight = $11, reorder_point = $12,
       reorder_quantity = $13, organization_id = $14, updated_at = now()
 WHERE id = $1
RETURNING `+itemColumns+`
`, item.ID, item.SKU, item.Name, item.Description, item.Barcode, item.CategoryID, item.SupplierID,
		item.Length, item.Width, item.Height, item.Weight, item.ReorderPoint, item.ReorderQuantity, item.OrganizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrItemNotFound
		}
		if isUniqueViolation(err) {
			return nil, catalog.ErrSKUTaken
		}
		return nil, fmt.Errorf("update item %d: %w", item.ID, err)
	}
	return updated, nil
}

func (r *ItemRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("item exists %d: %w", id, err)
	}
	return exists, nil
}
