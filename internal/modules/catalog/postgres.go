package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const productColumns = `id, product_name, description, price, sale_start, sale_end`

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (product_name, description, price, sale_start, sale_end)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		p.ProductName, p.Description, p.Price, nullTime(p.SaleStart), nullTime(p.SaleEnd)).
		Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	var start, end sql.NullTime
	if err := scan(&p.ID, &p.ProductName, &p.Description, &p.Price, &start, &end); err != nil {
		return nil, err
	}
	p.SaleStart = timePtr(start)
	p.SaleEnd = timePtr(end)
	return p, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// buildWhere renders the filter as a WHERE clause with numbered placeholders.
func buildWhere(f ListFilter) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(` WHERE 1=1`)
	args := []interface{}{}
	n := 1
	arg := func(v interface{}) string {
		args = append(args, v)
		s := fmt.Sprintf("$%d", n)
		n++
		return s
	}

	if f.ID != nil {
		b.WriteString(` AND id=` + arg(*f.ID))
	}
	switch f.Sale {
	case SaleActive:
		now := arg(f.Now)
		b.WriteString(` AND sale_start<=` + now + ` AND sale_end>=` + now)
	case SaleEnded:
		now := arg(f.Now)
		b.WriteString(` AND sale_start<` + now + ` AND sale_end<` + now)
	}
	if len(f.SearchFields) > 0 {
		for _, term := range f.SearchTerms {
			p := arg("%" + escapeLike(term) + "%")
			ors := make([]string, 0, len(f.SearchFields))
			for _, field := range f.SearchFields {
				if searchableFields[field] {
					ors = append(ors, field+` ILIKE `+p)
				}
			}
			if len(ors) > 0 {
				b.WriteString(` AND (` + strings.Join(ors, ` OR `) + `)`)
			}
		}
	}
	return b.String(), args
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Product, int, error) {
	where, args := buildWhere(f)

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY id`
	n := len(args) + 1
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, n)
		args = append(args, f.Limit)
		n++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, n)
		args = append(args, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, count, nil
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET product_name=$1, description=$2, price=$3, sale_start=$4, sale_end=$5
		WHERE id=$6`,
		p.ProductName, p.Description, p.Price, nullTime(p.SaleStart), nullTime(p.SaleEnd), p.ID)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return expectOneRow(res)
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// escapeLike escapes LIKE wildcards so search terms match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
