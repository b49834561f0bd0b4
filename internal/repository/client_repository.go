package repository

// This file defines client repository methods for CRUD and search.  A
// client is a customer company; created_by records the user who registered
// it and is what write:own is checked against.

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/production-manager/internal/model"
)

// ErrClientNotFound is returned when a client cannot be found in the DB.
var ErrClientNotFound = errors.New("client not found")

// ClientRepo encapsulates all database queries related to clients.
type ClientRepo struct {
	db *sql.DB
}

// NewClientRepo constructs a ClientRepo with the provided DB handle.
func NewClientRepo(db *sql.DB) *ClientRepo {
	return &ClientRepo{db: db}
}

const clientColumns = `id, nombre, rfc, COALESCE(email, ''), COALESCE(telefono, ''), COALESCE(direccion, ''),
	COALESCE(contacto_nombre, ''), COALESCE(contacto_email, ''), created_by, created_at, updated_at`

func scanClient(s rowScanner) (*model.Client, error) {
	var c model.Client
	if err := s.Scan(&c.ID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.Address,
		&c.ContactName, &c.ContactEmail, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// likePattern escapes LIKE wildcards in a user search term.
func likePattern(q string) string {
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
	return "%" + q + "%"
}

// List returns one page of clients ordered by name plus the total number
// of matches.  search filters on name, RFC and email.
func (r *ClientRepo) List(ctx context.Context, search string, limit, offset int) ([]*model.Client, int, error) {
	where := ""
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		where = " WHERE nombre LIKE ? OR rfc LIKE ? OR email LIKE ?"
		p := likePattern(s)
		args = append(args, p, p, p)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clientes"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+clientColumns+" FROM clientes"+where+" ORDER BY nombre, id LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*model.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID fetches a client.  It returns ErrClientNotFound if no row matches.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (*model.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, "SELECT "+clientColumns+" FROM clientes WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	return c, err
}

// Create inserts c and reloads it so timestamps are populated.  A
// duplicate RFC yields ErrConflict.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	const q = `INSERT INTO clientes
		(nombre, rfc, email, telefono, direccion, contacto_nombre, contacto_email, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Name, strings.ToUpper(c.TaxID), c.Email, c.Phone, c.Address,
		c.ContactName, c.ContactEmail, c.CreatedBy)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*c = *fresh
	return nil
}

// Update overwrites the editable fields of client c.ID.  When ownerID is
// non-zero the client must have been created by that user, otherwise
// ErrForbidden is returned.
func (r *ClientRepo) Update(ctx context.Context, c *model.Client, ownerID uint64) error {
	current, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if ownerID != 0 && current.CreatedBy != ownerID {
		return ErrForbidden
	}
	const q = `UPDATE clientes
		SET nombre = ?, rfc = ?, email = ?, telefono = ?, direccion = ?,
		    contacto_nombre = ?, contacto_email = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, c.Name, strings.ToUpper(c.TaxID), c.Email, c.Phone, c.Address,
		c.ContactName, c.ContactEmail, c.ID); err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	fresh, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *fresh
	return nil
}

// Delete removes a client.  Clients still referenced by orders or sales
// yield ErrConflict.
func (r *ClientRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM clientes WHERE id = ?", id)
	if err != nil {
		if isReferenced(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClientNotFound
	}
	return nil
}
