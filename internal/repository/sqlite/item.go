package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/rs/xid"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/model"
)

var itemColumns = []interface{}{"id", "list_id", "name", "done", "created_at", "updated_at"}

// CreateItem inserts a new item under item.ListID.
// The list must exist: the foreign key rejects orphans.
func (db *DB) CreateItem(ctx context.Context, item *model.Item) error {
	item.ID = xid.New().String()
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := db.exec(ctx, db.conn, db.dialect.Insert(itemsTable).Prepared(true).Rows(goqu.Record{
		"id":         item.ID,
		"list_id":    item.ListID,
		"name":       item.Name,
		"done":       item.Done,
		"created_at": item.CreatedAt,
		"updated_at": item.UpdatedAt,
	}))
	if err != nil {
		return storageError("itemDao.create", err)
	}
	return nil
}

// GetItem retrieves an item by ID, scoped to its owning list.
func (db *DB) GetItem(ctx context.Context, listID, itemID string) (*model.Item, error) {
	row, err := db.queryRow(ctx, db.conn, db.dialect.From(itemsTable).Prepared(true).
		Select(itemColumns...).
		Where(goqu.C("id").Eq(itemID), goqu.C("list_id").Eq(listID)))
	if err != nil {
		return nil, storageError("itemDao.get", err)
	}

	var it model.Item
	if err := row.Scan(&it.ID, &it.ListID, &it.Name, &it.Done, &it.CreatedAt, &it.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("item", itemID)
		}
		return nil, storageError("itemDao.get", err)
	}
	return &it, nil
}

// ListItems returns the list's items in insertion order (SQLite rowid order).
func (db *DB) ListItems(ctx context.Context, listID string) ([]model.Item, error) {
	rows, err := db.query(ctx, db.conn, db.dialect.From(itemsTable).Prepared(true).
		Select(itemColumns...).
		Where(goqu.C("list_id").Eq(listID)).
		Order(goqu.L("rowid").Asc()))
	if err != nil {
		return nil, storageError("itemDao.find", err)
	}
	defer rows.Close()

	items := make([]model.Item, 0)
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.ListID, &it.Name, &it.Done, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, storageError("itemDao.find", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("itemDao.find", err)
	}
	return items, nil
}

// UpdateItem writes name and done. The owning list is part of the WHERE clause,
// so an item can never be moved to another list.
func (db *DB) UpdateItem(ctx context.Context, item *model.Item) error {
	item.UpdatedAt = time.Now()

	res, err := db.exec(ctx, db.conn, db.dialect.Update(itemsTable).Prepared(true).
		Set(goqu.Record{"name": item.Name, "done": item.Done, "updated_at": item.UpdatedAt}).
		Where(goqu.C("id").Eq(item.ID), goqu.C("list_id").Eq(item.ListID)))
	if err != nil {
		return storageError("itemDao.update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageError("itemDao.update", err)
	}
	if n == 0 {
		return apperror.NotFound("item", item.ID)
	}
	return nil
}

// DeleteItem removes one item from its list.
func (db *DB) DeleteItem(ctx context.Context, listID, itemID string) error {
	res, err := db.exec(ctx, db.conn, db.dialect.Delete(itemsTable).Prepared(true).
		Where(goqu.C("id").Eq(itemID), goqu.C("list_id").Eq(listID)))
	if err != nil {
		return storageError("itemDao.delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageError("itemDao.delete", err)
	}
	if n == 0 {
		return apperror.NotFound("item", itemID)
	}
	return nil
}
