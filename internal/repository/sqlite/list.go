package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/rs/xid"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/model"
	"github.com/sakif/shopping-list/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// CreateList inserts a new list and its members in one transaction.
//
// ID GENERATION WITH xid:
// IDs are assigned here, never by the caller: 20 chars, URL-safe, sortable by
// creation time. After CreateList returns, list carries its ID and timestamps.
func (db *DB) CreateList(ctx context.Context, list *model.ShoppingList) error {
	list.ID = xid.New().String()
	now := time.Now()
	list.CreatedAt = now
	list.UpdatedAt = now
	list.Members = model.NormalizeMembers(list.Owner, list.Members)

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		_, err := db.exec(ctx, tx, db.dialect.Insert(listsTable).Prepared(true).Rows(goqu.Record{
			"id":         list.ID,
			"name":       list.Name,
			"owner":      list.Owner,
			"created_at": list.CreatedAt,
			"updated_at": list.UpdatedAt,
		}))
		if err != nil {
			return err
		}
		return db.writeMembers(ctx, tx, list.ID, list.Members)
	})
	if err != nil {
		return storageError("shoppingListDao.create", err)
	}
	return nil
}

// GetList retrieves a single list (without items) by its ID.
// Returns apperror.ErrNotFound if no list has that ID.
func (db *DB) GetList(ctx context.Context, id string) (*model.ShoppingList, error) {
	row, err := db.queryRow(ctx, db.conn, db.dialect.From(listsTable).Prepared(true).
		Select("id", "name", "owner", "created_at", "updated_at").
		Where(goqu.C("id").Eq(id)))
	if err != nil {
		return nil, storageError("shoppingListDao.get", err)
	}

	var list model.ShoppingList
	if err := row.Scan(&list.ID, &list.Name, &list.Owner, &list.CreatedAt, &list.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("shopping list", id)
		}
		return nil, storageError("shoppingListDao.get", err)
	}

	members, err := db.membersOf(ctx, []string{id})
	if err != nil {
		return nil, storageError("shoppingListDao.get", err)
	}
	list.Members = members[id]
	if list.Members == nil {
		list.Members = []string{}
	}

	return &list, nil
}

// ListLists returns every list, oldest first, with members but without items.
func (db *DB) ListLists(ctx context.Context) ([]model.ShoppingList, error) {
	rows, err := db.query(ctx, db.conn, db.dialect.From(listsTable).Prepared(true).
		Select("id", "name", "owner", "created_at", "updated_at").
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()))
	if err != nil {
		return nil, storageError("shoppingListDao.find", err)
	}
	defer rows.Close()

	lists := make([]model.ShoppingList, 0)
	for rows.Next() {
		var l model.ShoppingList
		if err := rows.Scan(&l.ID, &l.Name, &l.Owner, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, storageError("shoppingListDao.find", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("shoppingListDao.find", err)
	}
	// rows must be closed before the next query: the pool has one connection.
	rows.Close()

	ids := make([]string, len(lists))
	for i := range lists {
		ids[i] = lists[i].ID
	}
	members, err := db.membersOf(ctx, ids)
	if err != nil {
		return nil, storageError("shoppingListDao.find", err)
	}
	for i := range lists {
		lists[i].Members = members[lists[i].ID]
		if lists[i].Members == nil {
			lists[i].Members = []string{}
		}
	}

	return lists, nil
}

// UpdateList rewrites the list's name and members. The owner column is never touched.
func (db *DB) UpdateList(ctx context.Context, list *model.ShoppingList) error {
	list.UpdatedAt = time.Now()
	list.Members = model.NormalizeMembers(list.Owner, list.Members)

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		res, err := db.exec(ctx, tx, db.dialect.Update(listsTable).Prepared(true).
			Set(goqu.Record{"name": list.Name, "updated_at": list.UpdatedAt}).
			Where(goqu.C("id").Eq(list.ID)))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.NotFound("shopping list", list.ID)
		}

		if _, err := db.exec(ctx, tx, db.dialect.Delete(membersTable).Prepared(true).
			Where(goqu.C("list_id").Eq(list.ID))); err != nil {
			return err
		}
		return db.writeMembers(ctx, tx, list.ID, list.Members)
	})
	if err != nil {
		return storageError("shoppingListDao.update", err)
	}
	return nil
}

// DeleteList removes the list, its members and all of its items.
//
// The foreign keys cascade too, but items and members are deleted explicitly
// first so no orphan survives even on a database opened without foreign_keys.
func (db *DB) DeleteList(ctx context.Context, id string) error {
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := db.exec(ctx, tx, db.dialect.Delete(itemsTable).Prepared(true).
			Where(goqu.C("list_id").Eq(id))); err != nil {
			return err
		}
		if _, err := db.exec(ctx, tx, db.dialect.Delete(membersTable).Prepared(true).
			Where(goqu.C("list_id").Eq(id))); err != nil {
			return err
		}
		res, err := db.exec(ctx, tx, db.dialect.Delete(listsTable).Prepared(true).
			Where(goqu.C("id").Eq(id)))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.NotFound("shopping list", id)
		}
		return nil
	})
	if err != nil {
		return storageError("shoppingListDao.delete", err)
	}
	return nil
}

func (db *DB) writeMembers(ctx context.Context, tx *sql.Tx, listID string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	rows := make([]interface{}, len(members))
	for i, m := range members {
		rows[i] = goqu.Record{"list_id": listID, "user_id": m, "position": i}
	}
	_, err := db.exec(ctx, tx, db.dialect.Insert(membersTable).Prepared(true).Rows(rows...))
	return err
}

// membersOf loads the members of every given list, keyed by list ID, each in
// the order they were stored.
func (db *DB) membersOf(ctx context.Context, listIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(listIDs))
	if len(listIDs) == 0 {
		return out, nil
	}

	rows, err := db.query(ctx, db.conn, db.dialect.From(membersTable).Prepared(true).
		Select("list_id", "user_id").
		Where(goqu.C("list_id").In(listIDs)).
		Order(goqu.C("list_id").Asc(), goqu.C("position").Asc()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var listID, userID string
		if err := rows.Scan(&listID, &userID); err != nil {
			return nil, err
		}
		out[listID] = append(out[listID], userID)
	}
	return out, rows.Err()
}
