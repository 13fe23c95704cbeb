package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/iliyamo/connection-monitor/internal/database"
	"github.com/iliyamo/connection-monitor/internal/model"
)

// SnapshotRepo loads and saves the whole dataset at once.  The store keeps
// the live copy; a repo only sees complete datasets.
type SnapshotRepo interface {
	LoadAll(ctx context.Context) (model.Dataset, error)
	SaveAll(ctx context.Context, ds model.Dataset) error
}

// MySQLSnapshotRepo stores the dataset across the addresses, connections,
// connection_photos and connection_schedules tables.  Every table carries
// a position column so LoadAll returns rows in their saved order.
type MySQLSnapshotRepo struct{ DB *sql.DB }

func NewMySQLSnapshotRepo(db *sql.DB) *MySQLSnapshotRepo { return &MySQLSnapshotRepo{DB: db} }

// LoadAll reads every table.  An empty database yields an empty dataset.
func (r *MySQLSnapshotRepo) LoadAll(ctx context.Context) (model.Dataset, error) {
	ds := model.Dataset{Connections: []model.Connection{}, Addresses: []model.Address{}}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, street, building FROM addresses ORDER BY position")
	if err != nil {
		return ds, err
	}
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.Street, &a.Building); err != nil {
			rows.Close()
			return ds, err
		}
		ds.Addresses = append(ds.Addresses, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ds, err
	}

	rows, err = r.DB.QueryContext(ctx, `SELECT id, client_name, address, office, connection_type, status,
		speed, price, contact, last_check, notes FROM connections ORDER BY position`)
	if err != nil {
		return ds, err
	}
	index := map[string]int{}
	for rows.Next() {
		var (
			c                  model.Connection
			ctype, status, spd string
		)
		if err := rows.Scan(&c.ID, &c.ClientName, &c.Address, &c.Office, &ctype, &status,
			&spd, &c.Price, &c.Contact, &c.LastCheck, &c.Notes); err != nil {
			rows.Close()
			return ds, err
		}
		c.ConnectionType = model.ConnectionType(ctype)
		c.Status = model.Status(status)
		c.Speed = model.Speed(spd)
		c.Photos = []model.Photo{}
		c.Schedules = []model.Schedule{}
		index[c.ID] = len(ds.Connections)
		ds.Connections = append(ds.Connections, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ds, err
	}

	rows, err = r.DB.QueryContext(ctx, `SELECT connection_id, id, url, caption, created_at
		FROM connection_photos ORDER BY connection_id, position`)
	if err != nil {
		return ds, err
	}
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(&p.ConnectionID, &p.ID, &p.URL, &p.Caption, &p.CreatedAt); err != nil {
			rows.Close()
			return ds, err
		}
		if i, ok := index[p.ConnectionID]; ok {
			ds.Connections[i].Photos = append(ds.Connections[i].Photos, p)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ds, err
	}

	rows, err = r.DB.QueryContext(ctx, `SELECT connection_id, id, title, date, type, description, status
		FROM connection_schedules ORDER BY connection_id, position`)
	if err != nil {
		return ds, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			s           model.Schedule
			typ, status string
		)
		if err := rows.Scan(&s.ConnectionID, &s.ID, &s.Title, &s.Date, &typ, &s.Description, &status); err != nil {
			return ds, err
		}
		s.Type = model.ScheduleType(typ)
		s.Status = model.ScheduleStatus(status)
		if i, ok := index[s.ConnectionID]; ok {
			ds.Connections[i].Schedules = append(ds.Connections[i].Schedules, s)
		}
	}
	return ds, rows.Err()
}

// SaveAll replaces every row in one transaction.
func (r *MySQLSnapshotRepo) SaveAll(ctx context.Context, ds model.Dataset) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"connection_schedules", "connection_photos", "connections", "addresses"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for i, a := range ds.Addresses {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO addresses (id, position, street, building) VALUES (?,?,?,?)",
			a.ID, i, a.Street, a.Building); err != nil {
			return err
		}
	}
	for i, c := range ds.Connections {
		if _, err = tx.ExecContext(ctx, `INSERT INTO connections (id, position, client_name, address, office,
			connection_type, status, speed, price, contact, last_check, notes) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			c.ID, i, c.ClientName, c.Address, c.Office, string(c.ConnectionType), string(c.Status),
			string(c.Speed), c.Price, c.Contact, c.LastCheck.UTC(), c.Notes); err != nil {
			return err
		}
		for j, p := range c.Photos {
			if _, err = tx.ExecContext(ctx, `INSERT INTO connection_photos (connection_id, id, position, url,
				caption, created_at) VALUES (?,?,?,?,?,?)`,
				c.ID, p.ID, j, p.URL, p.Caption, p.CreatedAt.UTC()); err != nil {
				return err
			}
		}
		for j, s := range c.Schedules {
			if _, err = tx.ExecContext(ctx, `INSERT INTO connection_schedules (connection_id, id, position, title,
				date, type, description, status) VALUES (?,?,?,?,?,?,?,?)`,
				c.ID, s.ID, j, s.Title, s.Date.UTC(), string(s.Type), s.Description, string(s.Status)); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// currentKey holds the JSON-encoded dataset inside database.SnapshotsBucket.
var currentKey = []byte("current")

// BoltSnapshotRepo keeps the dataset as one JSON document in a bbolt file.
type BoltSnapshotRepo struct{ DB *bbolt.DB }

func NewBoltSnapshotRepo(db *bbolt.DB) *BoltSnapshotRepo { return &BoltSnapshotRepo{DB: db} }

// LoadAll returns an empty dataset when nothing was saved yet.
func (r *BoltSnapshotRepo) LoadAll(_ context.Context) (model.Dataset, error) {
	ds := model.Dataset{Connections: []model.Connection{}, Addresses: []model.Address{}}
	err := r.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(database.SnapshotsBucket)
		if b == nil {
			return nil
		}
		data := b.Get(currentKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &ds)
	})
	return ds, err
}

func (r *BoltSnapshotRepo) SaveAll(_ context.Context, ds model.Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return err
	}
	return r.DB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(database.SnapshotsBucket)
		if err != nil {
			return err
		}
		return b.Put(currentKey, data)
	})
}

// MemorySnapshotRepo keeps the last saved dataset in memory.  It backs the
// memory storage driver, so a running server behaves the same under every
// driver, and the listener tests.
type MemorySnapshotRepo struct {
	mu    sync.Mutex
	saved *model.Dataset
	saves int
}

// Saves reports how many times SaveAll succeeded.
func (r *MemorySnapshotRepo) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *MemorySnapshotRepo) LoadAll(_ context.Context) (model.Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		return model.Dataset{Connections: []model.Connection{}, Addresses: []model.Address{}}, nil
	}
	return *r.saved, nil
}

func (r *MemorySnapshotRepo) SaveAll(_ context.Context, ds model.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = &ds
	r.saves++
	return nil
}
