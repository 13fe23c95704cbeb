package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"go.etcd.io/bbolt"
)

// BoltSchemaVersion is the layout version written under SchemaVersionKey.
const BoltSchemaVersion = 1

// Bucket and key names of the bolt layout.
var (
	SnapshotsBucket  = []byte("snapshots")
	SchemaVersionKey = []byte("schema_version")
)

// OpenBolt opens (or creates) the bbolt file at path, makes sure the
// snapshots bucket exists and records the schema version.
func OpenBolt(path string) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(SnapshotsBucket)
		if err != nil {
			return err
		}
		current := 0
		if data := b.Get(SchemaVersionKey); data != nil {
			if err := json.Unmarshal(data, &current); err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
		}
		if current > BoltSchemaVersion {
			return fmt.Errorf("bolt schema version %d is newer than supported %d", current, BoltSchemaVersion)
		}
		if current < BoltSchemaVersion {
			log.Infof("bolt schema version: %d -> %d", current, BoltSchemaVersion)
		}
		v, _ := json.Marshal(BoltSchemaVersion)
		return b.Put(SchemaVersionKey, v)
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
