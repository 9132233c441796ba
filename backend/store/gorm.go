package store

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRow is the postgres row behind every document of every collection.
type documentRow struct {
	ID         string         `gorm:"primaryKey;type:varchar(64)"`
	Collection string         `gorm:"type:varchar(64);not null;index"`
	Data       datatypes.JSON `gorm:"type:jsonb;not null;index:idx_documents_data,type:gin"`
	CreatedAt  time.Time      `gorm:"not null;index"`
	UpdatedAt  time.Time      `gorm:"not null"`
}

func (documentRow) TableName() string { return "documents" }

func (row documentRow) document() (document, error) {
	doc := make(document)
	if err := json.Unmarshal(row.Data, &doc); err != nil {
		return nil, errors.Wrapf(err, "decoding %s/%s", row.Collection, row.ID)
	}
	return doc, nil
}

// GormStore keeps documents in a single jsonb table through gorm.
type GormStore struct {
	db *gorm.DB
}

var (
	_ Store   = (*GormStore)(nil)
	_ Batcher = (*GormStore)(nil)
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the documents table and its indexes.
func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(&documentRow{}), "migrating documents")
}

func (s *GormStore) Create(ctx context.Context, collection string, v interface{}) (string, error) {
	doc, id, err := prepareNew(v)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "encoding document")
	}

	now := time.Now().UTC()
	row := documentRow{ID: id, Collection: collection, Data: datatypes.JSON(data), CreatedAt: now, UpdatedAt: now}
	if err = s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", errors.Wrapf(err, "creating %s document", collection)
	}
	return id, nil
}

func (s *GormStore) Get(ctx context.Context, collection, id string, dest interface{}) error {
	var row documentRow
	err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrapf(err, "getting %s/%s", collection, id)
	}
	return errors.Wrap(json.Unmarshal(row.Data, dest), "decoding document")
}

// update merges patch into a row locked for the rest of tx.
func update(tx *gorm.DB, collection, id string, patch Patch) error {
	var row documentRow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrapf(err, "locking %s/%s", collection, id)
	}

	doc, err := row.document()
	if err != nil {
		return err
	}
	doc.apply(patch)
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}

	return tx.Model(&documentRow{}).
		Where("collection = ? AND id = ?", collection, id).
		Updates(map[string]interface{}{"data": datatypes.JSON(data), "updated_at": time.Now().UTC()}).Error
}

func (s *GormStore) Update(ctx context.Context, collection, id string, patch Patch) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return update(tx, collection, id, patch)
	})
}

// UpdateBatch applies every mutation in one transaction.
func (s *GormStore) UpdateBatch(ctx context.Context, mutations []Mutation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range mutations {
			if err := update(tx, m.Collection, m.ID, m.Patch); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	res := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).Delete(&documentRow{})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "deleting %s/%s", collection, id)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) scope(ctx context.Context, collection string, filters []Filter) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&documentRow{}).Where("collection = ?", collection)
	for _, f := range filters {
		tx = tx.Where(datatypes.JSONQuery("data").Equals(jsonText(f.Value), f.Field))
	}
	return tx
}

func (s *GormStore) Query(ctx context.Context, collection string, dest interface{}, filters []Filter, order ...Ordering) error {
	var rows []documentRow
	if err := s.scope(ctx, collection, filters).Order("created_at, id").Find(&rows).Error; err != nil {
		return errors.Wrapf(err, "querying %s", collection)
	}

	docs := make([]document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	sortDocuments(docs, order)
	return decodeInto(docs, dest)
}

func (s *GormStore) Count(ctx context.Context, collection string, filters []Filter) (int, error) {
	var n int64
	if err := s.scope(ctx, collection, filters).Count(&n).Error; err != nil {
		return 0, errors.Wrapf(err, "counting %s", collection)
	}
	return int(n), nil
}

// jsonText renders v the way postgres json_extract_path_text prints it.
func jsonText(v interface{}) string {
	switch tv := normalize(v).(type) {
	case string:
		return tv
	case nil:
		return ""
	default:
		return fmt.Sprint(tv)
	}
}
