package store

import (
	"context"
	"errors"

	"github.com/xelth-com/brokerledger/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskFilter narrows ListTasks.
type TaskFilter struct {
	IncludeDone bool
	KindPrefix  string
	Origin      models.TaskOrigin
	Entity      models.EntityRef
	Limit       int
}

// AddTask creates a user task. Origin defaults to manual.
func (s *Store) AddTask(ctx context.Context, t *models.Task) error {
	if t.Origin == "" {
		t.Origin = models.OriginManual
	}
	if t.Kind == "" {
		t.Kind = models.KindManual
	}
	if t.Status == "" {
		t.Status = models.TaskOpen
	}
	return create(ctx, s.db, models.EntityTypeTask, models.AuditCreate, t, func() uint { return t.ID })
}

func (s *Store) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	return get[models.Task](ctx, s.db, id)
}

// ListTasks orders tasks with a due date first (earliest first), then by
// creation time.
func (s *Store) ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	q := s.db.WithContext(ctx)
	if !f.IncludeDone {
		q = q.Where("status = ?", models.TaskOpen)
	}
	if f.KindPrefix != "" {
		q = q.Where("kind LIKE ?", f.KindPrefix+"%")
	}
	if f.Origin != "" {
		q = q.Where("origin = ?", f.Origin)
	}
	if !f.Entity.IsNone() {
		typ, id := f.Entity.Encode()
		q = q.Where("entity_type = ? AND entity_id = ?", typ, *id)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.Task
	err := q.Order("CASE WHEN due_at IS NULL OR due_at = '' THEN 1 ELSE 0 END, due_at ASC, created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ListAutoTasks returns reconciler-owned tasks.
func (s *Store) ListAutoTasks(ctx context.Context, includeDone bool) ([]models.Task, error) {
	return s.ListTasks(ctx, TaskFilter{IncludeDone: includeDone, Origin: models.OriginAuto})
}

var upsertColumns = []string{"origin", "kind", "entity_type", "entity_id", "title", "due_at", "status", "note", "updated_at"}

// UpsertTaskByKey inserts the auto task or overwrites the row holding the
// same key. An unchanged row is left untouched and not audited.
func (s *Store) UpsertTaskByKey(ctx context.Context, up models.TaskUpsert) (*models.Task, error) {
	if up.Key == "" {
		return nil, errors.New("upsert task: empty unique key")
	}
	status := up.Status
	if status == "" {
		status = models.TaskOpen
	}
	key := up.Key
	row := models.Task{
		UniqueKey: &key,
		Origin:    models.OriginAuto,
		Kind:      up.Kind,
		Title:     up.Title,
		Status:    status,
		Note:      up.Note,
	}
	row.SetEntity(up.Entity)
	if up.DueAt != "" {
		due := up.DueAt
		row.DueAt = &due
	}

	var result models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var before models.Task
		found := true
		if err := tx.Where("unique_key = ?", key).First(&before).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			found = false
		}
		if found && sameTask(&before, &row) {
			result = before
			return nil
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "unique_key"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		if err := tx.Where("unique_key = ?", key).First(&result).Error; err != nil {
			return err
		}

		var beforeJSON []byte
		if found {
			beforeJSON = snapshot(&before)
		}
		return writeAudit(tx, models.EntityTypeTask, result.ID, models.AuditUpsert, beforeJSON, snapshot(&result))
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func sameTask(a, b *models.Task) bool {
	return a.Origin == b.Origin &&
		a.Kind == b.Kind &&
		a.EntityType == b.EntityType &&
		equalPtr(a.EntityID, b.EntityID) &&
		a.Title == b.Title &&
		equalPtr(a.DueAt, b.DueAt) &&
		a.Status == b.Status &&
		a.Note == b.Note
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SetTaskStatus transitions a task, auditing it as STATUS_<status>.
func (s *Store) SetTaskStatus(ctx context.Context, id uint, status string) error {
	_, err := mutate(ctx, s.db, models.EntityTypeTask, id, models.AuditStatus(status), func(tx *gorm.DB, t *models.Task) error {
		return tx.Model(t).Update("status", status).Error
	})
	return err
}

func (s *Store) DeleteTask(ctx context.Context, id uint) error {
	return remove[models.Task](ctx, s.db, models.EntityTypeTask, id)
}
