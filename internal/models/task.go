package models

import "time"

// Task status values
const (
	TaskOpen = "OPEN"
	TaskDone = "DONE"
)

// TaskOrigin separates reconciler-owned tasks from user-created ones.
type TaskOrigin string

const (
	OriginManual TaskOrigin = "manual"
	OriginAuto   TaskOrigin = "auto"
)

// Rule kinds persisted in Task.Kind.
const (
	KindManual         = "MANUAL"
	KindPropInfo       = "AUTO_PROP_INFO"
	KindPropPhoto      = "AUTO_PROP_PHOTO"
	KindViewingOverdue = "AUTO_VIEWING_OVERDUE"
	KindViewingPrep    = "AUTO_VIEWING_PREP"
	KindViewingResult  = "AUTO_VIEWING_RESULT"
)

// Task is a follow-up action item.
type Task struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UniqueKey  *string    `gorm:"uniqueIndex" json:"unique_key"`
	Origin     TaskOrigin `gorm:"default:'manual';index" json:"origin"`
	Kind       string     `gorm:"default:'MANUAL'" json:"kind"`
	EntityType string     `json:"entity_type"`
	EntityID   *uint      `json:"entity_id"`
	Title      string     `gorm:"not null" json:"title" validate:"required"`
	DueAt      *string    `json:"due_at"`
	Status     string     `gorm:"default:'OPEN';index" json:"status"`
	Note       string     `json:"note"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// Entity decodes the stored reference.
func (t *Task) Entity() EntityRef {
	return DecodeEntityRef(t.EntityType, t.EntityID)
}

// SetEntity encodes ref into the storage columns.
func (t *Task) SetEntity(ref EntityRef) {
	t.EntityType, t.EntityID = ref.Encode()
}

// IsAuto reports whether the reconciler owns this task.
func (t *Task) IsAuto() bool {
	return t.Origin == OriginAuto
}

// TaskUpsert is a desired auto-task keyed by UniqueKey.
type TaskUpsert struct {
	Key    string
	Kind   string
	Entity EntityRef
	Title  string
	DueAt  string // empty means no due date
	Note   string
	Status string
}
