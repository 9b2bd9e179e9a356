// Package tasks derives follow-up tasks from the ledger state and keeps the
// persisted auto tasks in step with it.
package tasks

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xelth-com/brokerledger/internal/models"
)

// Viewing thresholds. A scheduled viewing that started more than
// OverdueGrace ago is overdue; one starting within PrepWindow needs prep.
const (
	OverdueGrace = time.Hour
	PrepWindow   = 24 * time.Hour
)

const defaultViewingTitle = "현장/상담"

// Field names reported by the info-completeness rule.
const (
	MissingAddress  = "동/호"
	MissingArea     = "면적"
	MissingUnitType = "타입"
	MissingFloor    = "층"
)

// LayoutChecker answers whether a grouping tag has a unit layout master,
// which makes the unit type a required field.
type LayoutChecker interface {
	HasMaster(tag string) bool
}

// DesiredSet maps unique key to the auto task that should be open.
type DesiredSet map[string]models.TaskUpsert

// Keys returns the keys in sorted order.
func (d DesiredSet) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Evaluator computes the desired auto tasks. It holds no state between calls.
type Evaluator struct {
	layouts LayoutChecker
	loc     *time.Location
}

// NewEvaluator returns an evaluator. loc interprets naive viewing times and
// formats due dates; nil means time.Local.
func NewEvaluator(layouts LayoutChecker, loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.Local
	}
	return &Evaluator{layouts: layouts, loc: loc}
}

func autoKey(kind string, id uint) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// Compute evaluates every rule against the given snapshot at now.
func (e *Evaluator) Compute(properties []models.Property, photos []models.Photo, viewings []models.Viewing, now time.Time) DesiredSet {
	desired := make(DesiredSet)

	photoCount := make(map[uint]int, len(photos))
	for _, ph := range photos {
		photoCount[ph.PropertyID]++
	}

	for i := range properties {
		p := &properties[i]
		if p.Deleted() || p.Hidden {
			continue
		}
		e.propertyRules(desired, p, photoCount[p.ID])
	}

	for i := range viewings {
		e.viewingRules(desired, &viewings[i], now)
	}
	return desired
}

func (e *Evaluator) propertyRules(desired DesiredSet, p *models.Property, photos int) {
	hint := nameHint(p)

	if missing := e.missingFields(p); len(missing) > 0 {
		key := autoKey(models.KindPropInfo, p.ID)
		desired[key] = models.TaskUpsert{
			Key:    key,
			Kind:   models.KindPropInfo,
			Entity: p.Ref(),
			Title:  fmt.Sprintf("[정보 보완] %s (누락: %s)", hint, strings.Join(missing, ", ")),
			Note:   "핵심 항목이 누락되어 있습니다.",
		}
	}

	if p.Status != models.PropertyStatusClosed && (photos == 0 || p.Status == models.PropertyStatusNeedsPhoto) {
		key := autoKey(models.KindPropPhoto, p.ID)
		desired[key] = models.TaskUpsert{
			Key:    key,
			Kind:   models.KindPropPhoto,
			Entity: p.Ref(),
			Title:  "[사진 등록] " + hint,
			Note:   "고객 제안/광고용 사진이 필요합니다.",
		}
	}
}

func (e *Evaluator) missingFields(p *models.Property) []string {
	var missing []string
	if addressText(p) == "" {
		missing = append(missing, MissingAddress)
	}
	if p.Area == nil {
		missing = append(missing, MissingArea)
	}
	if strings.TrimSpace(p.UnitType) == "" && e.layouts != nil && e.layouts.HasMaster(p.Tag) {
		missing = append(missing, MissingUnitType)
	}
	if strings.TrimSpace(p.Floor) == "" {
		missing = append(missing, MissingFloor)
	}
	return missing
}

// addressText is the free-form address, or "<dong>동 <ho>호" when both
// structured parts are present.
func addressText(p *models.Property) string {
	if addr := strings.TrimSpace(p.AddressDetail); addr != "" {
		return addr
	}
	dong, ho := strings.TrimSpace(p.Dong), strings.TrimSpace(p.Ho)
	if dong == "" || ho == "" {
		return ""
	}
	if !strings.HasSuffix(dong, "동") {
		dong += "동"
	}
	if !strings.HasSuffix(ho, "호") {
		ho += "호"
	}
	return dong + " " + ho
}

func nameHint(p *models.Property) string {
	var parts []string
	for _, s := range []string{strings.TrimSpace(p.ComplexName), addressText(p), strings.TrimSpace(p.UnitType)} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("물건 %d", p.ID)
	}
	return strings.Join(parts, " ")
}

func (e *Evaluator) viewingRules(desired DesiredSet, v *models.Viewing, now time.Time) {
	status := strings.TrimSpace(v.Status)
	title := strings.TrimSpace(v.Title)
	if title == "" {
		title = defaultViewingTitle
	}

	if status == models.ViewingScheduled {
		if start, ok := ParseDateTime(v.StartAt, e.loc); ok {
			due := start.In(e.loc).Format(DueLayout)
			switch {
			case start.Before(now.Add(-OverdueGrace)):
				key := autoKey(models.KindViewingOverdue, v.ID)
				desired[key] = models.TaskUpsert{
					Key:    key,
					Kind:   models.KindViewingOverdue,
					Entity: v.Ref(),
					Title:  fmt.Sprintf("[지난 일정 확인] %s (%s)", title, due),
					DueAt:  due,
					Note:   "일정이 지났는데 '예정'으로 남아있습니다. 완료/취소/메모를 정리하세요.",
				}
			case !start.After(now.Add(PrepWindow)):
				key := autoKey(models.KindViewingPrep, v.ID)
				desired[key] = models.TaskUpsert{
					Key:    key,
					Kind:   models.KindViewingPrep,
					Entity: v.Ref(),
					Title:  fmt.Sprintf("[일정 준비] %s (%s)", title, due),
					DueAt:  due,
					Note:   "고객 연락/주소/주차/열쇠/세입자 등 사전 체크.",
				}
			}
		}
	}

	if status == models.ViewingDone && strings.TrimSpace(v.Memo) == "" {
		key := autoKey(models.KindViewingResult, v.ID)
		desired[key] = models.TaskUpsert{
			Key:    key,
			Kind:   models.KindViewingResult,
			Entity: v.Ref(),
			Title:  fmt.Sprintf("[결과 기록] %s (일정 %d)", title, v.ID),
			Note:   "완료된 일정인데 메모가 비어 있습니다. 결과/피드백을 남기세요.",
		}
	}
}
