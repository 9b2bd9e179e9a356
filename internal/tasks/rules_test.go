package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/brokerledger/internal/models"
	"gorm.io/gorm"
)

var seoul = time.FixedZone("KST", 9*60*60)

// 2026-02-13 14:00 KST
var testNow = time.Date(2026, 2, 13, 14, 0, 0, 0, seoul)

type layouts map[string]bool

func (l layouts) HasMaster(tag string) bool { return l[tag] }

func newTestEvaluator() *Evaluator {
	return NewEvaluator(layouts{models.TagComplexXi: true}, seoul)
}

func area(v float64) *float64 { return &v }

func completeProperty(id uint) models.Property {
	return models.Property{
		ID:            id,
		Tag:           models.TagShop,
		ComplexName:   "중심상가",
		AddressDetail: "1층 101호",
		Area:          area(33),
		Floor:         "1",
		Status:        models.PropertyStatusAdvertising,
	}
}

func TestPropertyInfoRule(t *testing.T) {
	e := newTestEvaluator()

	blank := models.Property{ID: 1, Tag: models.TagShop}
	desired := e.Compute([]models.Property{blank}, nil, nil, testNow)

	task, ok := desired["AUTO_PROP_INFO:1"]
	require.True(t, ok)
	assert.Equal(t, models.KindPropInfo, task.Kind)
	assert.Equal(t, models.PropertyRef(1), task.Entity)
	assert.Equal(t, "[정보 보완] 물건 1 (누락: 동/호, 면적, 층)", task.Title)
	assert.Empty(t, task.DueAt)

	apt := models.Property{ID: 2, Tag: models.TagComplexXi, ComplexName: models.TagComplexXi, Dong: "101", Ho: "1203", Floor: "12"}
	desired = e.Compute([]models.Property{apt}, nil, nil, testNow)
	assert.Equal(t, "[정보 보완] 봉담자이 프라이드시티 101동 1203호 (누락: 면적, 타입)", desired["AUTO_PROP_INFO:2"].Title)

	full := completeProperty(3)
	desired = e.Compute([]models.Property{full}, []models.Photo{{PropertyID: 3}}, nil, testNow)
	assert.Empty(t, desired)
}

func TestPropertyPhotoRule(t *testing.T) {
	e := newTestEvaluator()

	noPhoto := completeProperty(1)
	closed := completeProperty(2)
	closed.Status = models.PropertyStatusClosed
	flagged := completeProperty(3)
	flagged.Status = models.PropertyStatusNeedsPhoto

	photos := []models.Photo{{PropertyID: 3, FilePath: "a.jpg"}}
	desired := e.Compute([]models.Property{noPhoto, closed, flagged}, photos, nil, testNow)

	assert.Contains(t, desired, "AUTO_PROP_PHOTO:1")
	assert.NotContains(t, desired, "AUTO_PROP_PHOTO:2")
	assert.Contains(t, desired, "AUTO_PROP_PHOTO:3", "needs-photo status fires even with photos")
	assert.Equal(t, "[사진 등록] 중심상가 1층 101호", desired["AUTO_PROP_PHOTO:1"].Title)
}

func TestHiddenAndDeletedPropertiesAreSkipped(t *testing.T) {
	e := newTestEvaluator()

	hidden := models.Property{ID: 1, Hidden: true}
	deleted := models.Property{ID: 2, DeletedAt: gorm.DeletedAt{Time: testNow, Valid: true}}
	assert.Empty(t, e.Compute([]models.Property{hidden, deleted}, nil, nil, testNow))
}

func viewingAt(id uint, start string) models.Viewing {
	return models.Viewing{ID: id, PropertyID: 1, StartAt: start, EndAt: start, Title: "김고객 상담", Status: models.ViewingScheduled}
}

func TestViewingOverdueAndPrepAreExclusive(t *testing.T) {
	e := newTestEvaluator()

	viewings := []models.Viewing{
		viewingAt(1, "2026-02-13 12:00"),    // 2h ago
		viewingAt(2, "2026-02-13T13:30:00"), // 30m ago, within grace
		viewingAt(3, "2026-02-14 13:00:00"), // 23h ahead
		viewingAt(4, "2026-02-14 14:00"),    // exactly 24h ahead
		viewingAt(5, "2026-02-14 15:00"),    // 25h ahead
		viewingAt(6, "다음주 화요일"),
		viewingAt(7, ""),
	}
	desired := e.Compute(nil, nil, viewings, testNow)

	overdue, ok := desired["AUTO_VIEWING_OVERDUE:1"]
	require.True(t, ok)
	assert.Equal(t, "2026-02-13 12:00", overdue.DueAt)
	assert.Equal(t, "[지난 일정 확인] 김고객 상담 (2026-02-13 12:00)", overdue.Title)
	assert.Equal(t, models.ViewingRef(1), overdue.Entity)
	assert.NotContains(t, desired, "AUTO_VIEWING_PREP:1")

	assert.Contains(t, desired, "AUTO_VIEWING_PREP:2")
	assert.NotContains(t, desired, "AUTO_VIEWING_OVERDUE:2")
	assert.Equal(t, "[일정 준비] 김고객 상담 (2026-02-14 13:00)", desired["AUTO_VIEWING_PREP:3"].Title)
	assert.Contains(t, desired, "AUTO_VIEWING_PREP:4")
	assert.NotContains(t, desired, "AUTO_VIEWING_PREP:5")

	for _, id := range []string{"6", "7"} {
		assert.NotContains(t, desired, "AUTO_VIEWING_PREP:"+id)
		assert.NotContains(t, desired, "AUTO_VIEWING_OVERDUE:"+id)
	}
	assert.Len(t, desired, 4)
}

func TestViewingWithOffsetIsComparedInstant(t *testing.T) {
	e := newTestEvaluator()

	// 03:00 UTC is 12:00 KST, two hours before testNow.
	desired := e.Compute(nil, nil, []models.Viewing{viewingAt(1, "2026-02-13T03:00:00Z")}, testNow)
	require.Contains(t, desired, "AUTO_VIEWING_OVERDUE:1")
	assert.Equal(t, "2026-02-13 12:00", desired["AUTO_VIEWING_OVERDUE:1"].DueAt)
}

func TestViewingResultRule(t *testing.T) {
	e := newTestEvaluator()

	done := models.Viewing{ID: 8, StartAt: "2026-02-10 10:00", Status: models.ViewingDone, Memo: "  "}
	withMemo := models.Viewing{ID: 9, StartAt: "2026-02-10 10:00", Status: models.ViewingDone, Memo: "재방문 희망", Title: "x"}
	desired := e.Compute(nil, nil, []models.Viewing{done, withMemo}, testNow)

	require.Len(t, desired, 1)
	task := desired["AUTO_VIEWING_RESULT:8"]
	assert.Equal(t, "[결과 기록] 현장/상담 (일정 8)", task.Title)
	assert.Empty(t, task.DueAt)
}

func TestComputeIsDeterministic(t *testing.T) {
	e := newTestEvaluator()
	props := []models.Property{{ID: 1}, completeProperty(2)}
	viewings := []models.Viewing{viewingAt(1, "2026-02-13 15:00")}

	assert.Equal(t, e.Compute(props, nil, viewings, testNow), e.Compute(props, nil, viewings, testNow))
	assert.Equal(t, []string{"AUTO_PROP_INFO:1", "AUTO_PROP_PHOTO:1", "AUTO_PROP_PHOTO:2", "AUTO_VIEWING_PREP:1"},
		e.Compute(props, nil, viewings, testNow).Keys())
}

func TestParseDateTime(t *testing.T) {
	want := time.Date(2026, 2, 13, 14, 30, 0, 0, seoul)
	for _, s := range []string{
		"2026-02-13T14:30:00",
		"2026-02-13T14:30",
		"2026-02-13 14:30",
		"2026-02-13 14:30:00",
		" 2026-02-13 14:30 ",
		"2026-02-13T14:30:00+09:00",
		"2026-02-13T05:30:00Z",
	} {
		got, ok := ParseDateTime(s, seoul)
		if assert.True(t, ok, s) {
			assert.True(t, want.Equal(got), "%s parsed as %s", s, got)
		}
	}

	day, ok := ParseDateTime("2026-02-13", seoul)
	require.True(t, ok)
	assert.True(t, time.Date(2026, 2, 13, 0, 0, 0, 0, seoul).Equal(day))

	for _, s := range []string{"", "   ", "13/02/2026", "2026-02-30 10:00", "내일"} {
		_, ok := ParseDateTime(s, seoul)
		assert.False(t, ok, s)
	}
}
