// Package matching ranks properties against a customer's stated
// requirements with explainable, additive scoring rules.
package matching

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xelth-com/brokerledger/internal/models"
)

// DefaultLimit applies when Match is called with a non-positive limit.
const DefaultLimit = 30

// Reasons, in evaluation order.
const (
	ReasonDealType    = "거래유형 일치"
	ReasonArea        = "면적 범위 일치"
	ReasonPyeong      = "평형 범위 일치"
	ReasonHighFloor   = "고층 선호"
	ReasonLowFloor    = "저층 선호"
	ReasonView        = "뷰 키워드"
	ReasonLocation    = "위치 키워드"
	ReasonBudget      = "예산 범위 일치"
	ReasonMonthlyRent = "월세 예산 범위 일치"
)

// Result is one ranked candidate.
type Result struct {
	PropertyID uint             `json:"property_id"`
	Score      int              `json:"score"`
	Reasons    []string         `json:"reasons"`
	Property   *models.Property `json:"property"`
}

// Range is an inclusive numeric range.
type Range struct {
	Min, Max float64
}

func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Distance is the gap between v and the nearer bound.
func (r Range) Distance(v float64) float64 {
	return math.Min(math.Abs(v-r.Min), math.Abs(v-r.Max))
}

var (
	rangePattern  = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*[~\-]\s*(\d+(?:\.\d+)?)$`)
	singlePattern = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	digitsPattern = regexp.MustCompile(`\d+`)
)

// ParseRange reads "84", "80~90" or "80-90", ignoring ㎡ and 평 suffixes.
// Reversed bounds are swapped.
func ParseRange(s string) (Range, bool) {
	s = strings.NewReplacer("㎡", "", "평", "").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, false
	}
	if m := rangePattern.FindStringSubmatch(s); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		if lo > hi {
			lo, hi = hi, lo
		}
		return Range{Min: lo, Max: hi}, true
	}
	if singlePattern.MatchString(s) {
		v, _ := strconv.ParseFloat(s, 64)
		return Range{Min: v, Max: v}, true
	}
	return Range{}, false
}

// ParseFloor takes the first run of digits: "15", "15/25", "15층".
func ParseFloor(s string) (int, bool) {
	m := digitsPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	return n, err == nil
}

// criteria is the customer side, parsed once per call.
type criteria struct {
	tags         map[string]bool
	deals        map[models.DealType]bool
	area         Range
	hasArea      bool
	pyeong       Range
	hasPyeong    bool
	floorPref    string
	viewPref     string
	locationPref string
	budget       int // 10-million-won units
	rentBudget   int // 10-man-won units
}

func parseCriteria(c *models.Customer) criteria {
	cr := criteria{
		tags:         make(map[string]bool),
		deals:        make(map[models.DealType]bool),
		floorPref:    strings.TrimSpace(c.FloorPreference),
		viewPref:     strings.ToLower(strings.TrimSpace(c.ViewPreference)),
		locationPref: strings.ToLower(strings.TrimSpace(c.LocationPreference)),
		budget:       c.Budget10m,
		rentBudget:   c.WolseRent10man,
	}
	for _, tag := range c.PreferredTags() {
		cr.tags[tag] = true
	}
	for _, d := range c.DealTypes() {
		cr.deals[d] = true
	}
	cr.area, cr.hasArea = ParseRange(c.PreferredArea)
	cr.pyeong, cr.hasPyeong = ParseRange(c.PreferredPyeong)
	return cr
}

// Match scores every eligible property for customer and returns the best
// limit results, highest score first. Ties keep input order.
func Match(customer *models.Customer, properties []models.Property, limit int) []Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	cr := parseCriteria(customer)

	results := []Result{}
	for i := range properties {
		p := &properties[i]
		if p.Deleted() || p.Hidden {
			continue
		}
		if r, ok := cr.score(p); ok {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// score applies the hard filters, then the additive rules. ok is false
// when the property is filtered out.
func (cr criteria) score(p *models.Property) (Result, bool) {
	tag := strings.TrimSpace(p.Tag)
	if len(cr.tags) > 0 && tag != "" && !cr.tags[tag] {
		return Result{}, false
	}

	overlap := make(map[models.DealType]bool)
	for _, d := range p.DealTypes() {
		if cr.deals[d] {
			overlap[d] = true
		}
	}
	if len(cr.deals) > 0 && len(overlap) == 0 {
		return Result{}, false
	}

	score := 0
	reasons := []string{}
	add := func(points int, reason string) {
		score += points
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	if len(overlap) > 0 {
		add(15, ReasonDealType)
	}

	if cr.hasArea && p.Area != nil {
		if cr.area.Contains(*p.Area) {
			add(30, ReasonArea)
		} else {
			score -= int(math.Min(15, cr.area.Distance(*p.Area)/2))
		}
	} else {
		add(5, "")
	}

	if cr.hasPyeong && p.Pyeong != nil {
		if cr.pyeong.Contains(*p.Pyeong) {
			add(25, ReasonPyeong)
		} else {
			score -= int(math.Min(12, cr.pyeong.Distance(*p.Pyeong)))
		}
	} else {
		add(5, "")
	}

	if cr.floorPref != "" {
		floor, hasFloor := ParseFloor(p.Floor)
		switch {
		case strings.Contains(cr.floorPref, "고") && hasFloor && floor >= 15:
			add(10, ReasonHighFloor)
		case strings.Contains(cr.floorPref, "저") && hasFloor && floor <= 5:
			add(10, ReasonLowFloor)
		case strings.Contains(cr.floorPref, "무관"):
			add(3, "")
		}
	}

	hay := strings.ToLower(strings.Join([]string{p.View, p.SpecialNotes, p.AddressDetail, p.Note}, " "))
	if cr.viewPref != "" && strings.Contains(hay, cr.viewPref) {
		add(6, ReasonView)
	}
	if cr.locationPref != "" && strings.Contains(hay, cr.locationPref) {
		add(6, ReasonLocation)
	}

	switch strings.TrimSpace(p.Condition) {
	case "상":
		add(4, "")
	case "중":
		add(2, "")
	}

	switch {
	case (overlap[models.DealSale] || overlap[models.DealJeonse]) && cr.budget > 0:
		price := math.MaxInt
		if overlap[models.DealSale] {
			price = min(price, p.SalePrice())
		}
		if overlap[models.DealJeonse] {
			price = min(price, p.JeonsePrice())
		}
		if price <= cr.budget {
			add(18, ReasonBudget)
		} else {
			score -= min(20, max(0, price-cr.budget)/2)
		}
	case overlap[models.DealWolse] && cr.rentBudget > 0:
		rent := p.WolseRent()
		if rent <= cr.rentBudget {
			add(16, ReasonMonthlyRent)
		} else {
			score -= min(20, rent-cr.rentBudget)
		}
	}

	return Result{PropertyID: p.ID, Score: score, Reasons: reasons, Property: p}, true
}
