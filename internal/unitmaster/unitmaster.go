// Package unitmaster serves the per-complex unit layout tables (dong, floor,
// ho, unit type, supply area, pyeong) used to fill in and validate
// apartment listings.
package unitmaster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/xelth-com/brokerledger/internal/models"
	"golang.org/x/text/encoding/korean"
)

// Unit is one row of a layout table.
type Unit struct {
	Dong     string  `json:"dong"`
	Floor    int     `json:"floor"`
	Ho       string  `json:"ho"`
	Type     string  `json:"type"`
	SupplyM2 float64 `json:"supply_m2"`
	Pyeong   float64 `json:"pyeong"`
}

type entry struct {
	units    []Unit
	loadedAt time.Time
}

// Registry is a read-through cache of layout tables keyed by grouping tag.
// Entries expire after ttl; a zero ttl keeps them until Invalidate.
type Registry struct {
	sources map[string]string
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]entry
}

// NewRegistry builds a registry from tag → CSV path pairs.
func NewRegistry(sources map[string]string, ttl time.Duration) *Registry {
	copied := make(map[string]string, len(sources))
	for tag, path := range sources {
		copied[tag] = path
	}
	return &Registry{
		sources: copied,
		ttl:     ttl,
		now:     time.Now,
		cache:   make(map[string]entry),
	}
}

// HasMaster reports whether tag has a layout table configured.
func (r *Registry) HasMaster(tag string) bool {
	if r == nil {
		return false
	}
	_, ok := r.sources[strings.TrimSpace(tag)]
	return ok
}

// Tags returns the configured tags, sorted.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.sources))
	for tag := range r.sources {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Invalidate drops the cached table for tag, or every table when tag is "".
func (r *Registry) Invalidate(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tag == "" {
		r.cache = make(map[string]entry)
		return
	}
	delete(r.cache, tag)
}

// Units returns the layout rows for tag. A tag without a table, or whose
// file does not exist, yields no rows.
func (r *Registry) Units(tag string) ([]Unit, error) {
	path, ok := r.sources[tag]
	if !ok {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.cache[tag]; ok && (r.ttl <= 0 || r.now().Sub(e.loadedAt) < r.ttl) {
		return e.units, nil
	}

	units, err := loadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load unit master %q: %w", tag, err)
	}
	r.cache[tag] = entry{units: units, loadedAt: r.now()}
	return units, nil
}

// Dongs lists the distinct dongs of tag in numeric-aware order.
func (r *Registry) Dongs(tag string) ([]string, error) {
	units, err := r.Units(tag)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, u := range units {
		if u.Dong == "" {
			continue
		}
		if _, ok := seen[u.Dong]; !ok {
			seen[u.Dong] = struct{}{}
			out = append(out, u.Dong)
		}
	}
	sortNumeric(out)
	return out, nil
}

// Floors lists the floors present in a dong, ascending.
func (r *Registry) Floors(tag, dong string) ([]int, error) {
	units, err := r.Units(tag)
	if err != nil {
		return nil, err
	}
	dong = strings.TrimSpace(dong)
	seen := make(map[int]struct{})
	var out []int
	for _, u := range units {
		if u.Dong != dong || u.Floor == 0 {
			continue
		}
		if _, ok := seen[u.Floor]; !ok {
			seen[u.Floor] = struct{}{}
			out = append(out, u.Floor)
		}
	}
	sort.Ints(out)
	return out, nil
}

// Hos lists the units on one floor of a dong in numeric-aware order.
func (r *Registry) Hos(tag, dong string, floor int) ([]string, error) {
	units, err := r.Units(tag)
	if err != nil {
		return nil, err
	}
	dong = strings.TrimSpace(dong)
	seen := make(map[string]struct{})
	var out []string
	for _, u := range units {
		if u.Dong != dong || u.Floor != floor || u.Ho == "" {
			continue
		}
		if _, ok := seen[u.Ho]; !ok {
			seen[u.Ho] = struct{}{}
			out = append(out, u.Ho)
		}
	}
	sortNumeric(out)
	return out, nil
}

// UnitInfo looks up a single unit. ok is false when no row matches.
func (r *Registry) UnitInfo(tag, dong string, floor int, ho string) (Unit, bool, error) {
	units, err := r.Units(tag)
	if err != nil {
		return Unit{}, false, err
	}
	dong, ho = strings.TrimSpace(dong), strings.TrimSpace(ho)
	for _, u := range units {
		if u.Dong == dong && u.Floor == floor && u.Ho == ho {
			return u, true, nil
		}
	}
	return Unit{}, false, nil
}

// TotalFloor is the highest floor in a dong, or 0 when unknown.
func (r *Registry) TotalFloor(tag, dong string) (int, error) {
	floors, err := r.Floors(tag, dong)
	if err != nil || len(floors) == 0 {
		return 0, err
	}
	return floors[len(floors)-1], nil
}

// FillProperty completes a listing on a master-backed tag from its layout:
// complex name defaults to the tag, and blank unit type, area, pyeong and
// total floor are taken from the matching unit.
func (r *Registry) FillProperty(p *models.Property) error {
	if !r.HasMaster(p.Tag) {
		return nil
	}
	if strings.TrimSpace(p.ComplexName) == "" {
		p.ComplexName = p.Tag
	}

	floor, ok := parseInt(p.Floor)
	if !ok || p.Dong == "" || p.Ho == "" {
		return nil
	}

	unit, found, err := r.UnitInfo(p.Tag, p.Dong, floor, p.Ho)
	if err != nil {
		return err
	}
	if found {
		if strings.TrimSpace(p.UnitType) == "" {
			p.UnitType = unit.Type
		}
		if p.Area == nil && unit.SupplyM2 > 0 {
			v := unit.SupplyM2
			p.Area = &v
		}
		if p.Pyeong == nil && unit.Pyeong > 0 {
			v := unit.Pyeong
			p.Pyeong = &v
		}
	}

	if strings.TrimSpace(p.TotalFloor) == "" {
		total, err := r.TotalFloor(p.Tag, p.Dong)
		if err != nil {
			return err
		}
		if total > 0 {
			p.TotalFloor = strconv.Itoa(total)
		}
	}
	return nil
}

func loadFile(path string) ([]Unit, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes a layout CSV. UTF-8 (with or without BOM) is tried first,
// then CP949.
func Parse(data []byte) ([]Unit, error) {
	if utf8.Valid(data) {
		data = bytes.TrimPrefix(data, utf8BOM)
	} else {
		decoded, err := korean.EUCKR.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode cp949: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var units []Unit
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		floor, _ := parseInt(field(rec, "floor"))
		supply, _ := strconv.ParseFloat(field(rec, "supply_m2"), 64)
		pyeong, _ := strconv.ParseFloat(field(rec, "pyeong"), 64)
		units = append(units, Unit{
			Dong:     field(rec, "dong"),
			Floor:    floor,
			Ho:       field(rec, "ho"),
			Type:     field(rec, "type"),
			SupplyM2: supply,
			Pyeong:   pyeong,
		})
	}
	return units, nil
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func digitsValue(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return parseInt(b.String())
}

// sortNumeric orders labels like "101동" by their digits; labels without
// digits sort last, alphabetically.
func sortNumeric(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		ni, iok := digitsValue(values[i])
		nj, jok := digitsValue(values[j])
		switch {
		case iok && jok:
			if ni != nj {
				return ni < nj
			}
			return values[i] < values[j]
		case iok != jok:
			return iok
		default:
			return values[i] < values[j]
		}
	})
}
