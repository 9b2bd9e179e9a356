// Package proposal renders the text sent to a customer listing recommended
// properties.
package proposal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xelth-com/brokerledger/internal/models"
	"github.com/xelth-com/brokerledger/internal/money"
)

const footer = "원하시면 조건(층/뷰/예산/기간) 조금 더 구체화해서 더 정확히 추려드릴게요."

// BuildMessage renders a chat-ready recommendation message. Output depends
// only on its inputs.
func BuildMessage(c *models.Customer, properties []models.Property, includeLinks bool) string {
	var b strings.Builder

	b.WriteString("안녕하세요")
	if name := strings.TrimSpace(c.CustomerName); name != "" {
		b.WriteString(" " + name + "님")
	}
	b.WriteString(".\n요청 조건 기준 추천 매물 보내드립니다.\n")
	if phone := strings.TrimSpace(c.Phone); phone != "" {
		fmt.Fprintf(&b, "(연락처: %s)\n", phone)
	}
	b.WriteString("\n")

	for i := range properties {
		p := &properties[i]
		fmt.Fprintf(&b, "%d) %s\n", i+1, itemTitle(p))
		if detail := itemDetail(p); detail != "" {
			b.WriteString("   - " + detail + "\n")
		}
		if link := strings.TrimSpace(p.NaverLink); includeLinks && link != "" {
			b.WriteString("   - 링크: " + link + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(footer)
	return strings.TrimSpace(b.String())
}

func itemTitle(p *models.Property) string {
	var parts []string
	for _, s := range []string{p.ComplexName, p.AddressDetail, p.UnitType} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("물건ID %d", p.ID)
	}
	return strings.Join(parts, " ")
}

func itemDetail(p *models.Property) string {
	var detail []string

	floor, total := strings.TrimSpace(p.Floor), strings.TrimSpace(p.TotalFloor)
	if floor != "" || total != "" {
		detail = append(detail, strings.Trim("층: "+floor+"/"+total, "/"))
	}
	if cond := strings.TrimSpace(p.Condition); cond != "" {
		detail = append(detail, "컨디션:"+cond)
	}

	var ov []string
	for _, s := range []string{p.Orientation, p.View} {
		if s = strings.TrimSpace(s); s != "" {
			ov = append(ov, s)
		}
	}
	if len(ov) > 0 {
		detail = append(detail, "향/뷰:"+strings.Join(ov, " / "))
	}
	if note := strings.TrimSpace(p.SpecialNotes); note != "" {
		detail = append(detail, "특이:"+note)
	}
	return strings.Join(detail, " | ")
}

// PriceSummary lists the asking price for each offered deal type, e.g.
// "매매 50천만원 / 월세 1천만원 / 90만원".
func PriceSummary(p *models.Property) string {
	var parts []string
	if p.DealSale {
		parts = append(parts, "매매 "+money.FormatTenMillion(p.SalePrice()))
	}
	if p.DealJeonse {
		parts = append(parts, "전세 "+money.FormatTenMillion(p.JeonsePrice()))
	}
	if p.DealWolse {
		parts = append(parts, fmt.Sprintf("월세 %s / %s", money.FormatTenMillion(p.WolseDeposit()), money.FormatTenMan(p.WolseRent())))
	}
	return strings.Join(parts, " / ")
}

var tagRank = func() map[string]int {
	m := make(map[string]int, len(models.PhotoTagPriority))
	for i, tag := range models.PhotoTagPriority {
		m[tag] = i
	}
	return m
}()

func rank(tag string) int {
	if r, ok := tagRank[tag]; ok {
		return r
	}
	return 99
}

// OrderPhotos returns up to limit photos in presentation order: by room
// tag priority, then tag name. Photos without a file path are dropped.
// A non-positive limit keeps them all.
func OrderPhotos(photos []models.Photo, limit int) []models.Photo {
	out := make([]models.Photo, 0, len(photos))
	for _, ph := range photos {
		if strings.TrimSpace(ph.FilePath) != "" {
			ph.Tag = strings.TrimSpace(ph.Tag)
			out = append(out, ph)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i].Tag), rank(out[j].Tag)
		if ri != rj {
			return ri < rj
		}
		return out[i].Tag < out[j].Tag
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
