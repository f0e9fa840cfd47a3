package scraper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rentradar/models"
)

// extractStructured scans the document's script blocks for embedded
// JSON whose shape matches the source's structured-data key hints (an
// object carrying, say, both a listing id and a rent-price key). When
// such blocks exist the source is considered authoritative and the
// selector and regex strategies are skipped for the whole page.
func (p *Pipeline) extractStructured(doc *goquery.Document) []models.RawRecord {
	hints := p.src.Extraction.StructuredKeys
	if len(hints) == 0 {
		return nil
	}

	var records []models.RawRecord
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) < 2 {
			return
		}
		// plain JSON blocks (ld+json objects or arrays) pass through
		// untouched; inline assignments like window.__STATE__ = {...};
		// are trimmed down to their payload
		if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
			idx := strings.IndexAny(text, "{[")
			if idx < 0 {
				return
			}
			text = strings.TrimSuffix(strings.TrimSpace(text[idx:]), ";")
		}

		var payload any
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			return
		}

		for _, obj := range findListingObjects(payload, hints) {
			rec := mapStructuredObject(obj)
			if rec.HasMinimumFields() {
				records = append(records, rec)
			}
		}
	})
	return records
}

// findListingObjects walks arbitrarily nested JSON and collects every
// object that carries all hint keys.
func findListingObjects(node any, hints []string) []map[string]any {
	var out []map[string]any
	switch v := node.(type) {
	case map[string]any:
		if hasAllKeys(v, hints) {
			out = append(out, v)
			return out
		}
		for _, child := range v {
			out = append(out, findListingObjects(child, hints)...)
		}
	case []any:
		for _, child := range v {
			out = append(out, findListingObjects(child, hints)...)
		}
	}
	return out
}

func hasAllKeys(obj map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}

// structuredFieldKeys maps canonical fields to the key spellings seen
// across the sources' embedded payloads (ld+json vocabulary plus each
// site's own state blobs).
var structuredFieldKeys = map[string][]string{
	fieldTitle:       {"title", "name", "titulo", "nombre"},
	fieldPrice:       {"rentPrice", "price", "valorCanon", "mvalorarriendo", "precio", "valor"},
	fieldAdminFee:    {"adminFee", "valorAdministracion", "administracion"},
	fieldArea:        {"area", "areaConstruida", "marea", "floorSize", "area_m2"},
	fieldRooms:       {"rooms", "bedrooms", "numberOfRooms", "alcobas", "mnrocuartos", "habitaciones"},
	fieldBathrooms:   {"bathrooms", "numberOfBathroomsTotal", "banos", "mnrobanos"},
	fieldParking:     {"parking", "garajes", "parqueaderos"},
	fieldStratum:     {"stratum", "estrato"},
	fieldLocation:    {"address", "direccion", "ubicacion"},
	fieldURL:         {"url", "link", "detailUrl"},
	fieldDescription: {"description", "descripcion"},
}

var structuredListKeys = map[string][]string{
	fieldImage: {"images", "imagenes", "photos", "image"},
}

func mapStructuredObject(obj map[string]any) models.RawRecord {
	rec := models.RawRecord{
		Title:       structuredString(obj, fieldTitle),
		Price:       structuredString(obj, fieldPrice),
		AdminFee:    structuredString(obj, fieldAdminFee),
		Area:        structuredString(obj, fieldArea),
		Rooms:       structuredString(obj, fieldRooms),
		Bathrooms:   structuredString(obj, fieldBathrooms),
		Parking:     structuredString(obj, fieldParking),
		Stratum:     structuredString(obj, fieldStratum),
		Location:    structuredString(obj, fieldLocation),
		URL:         structuredString(obj, fieldURL),
		Description: structuredString(obj, fieldDescription),
	}
	if hood, ok := obj["neighborhood"]; ok {
		rec.Neighborhood = toText(hood)
	} else if hood, ok := obj["barrio"]; ok {
		rec.Neighborhood = toText(hood)
	}
	if city, ok := obj["city"]; ok {
		rec.City = toText(city)
	} else if city, ok := obj["ciudad"]; ok {
		rec.City = toText(city)
	}
	rec.Images = structuredImages(obj)
	return rec
}

func structuredString(obj map[string]any, field string) string {
	for _, key := range structuredFieldKeys[field] {
		if val, ok := obj[key]; ok {
			if text := toText(val); text != "" {
				return text
			}
		}
	}
	return ""
}

func structuredImages(obj map[string]any) []string {
	for _, key := range structuredListKeys[fieldImage] {
		val, ok := obj[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case string:
			if v != "" {
				return []string{v}
			}
		case []any:
			var urls []string
			for _, item := range v {
				if s := toText(item); s != "" {
					urls = append(urls, s)
				}
			}
			if len(urls) > 0 {
				return urls
			}
		}
	}
	return nil
}

// toText flattens a JSON scalar (or an address-like object) to text.
func toText(val any) string {
	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case bool:
		return fmt.Sprintf("%v", v)
	case map[string]any:
		// schema.org PostalAddress and similar shapes
		for _, k := range []string{"streetAddress", "addressLocality", "name", "direccion"} {
			if s, ok := v[k].(string); ok && s != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
