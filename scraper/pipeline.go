package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rentradar/config"
	"rentradar/models"
)

// canonical field names shared by descriptors and strategies
const (
	fieldTitle       = "title"
	fieldPrice       = "price"
	fieldAdminFee    = "admin_fee"
	fieldArea        = "area"
	fieldRooms       = "rooms"
	fieldBathrooms   = "bathrooms"
	fieldParking     = "parking"
	fieldStratum     = "stratum"
	fieldLocation    = "location"
	fieldURL         = "url"
	fieldImage       = "image"
	fieldDescription = "description"
)

// defaultPatterns are the regex fallbacks applied when a source's
// descriptor has no pattern for a field. Vocabulary is Spanish plus the
// abbreviations the aggregated sites actually print.
var defaultPatterns = map[string][]*regexp.Regexp{
	fieldPrice: {
		regexp.MustCompile(`\$\s?\d[\d.,]*\d`),
		regexp.MustCompile(`(?i)COP\s?\d[\d.,]*\d`),
	},
	fieldArea: {
		regexp.MustCompile(`(\d+[\d.,]*)\s*m\s?[²2]`),
		regexp.MustCompile(`(?i)(\d+[\d.,]*)\s*mts`),
	},
	fieldRooms: {
		regexp.MustCompile(`(?i)(\d+)\s*(?:hab\b|habitaci[oó]n(?:es)?|alcobas?|cuartos?|dormitorios?)`),
	},
	fieldBathrooms: {
		regexp.MustCompile(`(?i)(\d+)\s*(?:bañ|ban)os?`),
	},
	fieldParking: {
		regexp.MustCompile(`(?i)(\d+)\s*(?:parqueaderos?|garajes?)`),
	},
	fieldStratum: {
		regexp.MustCompile(`(?i)estrato\s*(\d)`),
	},
	fieldAdminFee: {
		regexp.MustCompile(`(?i)administraci[oó]n\s*:?\s*\$?\s?([\d.,]+)`),
	},
}

// Pipeline extracts RawRecords from one source's pages. Strategies run
// in strict precedence per document: embedded structured data when the
// source carries it, then the per-item selector cascade, then regex
// fallbacks over the item's full text.
type Pipeline struct {
	src      *config.ScrapingSource
	patterns map[string][]*regexp.Regexp // compiled per-source patterns
}

func NewPipeline(src *config.ScrapingSource) *Pipeline {
	p := &Pipeline{
		src:      src,
		patterns: make(map[string][]*regexp.Regexp),
	}
	for field, desc := range src.Extraction.Fields {
		for _, raw := range desc.Patterns {
			re, err := regexp.Compile(raw)
			if err != nil {
				// a broken descriptor pattern degrades to the defaults
				continue
			}
			p.patterns[field] = append(p.patterns[field], re)
		}
	}
	return p
}

// ExtractDocument returns every emittable record on the page.
func (p *Pipeline) ExtractDocument(doc *goquery.Document) []models.RawRecord {
	if records := p.extractStructured(doc); len(records) > 0 {
		return records
	}

	var records []models.RawRecord
	doc.Find(p.src.Extraction.ItemSelector).Each(func(_ int, item *goquery.Selection) {
		rec := p.extractItem(item)
		if rec.HasMinimumFields() {
			records = append(records, rec)
		}
	})
	return records
}

// HasNextPage reports whether the page advertises a further page.
func (p *Pipeline) HasNextPage(doc *goquery.Document) bool {
	sel := p.src.Extraction.NextPageSelector
	if sel == "" {
		return false
	}
	return doc.Find(sel).Length() > 0
}

func (p *Pipeline) extractItem(item *goquery.Selection) models.RawRecord {
	rec := models.RawRecord{
		Title:       p.field(item, fieldTitle),
		Price:       p.field(item, fieldPrice),
		AdminFee:    p.field(item, fieldAdminFee),
		Area:        p.field(item, fieldArea),
		Rooms:       p.field(item, fieldRooms),
		Bathrooms:   p.field(item, fieldBathrooms),
		Parking:     p.field(item, fieldParking),
		Stratum:     p.field(item, fieldStratum),
		Location:    p.field(item, fieldLocation),
		URL:         p.attrField(item, fieldURL, "href"),
		Description: p.field(item, fieldDescription),
	}
	if img := p.attrField(item, fieldImage, "src"); img != "" {
		rec.Images = []string{img}
	}
	rec.Amenities = extractAmenities(item.Text())
	return rec
}

// field resolves one canonical field: selector cascade first, regex
// fallback over the item's full text second. First non-empty wins.
func (p *Pipeline) field(item *goquery.Selection, name string) string {
	desc := p.src.Extraction.Fields[name]
	for _, sel := range desc.Selectors {
		found := item.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		var text string
		if desc.Attr != "" {
			text, _ = found.Attr(desc.Attr)
		} else {
			text = strings.TrimSpace(found.Text())
		}
		if text != "" {
			return text
		}
	}
	return p.matchPatterns(name, item.Text())
}

// attrField is the selector cascade for attribute-carrying fields (url,
// image); defaultAttr applies when the descriptor names none.
func (p *Pipeline) attrField(item *goquery.Selection, name, defaultAttr string) string {
	desc := p.src.Extraction.Fields[name]
	attr := desc.Attr
	if attr == "" {
		attr = defaultAttr
	}
	selectors := desc.Selectors
	if len(selectors) == 0 && name == fieldURL {
		selectors = []string{"a"}
	}
	for _, sel := range selectors {
		if val, ok := item.Find(sel).First().Attr(attr); ok && val != "" {
			return val
		}
	}
	// the item itself may be the anchor
	if val, ok := item.Attr(attr); ok && val != "" {
		return val
	}
	return ""
}

func (p *Pipeline) matchPatterns(name, text string) string {
	for _, re := range p.patterns[name] {
		if m := firstMatch(re, text); m != "" {
			return m
		}
	}
	for _, re := range defaultPatterns[name] {
		if m := firstMatch(re, text); m != "" {
			return m
		}
	}
	return ""
}

func firstMatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if len(m) > 1 && m[1] != "" {
		return m[1]
	}
	return m[0]
}

// knownAmenities is the vocabulary scanned for in item text. Matches
// feed the scorer's preference matching downstream.
var knownAmenities = []string{
	"piscina", "jacuzzi", "sauna", "turco", "gimnasio", "cancha",
	"squash", "bbq", "terraza", "balcón", "balcon", "ascensor",
	"portería", "porteria", "vigilancia", "amoblado", "parqueadero",
	"depósito", "deposito", "mascotas", "salón comunal", "salon comunal",
	"zona de lavandería", "lavanderia",
}

func extractAmenities(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, a := range knownAmenities {
		if strings.Contains(lower, a) {
			out = append(out, a)
		}
	}
	return out
}
