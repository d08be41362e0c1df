// Package docx fills Word templates with the data of one pour record
package docx

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/abelzeko/beton-control/internal/entities"
	godocx "github.com/lukasjarosch/go-docx"
	"go.uber.org/zap"
)

// DocumentKind selects the template and label of a generated document
type DocumentKind string

const (
	KindRequest DocumentKind = "request"
	KindAct     DocumentKind = "act"
)

// Default template file names
const (
	DefaultRequestTemplate = "request_template.docx"
	DefaultActTemplate     = "act_template.docx"
)

// currentDateLayout is the format of the current_date placeholder
const currentDateLayout = "02.01.2006"

// Label is the document title used in the file name and the doc_type placeholder
func (k DocumentKind) Label() string {
	switch k {
	case KindRequest:
		return "Заявка"
	case KindAct:
		return "Акт"
	}
	return string(k)
}

// NumberField is the pour record field that stores the number of this document
func (k DocumentKind) NumberField() entities.Field {
	if k == KindRequest {
		return entities.FieldRequestNumber
	}
	return entities.FieldActNumber
}

// ParseKind converts a command line name into a DocumentKind
func ParseKind(name string) (DocumentKind, error) {
	switch DocumentKind(strings.ToLower(name)) {
	case KindRequest:
		return KindRequest, nil
	case KindAct:
		return KindAct, nil
	}
	return "", entities.Invalid("document", fmt.Sprintf("unknown document kind %q", name))
}

// Renderer generates documents from the configured templates
type Renderer struct {
	templates map[DocumentKind]string
	logger    *zap.Logger
	now       func() time.Time
}

// NewRenderer creates a renderer; empty template paths fall back to the defaults
func NewRenderer(requestTemplate, actTemplate string, logger *zap.Logger) *Renderer {
	if requestTemplate == "" {
		requestTemplate = DefaultRequestTemplate
	}
	if actTemplate == "" {
		actTemplate = DefaultActTemplate
	}
	return &Renderer{
		templates: map[DocumentKind]string{
			KindRequest: requestTemplate,
			KindAct:     actTemplate,
		},
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the clock of the current_date placeholder
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// Render fills the template of kind with detail and writes it into outDir.
// It returns the path of the written file.
func (r *Renderer) Render(kind DocumentKind, detail entities.PourDetail, outDir string) (string, error) {
	template, ok := r.templates[kind]
	if !ok {
		return "", entities.Invalid("document", fmt.Sprintf("unknown document kind %q", kind))
	}
	if _, err := os.Stat(template); err != nil {
		return "", fmt.Errorf("%w: template %s: %v", entities.ErrIO, template, err)
	}

	doc, err := godocx.Open(template)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open template %s: %v", entities.ErrIO, template, err)
	}
	defer doc.Close()

	if err := doc.ReplaceAll(Context(detail, kind.Label(), r.now())); err != nil {
		return "", fmt.Errorf("failed to fill template %s: %w", template, err)
	}

	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create %s: %v", entities.ErrIO, outDir, err)
	}
	out := filepath.Join(outDir, FileName(detail, kind.Label()))
	if err := doc.WriteToFile(out); err != nil {
		return "", fmt.Errorf("%w: failed to write %s: %v", entities.ErrIO, out, err)
	}

	r.logger.Info("Document generated",
		zap.String("kind", string(kind)), zap.Int64("pour_id", detail.ID), zap.String("path", out))
	return out, nil
}

// Context builds the flat placeholder map of a pour record; zero numbers render empty.
// Templates reference the keys directly ({object}, {org_name}), never as nested fields.
func Context(d entities.PourDetail, label string, now time.Time) godocx.PlaceholderMap {
	return godocx.PlaceholderMap{
		"doc_type":          label,
		"current_date":      now.Format(currentDateLayout),
		"object":            d.SiteName,
		"address":           d.SiteAddress,
		"date":              d.PourDate,
		"element":           d.Element,
		"concrete":          d.ConcreteClass,
		"frost":             d.FrostResistance,
		"water":             d.WaterResistance,
		"supplier":          d.Supplier,
		"passport":          d.ConcretePassport,
		"volume":            decimal(d.VolumeConcrete),
		"cubes":             integer(d.CubesCount),
		"cones":             integer(d.ConesCount),
		"slump":             d.Slump,
		"temp":              d.Temperature,
		"temp_measurements": integer(d.TempMeasurements),
		"act":               d.ActNumber,
		"request":           d.RequestNumber,
		"invoice":           d.Invoice,
		"org_name":          d.OrgName,
		"org_contact":       d.OrgContact,
		"org_phone":         d.OrgPhone,
	}
}

// FileName returns "<object>_<element>_<date>_<label>.docx" with unsafe characters removed
func FileName(d entities.PourDetail, label string) string {
	object := safeName(d.SiteName, "объект")
	element := safeName(d.Element, "конструктив")
	date := strings.ReplaceAll(strings.TrimSpace(d.PourDate), " ", "_")
	if date == "" {
		date = "дата"
	}
	return fmt.Sprintf("%s_%s_%s_%s.docx", object, element, safeName(date, "дата"), label)
}

func safeName(s, fallback string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

func integer(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func decimal(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
