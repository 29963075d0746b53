// Package views holds the embedded HTML templates of the back-office pages.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/pkg/bangla"
)

//go:embed templates/*.tmpl
var files embed.FS

// Parse parses every page template with the display helpers.
func Parse() (*template.Template, error) {
	tmpl, err := template.New("views").Funcs(Funcs()).ParseFS(files, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// Funcs are the helpers available to templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"bn":     bangla.Number,
		"money":  bangla.Money,
		"digits": bangla.Digits,
		"bnInt": func(n int) string {
			return bangla.Digits(strconv.Itoa(n))
		},
		"ms": func(d time.Duration) int64 {
			return d.Milliseconds()
		},
		"pair": func(e models.RateEntry, group string) models.BoilerPair {
			return e.Pair(models.RateGroup(group))
		},
		"attendance": func(s models.AttendanceStatus) string {
			switch s {
			case models.StatusPresent:
				return "উপস্থিত"
			case models.StatusAbsent:
				return "অনুপস্থিত"
			default:
				return "-"
			}
		},
	}
}
