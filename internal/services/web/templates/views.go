package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/avasar/portal/internal/services/web/ranks"
)

//go:embed views/*.html
var viewFS embed.FS

var views = template.Must(template.New("views").Funcs(template.FuncMap{
	"money":            Money,
	"amount":           Amount,
	"count":            count,
	"date":             Date,
	"initials":         initials,
	"contains":         strings.Contains,
	"requirementValue": requirementValue,
}).ParseFS(viewFS, "views/*.html"))

var indianPrinter = message.NewPrinter(language.MustParse("en-IN"))

// Money formats a rupee amount with Indian digit grouping.
func Money(value float64) string {
	return "₹" + indianPrinter.Sprint(number.Decimal(value, number.MaxFractionDigits(2)))
}

// Amount formats a plain count with Indian digit grouping.
func Amount(value float64) string {
	return indianPrinter.Sprint(number.Decimal(value, number.MaxFractionDigits(0)))
}

// Date formats a timestamp for tables; the zero time renders as a dash.
func Date(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("02 Jan 2006")
}

func count(value int) string {
	return Amount(float64(value))
}

func requirementValue(key string, value float64) string {
	if ranks.IsMonetary(key) {
		return Money(value)
	}
	return Amount(value)
}

func initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			out = append(out, r)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}

// View renders the named view with data.
func View(name string, data any) templ.Component {
	tmpl := views.Lookup(name)
	if tmpl == nil {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return fmt.Errorf("view %q is not defined", name)
		})
	}
	return templ.FromGoHTML(tmpl, data)
}

// Layout renders the full document around the children in ctx.
func Layout(base Base) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := View("layout.open", base).Render(ctx, w); err != nil {
			return err
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		return View("layout.close", base).Render(ctx, w)
	})
}
