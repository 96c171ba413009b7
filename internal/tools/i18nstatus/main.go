// Package main reports how much of the base catalog each locale translates.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/avasar/portal/internal/platform/config"
	i18ncatalog "github.com/avasar/portal/internal/platform/i18n/catalog"
)

type report struct {
	BaseLocale string         `json:"base_locale"`
	Locales    []localeStatus `json:"locales"`
}

type localeStatus struct {
	Locale      string            `json:"locale"`
	BaseKeys    int               `json:"base_keys"`
	Translated  int               `json:"translated"`
	Missing     int               `json:"missing"`
	Completion  float64           `json:"completion"`
	Namespaces  []namespaceStatus `json:"namespaces"`
	MissingKeys []string          `json:"missing_keys"`
}

type namespaceStatus struct {
	Namespace  string  `json:"namespace"`
	BaseKeys   int     `json:"base_keys"`
	Translated int     `json:"translated"`
	Completion float64 `json:"completion"`
}

func main() {
	var asJSON bool
	flag.BoolVar(&asJSON, "json", false, "write the report as JSON instead of markdown")
	flag.Parse()

	bundle, err := i18ncatalog.LoadEmbedded()
	if err != nil {
		config.Exitf("load i18n catalogs: %v", err)
	}
	rep := buildReport(bundle)
	write := writeMarkdown
	if asJSON {
		write = writeJSON
	}
	if err := write(os.Stdout, rep); err != nil {
		config.Exitf("write report: %v", err)
	}
}

func buildReport(bundle *i18ncatalog.Bundle) report {
	base := bundle.LocaleMessages(i18ncatalog.BaseLocale)
	statuses := make([]localeStatus, 0)
	for _, locale := range bundle.Locales() {
		messages := bundle.LocaleMessages(locale)
		missing := missingKeys(base, messages)
		translated := len(base) - len(missing)

		baseByNS := countByNamespace(base)
		translatedByNS := countByNamespace(messages)
		namespaces := make([]namespaceStatus, 0, len(baseByNS))
		for _, ns := range sortedKeys(baseByNS) {
			namespaces = append(namespaces, namespaceStatus{
				Namespace:  ns,
				BaseKeys:   baseByNS[ns],
				Translated: translatedByNS[ns],
				Completion: percent(translatedByNS[ns], baseByNS[ns]),
			})
		}
		statuses = append(statuses, localeStatus{
			Locale:      locale,
			BaseKeys:    len(base),
			Translated:  translated,
			Missing:     len(missing),
			Completion:  percent(translated, len(base)),
			Namespaces:  namespaces,
			MissingKeys: missing,
		})
	}
	return report{BaseLocale: i18ncatalog.BaseLocale, Locales: statuses}
}

func writeJSON(out io.Writer, rep report) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func writeMarkdown(out io.Writer, rep report) error {
	var b strings.Builder
	b.WriteString("# I18n Status\n\n")
	fmt.Fprintf(&b, "Base locale: `%s`.\n\n", rep.BaseLocale)
	b.WriteString("| Locale | Base Keys | Translated | Missing | Completion |\n")
	b.WriteString("| --- | ---: | ---: | ---: | ---: |\n")
	for _, locale := range rep.Locales {
		fmt.Fprintf(&b, "| `%s` | %d | %d | %d | %.1f%% |\n", locale.Locale, locale.BaseKeys, locale.Translated, locale.Missing, locale.Completion)
	}
	for _, locale := range rep.Locales {
		if locale.Locale == rep.BaseLocale {
			continue
		}
		fmt.Fprintf(&b, "\n## `%s`\n\n", locale.Locale)
		b.WriteString("| Namespace | Base Keys | Translated | Completion |\n")
		b.WriteString("| --- | ---: | ---: | ---: |\n")
		for _, ns := range locale.Namespaces {
			fmt.Fprintf(&b, "| `%s` | %d | %d | %.1f%% |\n", ns.Namespace, ns.BaseKeys, ns.Translated, ns.Completion)
		}
		if len(locale.MissingKeys) > 0 {
			b.WriteString("\n### Missing Keys\n\n")
			for _, key := range locale.MissingKeys {
				fmt.Fprintf(&b, "- `%s`\n", key)
			}
		}
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func namespaceOf(key string) string {
	ns, _, _ := strings.Cut(key, ".")
	return ns
}

func countByNamespace(messages map[string]string) map[string]int {
	out := map[string]int{}
	for key := range messages {
		out[namespaceOf(key)]++
	}
	return out
}

func missingKeys(base map[string]string, target map[string]string) []string {
	out := make([]string, 0)
	for key := range base {
		if _, ok := target[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(entries map[string]int) []string {
	out := make([]string, 0, len(entries))
	for key := range entries {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func percent(numerator int, denominator int) float64 {
	if denominator <= 0 {
		return 100
	}
	value := float64(numerator) * 100 / float64(denominator)
	return math.Round(value*10) / 10
}
