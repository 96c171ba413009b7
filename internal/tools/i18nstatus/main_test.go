package main

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	i18ncatalog "github.com/avasar/portal/internal/platform/i18n/catalog"
)

func testBundle(t *testing.T) *i18ncatalog.Bundle {
	t.Helper()
	bundle, err := i18ncatalog.LoadFromFS(fstest.MapFS{
		"locales/en-US/web.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"web\"\nmessages:\n  \"web.a\": \"A\"\n  \"web.b\": \"B\"\n")},
		"locales/en-US/otp.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"otp\"\nmessages:\n  \"otp.a\": \"A\"\n")},
		"locales/hi-IN/web.yaml": {Data: []byte("locale: \"hi-IN\"\nnamespace: \"web\"\nmessages:\n  \"web.a\": \"अ\"\n")},
	})
	if err != nil {
		t.Fatalf("LoadFromFS() error = %v", err)
	}
	return bundle
}

func TestBuildReport(t *testing.T) {
	t.Parallel()

	rep := buildReport(testBundle(t))
	if len(rep.Locales) != 2 {
		t.Fatalf("locales = %d, want 2", len(rep.Locales))
	}
	hindi := rep.Locales[1]
	if hindi.Locale != "hi-IN" {
		t.Fatalf("second locale = %q, want hi-IN", hindi.Locale)
	}
	if hindi.Translated != 1 || hindi.Missing != 2 {
		t.Fatalf("hi-IN translated/missing = %d/%d, want 1/2", hindi.Translated, hindi.Missing)
	}
	if hindi.Completion != 33.3 {
		t.Fatalf("Completion = %v, want 33.3", hindi.Completion)
	}
	if got := strings.Join(hindi.MissingKeys, ","); got != "otp.a,web.b" {
		t.Fatalf("MissingKeys = %q, want %q", got, "otp.a,web.b")
	}
	if len(hindi.Namespaces) != 2 || hindi.Namespaces[1].Namespace != "web" || hindi.Namespaces[1].Completion != 50 {
		t.Fatalf("Namespaces = %+v, want web at 50%%", hindi.Namespaces)
	}
}

func TestWriteMarkdownListsMissingKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writeMarkdown(&buf, buildReport(testBundle(t))); err != nil {
		t.Fatalf("writeMarkdown() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"| `hi-IN` | 3 | 1 | 2 | 33.3% |", "- `web.b`"} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestEmbeddedCatalogBaseIsComplete(t *testing.T) {
	t.Parallel()

	bundle, err := i18ncatalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	rep := buildReport(bundle)
	if base := rep.Locales[0]; base.Locale != i18ncatalog.BaseLocale || base.Missing != 0 {
		t.Fatalf("base status = %+v, want complete %s", base, i18ncatalog.BaseLocale)
	}
}
