package compose

import (
	"errors"
	"strings"
	"testing"

	"github.com/rashup198/merchant-mailer/internal/domain"
)

func testRecord() domain.MerchantRecord {
	return domain.MerchantRecord{
		BrandName:           "Acme Goods",
		Email:               "team@acmegoods.example",
		Revenue:             45000,
		AverageOrderValue:   120.5,
		ContributionPercent: 12.3,
	}
}

func TestComposeSubject(t *testing.T) {
	t.Parallel()

	composer, err := NewComposer()
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}

	msg, err := composer.Compose(testRecord())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if msg.Subject != "📊 Performance Report for Acme Goods" {
		t.Fatalf("Subject = %q", msg.Subject)
	}
}

func TestComposeNumericFormatting(t *testing.T) {
	t.Parallel()

	composer, err := NewComposer()
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}

	msg, err := composer.Compose(testRecord())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	// Revenue gets grouped thousands and no forced decimals.
	if !strings.Contains(msg.Body, "$45,000<") {
		t.Fatalf("body should contain grouped revenue $45,000, got:\n%s", msg.Body)
	}
	// AOV and contribution are fixed to two decimals; the template owns the % literal.
	if !strings.Contains(msg.Body, "$120.50<") {
		t.Fatalf("body should contain AOV $120.50, got:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, "12.30%") {
		t.Fatalf("body should contain contribution 12.30%%, got:\n%s", msg.Body)
	}
}

func TestComposeFractionalRevenueKeepsDecimals(t *testing.T) {
	t.Parallel()

	composer, err := NewComposer()
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}

	record := testRecord()
	record.Revenue = 1234567.5

	msg, err := composer.Compose(record)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if !strings.Contains(msg.Body, "$1,234,567.5<") {
		t.Fatalf("body should contain $1,234,567.5, got:\n%s", msg.Body)
	}
}

func TestComposeEscapesBrandName(t *testing.T) {
	t.Parallel()

	composer, err := NewComposer()
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}

	record := testRecord()
	record.BrandName = "<script>alert(1)</script>"

	msg, err := composer.Compose(record)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if strings.Contains(msg.Body, "<script>") {
		t.Fatal("body should HTML-escape the brand name")
	}
}

func TestComposeInvalidRecord(t *testing.T) {
	t.Parallel()

	composer, err := NewComposer()
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}

	record := testRecord()
	record.Email = ""

	if _, err := composer.Compose(record); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Compose() error = %v, want ErrValidation", err)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	t.Parallel()

	composer, err := NewComposer()
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}

	first, err := composer.Compose(testRecord())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	second, err := composer.Compose(testRecord())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if first != second {
		t.Fatal("Compose() should be deterministic for equal input")
	}
}
