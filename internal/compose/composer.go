package compose

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/rashup198/merchant-mailer/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const reportBodyTemplate = `<h3>📊 Performance Report for {{.BrandName}}</h3>
<p>Dear {{.BrandName}} Team,</p>
<p>We hope this email finds you well. We're excited to share your latest performance metrics with you:</p>
<div style="background: #f0f4ff; padding: 20px; border-radius: 8px; margin: 20px 0;">
  <h4 style="color: #4f46e5; margin-bottom: 15px;">📈 Key Metrics</h4>
  <p><strong>Total Revenue:</strong> ${{.Revenue}}</p>
  <p><strong>Average Order Value:</strong> ${{.AverageOrderValue}}</p>
  <p><strong>Platform Contribution:</strong> {{.ContributionPercent}}%</p>
</div>
<p>These metrics reflect your performance over the reporting period. We're proud to have you as a partner and look forward to continued growth together.</p>
<p>If you have any questions about these metrics or would like to discuss strategies for improvement, please don't hesitate to reach out to our team.</p>
<p>Best regards,<br>The Performance Team</p>
`

// Message is a composed notification ready for the channel.
type Message struct {
	Subject string
	Body    string
}

// Composer renders the merchant performance report. Pure and deterministic;
// the numeric formatting is fixed policy: revenue with locale-grouped
// thousands separators, AOV and contribution to exactly two decimals.
type Composer struct {
	body    *template.Template
	printer *message.Printer
}

func NewComposer() (*Composer, error) {
	body, err := template.New("report").Parse(reportBodyTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}

	return &Composer{
		body:    body,
		printer: message.NewPrinter(language.English),
	}, nil
}

func (c *Composer) Compose(record domain.MerchantRecord) (Message, error) {
	if c == nil || c.body == nil {
		return Message{}, fmt.Errorf("composer is not initialized")
	}
	if err := record.Validate(); err != nil {
		return Message{}, fmt.Errorf("invalid merchant record: %w", err)
	}

	data := struct {
		BrandName           string
		Revenue             string
		AverageOrderValue   string
		ContributionPercent string
	}{
		BrandName:           record.BrandName,
		Revenue:             c.formatRevenue(record.Revenue),
		AverageOrderValue:   fmt.Sprintf("%.2f", record.AverageOrderValue),
		ContributionPercent: fmt.Sprintf("%.2f", record.ContributionPercent),
	}

	var sb strings.Builder
	if err := c.body.Execute(&sb, data); err != nil {
		return Message{}, fmt.Errorf("failed to render report body: %w", err)
	}

	return Message{
		Subject: fmt.Sprintf("📊 Performance Report for %s", record.BrandName),
		Body:    sb.String(),
	}, nil
}

// formatRevenue groups thousands without forcing a fixed decimal count,
// e.g. 45000 -> "45,000" and 45000.5 -> "45,000.5".
func (c *Composer) formatRevenue(revenue float64) string {
	return c.printer.Sprintf("%v", number.Decimal(revenue, number.MaxFractionDigits(3)))
}
