// Package pdf renders the portal's receipts and summaries from a small
// declarative template: title, subtitle, key/value sections and a footer.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/yigit/agencyportal/internal/app/models"
)

// Field is one label/value line
type Field struct {
	Label string
	Value string
}

// Section groups fields under a heading
type Section struct {
	Heading string
	Fields  []Field
}

// Template describes a one-page document
type Template struct {
	Title    string
	Subtitle string
	Sections []Section
	Footer   string
}

const labelWidth = 55

// Render draws the template onto an A4 page and returns the PDF bytes
func Render(t Template) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetTitle(t.Title, true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.Cell(0, 10, tr(t.Title))
	doc.Ln(10)

	if t.Subtitle != "" {
		doc.SetFont("Helvetica", "", 11)
		doc.SetTextColor(90, 90, 90)
		doc.Cell(0, 7, tr(t.Subtitle))
		doc.SetTextColor(0, 0, 0)
		doc.Ln(10)
	}

	for _, s := range t.Sections {
		doc.SetFont("Helvetica", "B", 12)
		doc.Cell(0, 8, tr(s.Heading))
		doc.Ln(9)

		for _, f := range s.Fields {
			doc.SetFont("Helvetica", "B", 10)
			doc.Cell(labelWidth, 6, tr(f.Label))
			doc.SetFont("Helvetica", "", 10)
			doc.MultiCell(0, 6, tr(orDash(f.Value)), "", "", false)
		}
		doc.Ln(4)
	}

	if t.Footer != "" {
		doc.Ln(4)
		doc.SetFont("Helvetica", "I", 9)
		doc.MultiCell(0, 5, tr(t.Footer), "", "", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// Money formats an amount with a currency code
func Money(amount float64, currency string) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}

func date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

const footer = "This document is generated electronically and does not require a signature."

// PaymentReceipt renders the commission statement of a payment
func PaymentReceipt(p *models.Payment, currency string, now time.Time) ([]byte, string, error) {
	t := Template{
		Title:    "Commission Receipt",
		Subtitle: "Generated " + now.Format("02 Jan 2006 15:04"),
		Sections: []Section{
			{Heading: "Student", Fields: []Field{
				{"Student name", p.StudentName},
				{"Application ID", p.ApplicationID},
				{"Agency", p.AgencyName},
			}},
			{Heading: "Payment", Fields: []Field{
				{"Course fee", Money(p.Fee, currency)},
				{"Commission rate", fmt.Sprintf("%.2f%%", p.CommissionRate)},
				{"Commission amount", Money(p.CommissionAmount, currency)},
				{"Amount paid", Money(p.AmountPaid, currency)},
				{"Payment status", strings.ToUpper(string(p.PaymentStatus))},
				{"Paid on", date(p.PaidAt)},
				{"Notes", p.Notes},
			}},
		},
		Footer: footer,
	}
	out, err := Render(t)
	return out, "payment-receipt-" + p.ID + ".pdf", err
}

// OfflinePaymentReceipt renders the acknowledgement of a submitted bank transfer
func OfflinePaymentReceipt(o *models.OfflinePayment, now time.Time) ([]byte, string, error) {
	paymentDate := o.PaymentDate
	t := Template{
		Title:    "Offline Payment Acknowledgement",
		Subtitle: "Generated " + now.Format("02 Jan 2006 15:04"),
		Sections: []Section{
			{Heading: "Transfer", Fields: []Field{
				{"Agency", o.AgencyName},
				{"Amount", Money(o.Amount, o.Currency)},
				{"Reference", o.Reference},
				{"Bank", o.BankName},
				{"Payment date", date(&paymentDate)},
			}},
			{Heading: "Review", Fields: []Field{
				{"Status", strings.ToUpper(string(o.Status))},
				{"Reviewed on", date(o.ReviewedAt)},
				{"Remarks", o.Remarks},
			}},
		},
		Footer: footer,
	}
	out, err := Render(t)
	return out, "offline-payment-" + o.ID + ".pdf", err
}

// ApplicationSummary renders an application with its document checklist
func ApplicationSummary(a *models.Application, docs []*models.Document, currency string, now time.Time) ([]byte, string, error) {
	docFields := make([]Field, 0, len(docs))
	for _, d := range docs {
		docFields = append(docFields, Field{Label: d.Name, Value: strings.ToUpper(string(d.Status))})
	}
	if len(docFields) == 0 {
		docFields = append(docFields, Field{Label: "Uploaded", Value: "none"})
	}

	t := Template{
		Title:    "Application Summary",
		Subtitle: "Generated " + now.Format("02 Jan 2006 15:04"),
		Sections: []Section{
			{Heading: "Student", Fields: []Field{
				{"Name", a.StudentName},
				{"Email", a.StudentEmail},
				{"Phone", a.StudentPhone},
				{"Date of birth", a.DateOfBirth},
				{"Nationality", a.Nationality},
				{"Qualification", a.Qualification},
			}},
			{Heading: "Admission", Fields: []Field{
				{"Agency", a.AgencyName},
				{"College", a.CollegeName},
				{"Course", a.CourseName},
				{"Session", a.Session},
				{"Stream", a.Stream},
				{"Fee", Money(a.Fee, currency)},
				{"Status", strings.ToUpper(string(a.Status))},
				{"Remarks", a.Remarks},
			}},
			{Heading: "Documents", Fields: docFields},
		},
		Footer: footer,
	}
	out, err := Render(t)
	return out, "application-" + a.ID + ".pdf", err
}
