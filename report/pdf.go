package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/warp/leave-engine/leave"
)

type pdfColumn struct {
	title string
	width float64
}

// Landscape A4 leaves 277mm between 10mm margins.
var leavePDFColumns = []pdfColumn{
	{"Employee", 34}, {"Email", 46}, {"Type", 20}, {"Duration", 18},
	{"Start", 20}, {"End", 20}, {"Days", 12}, {"Status", 20},
	{"Reason", 39}, {"Approver", 28}, {"Approved", 20},
}

var balancePDFColumns = []pdfColumn{
	{"Employee", 40}, {"Email", 52}, {"Role", 22},
	{"Annual", 19}, {"Sick", 19}, {"Personal", 19}, {"Emergency", 19},
}

// LeavePDF writes a landscape leave report to w.
func LeavePDF(w io.Writer, rows []LeaveRow, f Filters) error {
	pdf := newPDF("L", "Leave Report", period(f))
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	tableHeader(pdf, leavePDFColumns)
	pdf.SetFont("Helvetica", "", 8)
	for _, r := range rows {
		approvedAt := "N/A"
		if r.ApprovedAt != nil {
			approvedAt = formatDate(*r.ApprovedAt)
		}
		approver := r.ApproverName
		if approver == "" {
			approver = "N/A"
		}
		tableRow(pdf, tr, leavePDFColumns, []string{
			r.EmployeeName, r.EmployeeEmail, strings.ReplaceAll(string(r.Type), "_", " "), durationLabel(r.Duration),
			formatDate(r.StartDate), formatDate(r.EndDate), r.TotalDays.StringFixed(1),
			strings.ToUpper(string(r.Status)), r.Reason, approver, approvedAt,
		})
	}

	s := summarize(rows)
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %d   Approved: %d   Pending: %d   Rejected: %d   Cancelled: %d",
		s.total, s.approved, s.pending, s.rejected, s.cancelled), "", 1, "L", false, 0, "")

	return output(pdf, w)
}

// BalancePDF writes a portrait balance report to w.
func BalancePDF(w io.Writer, employees []leave.Employee) error {
	pdf := newPDF("P", "Leave Balance Report", fmt.Sprintf("%d employees", len(employees)))
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	tableHeader(pdf, balancePDFColumns)
	pdf.SetFont("Helvetica", "", 9)
	for _, e := range employees {
		b := e.Balances
		tableRow(pdf, tr, balancePDFColumns, []string{
			e.Name, e.Email, string(e.Role),
			b.Annual.StringFixed(1), b.Sick.StringFixed(1), b.Personal.StringFixed(1), b.Emergency.StringFixed(1),
		})
	}
	return output(pdf, w)
}

func newPDF(orientation, title, subtitle string) *gofpdf.Fpdf {
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(37, 99, 235)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 6, subtitle, "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
	return pdf
}

func tableHeader(pdf *gofpdf.Fpdf, cols []pdfColumn) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(224, 224, 224)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func tableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []pdfColumn, values []string) {
	for i, c := range cols {
		pdf.CellFormat(c.width, 6, truncate(pdf, tr(values[i]), c.width-2), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

// truncate shortens s with an ellipsis until it fits width mm.
func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func output(pdf *gofpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}
