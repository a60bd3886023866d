package report

import (
	"bytes"
	"fmt"

	"github.com/warp/leave-engine/leave"
	"github.com/xuri/excelize/v2"
)

const (
	leaveSheet   = "Leave Report"
	balanceSheet = "Leave Balances"
)

var leaveHeaders = []interface{}{
	"Employee Name", "Email", "Leave Type", "Duration", "Start Date", "End Date",
	"Total Days", "Status", "Reason", "Approved By", "Approved Date", "Comments",
}

var balanceHeaders = []interface{}{
	"Employee Name", "Email", "Role",
	"Annual Leave Balance", "Sick Leave Balance", "Personal Leave Balance", "Emergency Leave Balance",
}

// LeaveExcel renders rows as an XLSX workbook with a summary block.
func LeaveExcel(rows []LeaveRow, f Filters) ([]byte, error) {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", leaveSheet); err != nil {
		return nil, err
	}
	w, err := newSheetWriter(x, leaveSheet)
	if err != nil {
		return nil, err
	}

	w.title("Leave Report")
	w.row(period(f))
	w.blank()
	w.header(leaveHeaders)

	for _, r := range rows {
		approvedAt := ""
		if r.ApprovedAt != nil {
			approvedAt = formatDate(*r.ApprovedAt)
		}
		days, _ := r.TotalDays.Float64()
		w.row(
			r.EmployeeName, r.EmployeeEmail, string(r.Type), durationLabel(r.Duration),
			formatDate(r.StartDate), formatDate(r.EndDate), days, string(r.Status),
			r.Reason, r.ApproverName, approvedAt, r.ApprovalComments,
		)
	}

	s := summarize(rows)
	w.blank()
	w.title("Summary")
	w.row("Total Requests:", s.total)
	w.row("Approved:", s.approved)
	w.row("Pending:", s.pending)
	w.row("Rejected:", s.rejected)
	w.row("Cancelled:", s.cancelled)

	if err := w.finish(len(leaveHeaders), 15); err != nil {
		return nil, err
	}
	return writeBuffer(x)
}

// BalanceExcel renders every employee's four counters.
func BalanceExcel(employees []leave.Employee) ([]byte, error) {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", balanceSheet); err != nil {
		return nil, err
	}
	w, err := newSheetWriter(x, balanceSheet)
	if err != nil {
		return nil, err
	}

	w.title("Employee Leave Balances")
	w.blank()
	w.header(balanceHeaders)
	for _, e := range employees {
		b := e.Balances
		w.row(e.Name, e.Email, string(e.Role), b.Annual.InexactFloat64(), b.Sick.InexactFloat64(),
			b.Personal.InexactFloat64(), b.Emergency.InexactFloat64())
	}

	if err := w.finish(len(balanceHeaders), 20); err != nil {
		return nil, err
	}
	return writeBuffer(x)
}

// =============================================================================
// SHEET WRITER
// =============================================================================

// sheetWriter appends rows to one sheet and keeps the first error.
type sheetWriter struct {
	f           *excelize.File
	sheet       string
	next        int
	boldStyle   int
	headerStyle int
	err         error
}

func newSheetWriter(f *excelize.File, sheet string) (*sheetWriter, error) {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E0E0E0"}},
	})
	if err != nil {
		return nil, err
	}
	return &sheetWriter{f: f, sheet: sheet, next: 1, boldStyle: bold, headerStyle: header}, nil
}

func (w *sheetWriter) row(values ...interface{}) int {
	n := w.next
	w.next++
	if w.err != nil {
		return n
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return n
	}
	w.err = w.f.SetSheetRow(w.sheet, cell, &values)
	return n
}

func (w *sheetWriter) blank() {
	w.next++
}

func (w *sheetWriter) title(text string) {
	n := w.row(text)
	w.style(n, 1, w.boldStyle)
}

func (w *sheetWriter) header(values []interface{}) {
	n := w.row(values...)
	w.style(n, len(values), w.headerStyle)
}

func (w *sheetWriter) style(row, cols, style int) {
	if w.err != nil {
		return
	}
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(cols, row)
	w.err = w.f.SetCellStyle(w.sheet, from, to, style)
}

func (w *sheetWriter) finish(cols int, width float64) error {
	if w.err != nil {
		return fmt.Errorf("failed to write sheet %s: %w", w.sheet, w.err)
	}
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	return w.f.SetColWidth(w.sheet, "A", last, width)
}

func writeBuffer(x *excelize.File) ([]byte, error) {
	buf, err := x.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
