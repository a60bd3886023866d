package report

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
)

// AnalyticsFilter narrows analytics. CreatedFrom/CreatedTo bound the
// request creation time.
type AnalyticsFilter struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	EmployeeID  leave.EmployeeID
	Type        leave.LeaveType
	Status      leave.Status
}

func (f AnalyticsFilter) requestFilter() leave.RequestFilter {
	return leave.RequestFilter{
		EmployeeID:  f.EmployeeID,
		Type:        f.Type,
		Status:      f.Status,
		CreatedFrom: f.CreatedFrom,
		CreatedTo:   f.CreatedTo,
	}
}

type Analytics struct {
	TypeDistribution   []Share              `json:"leave_type_distribution"`
	StatusDistribution []Share              `json:"leave_status_distribution"`
	Monthly            []MonthlyLeave       `json:"monthly_leave_data"`
	Quarterly          []QuarterlyTrend     `json:"quarterly_trends"`
	Departments        []DepartmentLeave    `json:"department_leave_data"`
	TopUsers           []LeaveUser          `json:"top_leave_users"`
	BalanceRanges      []BalanceRange       `json:"leave_balance_data"`
	Managers           []ManagerPerformance `json:"manager_performance"`
	Totals             Totals               `json:"total_stats"`
}

// Share is one bucket of a distribution. Percentage is rounded.
type Share struct {
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type MonthlyLeave struct {
	Month string                              `json:"month"`
	Days  map[leave.LeaveType]decimal.Decimal `json:"days"`
	Total decimal.Decimal                     `json:"total"`

	start time.Time
}

type QuarterlyTrend struct {
	Quarter   string `json:"quarter"`
	Approved  int    `json:"approved"`
	Rejected  int    `json:"rejected"`
	Pending   int    `json:"pending"`
	Cancelled int    `json:"cancelled"`

	key int
}

// DepartmentLeave groups by role; there is no department model.
type DepartmentLeave struct {
	Department       string          `json:"department"`
	TotalRequests    int             `json:"total_requests"`
	ApprovedRequests int             `json:"approved_requests"`
	AverageDays      decimal.Decimal `json:"average_days"`

	approvedDays decimal.Decimal
}

type LeaveUser struct {
	EmployeeID    leave.EmployeeID `json:"employee_id"`
	EmployeeName  string           `json:"employee_name"`
	TotalDays     decimal.Decimal  `json:"total_days"`
	TotalRequests int              `json:"total_requests"`
}

type BalanceRange struct {
	Range         string `json:"balance_range"`
	EmployeeCount int    `json:"employee_count"`
}

type ManagerPerformance struct {
	ManagerID       leave.EmployeeID `json:"manager_id"`
	ManagerName     string           `json:"manager_name"`
	AvgResponseDays float64          `json:"avg_response_time"`
	ApprovalRate    int              `json:"approval_rate"`
	TotalRequests   int              `json:"total_requests"`

	approved     int
	responseDays float64
}

type Totals struct {
	TotalRequests       int             `json:"total_requests"`
	TotalApproved       int             `json:"total_approved"`
	TotalRejected       int             `json:"total_rejected"`
	TotalPending        int             `json:"total_pending"`
	AverageApprovedDays decimal.Decimal `json:"average_request_days"`
	AverageResponseDays float64         `json:"average_response_time"`
	MostPopularType     string          `json:"most_popular_leave_type"`
	PeakMonth           string          `json:"peak_leave_month"`
}

const topUsersLimit = 10

// Compute builds every metric from requests. employees feeds the balance
// ranges; names resolves employee and approver names.
func Compute(requests []leave.Request, employees []leave.Employee, names map[leave.EmployeeID]leave.Employee) *Analytics {
	return &Analytics{
		TypeDistribution:   typeDistribution(requests),
		StatusDistribution: statusDistribution(requests),
		Monthly:            monthly(requests),
		Quarterly:          quarterly(requests),
		Departments:        departments(requests, names),
		TopUsers:           topUsers(requests, names),
		BalanceRanges:      balanceRanges(employees),
		Managers:           managers(requests, names),
		Totals:             totals(requests),
	}
}

// =============================================================================
// DISTRIBUTIONS
// =============================================================================

func typeDistribution(requests []leave.Request) []Share {
	counts := make(map[leave.LeaveType]int)
	for _, r := range requests {
		counts[r.Type]++
	}
	shares := []Share{}
	for _, t := range leave.LeaveTypes {
		if n := counts[t]; n > 0 {
			shares = append(shares, Share{Label: capitalize(string(t)), Count: n, Percentage: percent(n, len(requests))})
		}
	}
	return shares
}

func statusDistribution(requests []leave.Request) []Share {
	counts := make(map[leave.Status]int)
	for _, r := range requests {
		counts[r.Status]++
	}
	shares := []Share{}
	for _, s := range leave.Statuses {
		if n := counts[s]; n > 0 {
			shares = append(shares, Share{Label: capitalize(string(s)), Count: n, Percentage: percent(n, len(requests))})
		}
	}
	return shares
}

// =============================================================================
// TIME SERIES
// =============================================================================

// monthly sums requested days per creation month, oldest first.
func monthly(requests []leave.Request) []MonthlyLeave {
	byMonth := make(map[time.Time]*MonthlyLeave)
	for _, r := range requests {
		created := r.CreatedAt.UTC()
		start := time.Date(created.Year(), created.Month(), 1, 0, 0, 0, 0, time.UTC)
		m, ok := byMonth[start]
		if !ok {
			m = &MonthlyLeave{
				Month: start.Format("Jan 2006"),
				Days:  make(map[leave.LeaveType]decimal.Decimal),
				Total: decimal.Zero,
				start: start,
			}
			byMonth[start] = m
		}
		m.Days[r.Type] = m.Days[r.Type].Add(r.TotalDays)
		m.Total = m.Total.Add(r.TotalDays)
	}

	out := make([]MonthlyLeave, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start.Before(out[j].start) })
	return out
}

// quarterly counts statuses per creation quarter, oldest first.
func quarterly(requests []leave.Request) []QuarterlyTrend {
	byQuarter := make(map[int]*QuarterlyTrend)
	for _, r := range requests {
		created := r.CreatedAt.UTC()
		q := (int(created.Month())-1)/3 + 1
		key := created.Year()*10 + q
		t, ok := byQuarter[key]
		if !ok {
			t = &QuarterlyTrend{Quarter: "Q" + strconv.Itoa(q) + " " + strconv.Itoa(created.Year()), key: key}
			byQuarter[key] = t
		}
		switch r.Status {
		case leave.StatusApproved:
			t.Approved++
		case leave.StatusRejected:
			t.Rejected++
		case leave.StatusPending:
			t.Pending++
		case leave.StatusCancelled:
			t.Cancelled++
		}
	}

	out := make([]QuarterlyTrend, 0, len(byQuarter))
	for _, t := range byQuarter {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// =============================================================================
// PEOPLE
// =============================================================================

func departments(requests []leave.Request, names map[leave.EmployeeID]leave.Employee) []DepartmentLeave {
	byRole := make(map[string]*DepartmentLeave)
	for _, r := range requests {
		role := string(names[r.EmployeeID].Role)
		if role == "" {
			role = "unknown"
		}
		d, ok := byRole[role]
		if !ok {
			d = &DepartmentLeave{Department: capitalize(role), AverageDays: decimal.Zero, approvedDays: decimal.Zero}
			byRole[role] = d
		}
		d.TotalRequests++
		if r.Status == leave.StatusApproved {
			d.ApprovedRequests++
			d.approvedDays = d.approvedDays.Add(r.TotalDays)
		}
	}

	out := make([]DepartmentLeave, 0, len(byRole))
	for _, d := range byRole {
		d.AverageDays = average(d.approvedDays, d.ApprovedRequests)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

// topUsers ranks employees by approved days, at most topUsersLimit.
func topUsers(requests []leave.Request, names map[leave.EmployeeID]leave.Employee) []LeaveUser {
	byEmployee := make(map[leave.EmployeeID]*LeaveUser)
	for _, r := range requests {
		u, ok := byEmployee[r.EmployeeID]
		if !ok {
			u = &LeaveUser{EmployeeID: r.EmployeeID, EmployeeName: nameOf(names, r.EmployeeID), TotalDays: decimal.Zero}
			byEmployee[r.EmployeeID] = u
		}
		u.TotalRequests++
		if r.Status == leave.StatusApproved {
			u.TotalDays = u.TotalDays.Add(r.TotalDays)
		}
	}

	out := make([]LeaveUser, 0, len(byEmployee))
	for _, u := range byEmployee {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalDays.Cmp(out[j].TotalDays); c != 0 {
			return c > 0
		}
		return out[i].EmployeeName < out[j].EmployeeName
	})
	if len(out) > topUsersLimit {
		out = out[:topUsersLimit]
	}
	return out
}

var balanceBuckets = []struct {
	label string
	max   decimal.Decimal
}{
	{"0-10 days", decimal.NewFromInt(10)},
	{"11-20 days", decimal.NewFromInt(20)},
	{"21-30 days", decimal.NewFromInt(30)},
}

// balanceRanges buckets employees by the sum of their four counters.
func balanceRanges(employees []leave.Employee) []BalanceRange {
	out := make([]BalanceRange, len(balanceBuckets)+1)
	for i, b := range balanceBuckets {
		out[i].Range = b.label
	}
	out[len(balanceBuckets)].Range = "31+ days"

	for _, e := range employees {
		total := e.Balances.Total()
		i := len(balanceBuckets)
		for j, b := range balanceBuckets {
			if total.LessThanOrEqual(b.max) {
				i = j
				break
			}
		}
		out[i].EmployeeCount++
	}
	return out
}

// managers reports on every decided request that names its approver.
func managers(requests []leave.Request, names map[leave.EmployeeID]leave.Employee) []ManagerPerformance {
	byManager := make(map[leave.EmployeeID]*ManagerPerformance)
	for _, r := range requests {
		if r.ApprovedBy == "" || r.ApprovedAt == nil {
			continue
		}
		m, ok := byManager[r.ApprovedBy]
		if !ok {
			m = &ManagerPerformance{ManagerID: r.ApprovedBy, ManagerName: nameOf(names, r.ApprovedBy)}
			byManager[r.ApprovedBy] = m
		}
		m.TotalRequests++
		if r.Status == leave.StatusApproved {
			m.approved++
		}
		m.responseDays += responseDays(r)
	}

	out := make([]ManagerPerformance, 0, len(byManager))
	for _, m := range byManager {
		m.AvgResponseDays = round1(m.responseDays / float64(m.TotalRequests))
		m.ApprovalRate = percent(m.approved, m.TotalRequests)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ManagerName < out[j].ManagerName })
	return out
}

// =============================================================================
// TOTALS
// =============================================================================

func totals(requests []leave.Request) Totals {
	t := Totals{TotalRequests: len(requests)}
	approvedDays := decimal.Zero
	var processed int
	var responseSum float64
	typeCounts := make(map[leave.LeaveType]int)
	monthCounts := make(map[time.Month]int)

	for _, r := range requests {
		switch r.Status {
		case leave.StatusApproved:
			t.TotalApproved++
			approvedDays = approvedDays.Add(r.TotalDays)
		case leave.StatusRejected:
			t.TotalRejected++
		case leave.StatusPending:
			t.TotalPending++
		}
		if r.ApprovedAt != nil {
			processed++
			responseSum += responseDays(r)
		}
		typeCounts[r.Type]++
		monthCounts[r.CreatedAt.UTC().Month()]++
	}

	t.AverageApprovedDays = average(approvedDays, t.TotalApproved)
	if processed > 0 {
		t.AverageResponseDays = round1(responseSum / float64(processed))
	}

	popular := leave.TypeAnnual
	for _, lt := range leave.LeaveTypes {
		if typeCounts[lt] > typeCounts[popular] {
			popular = lt
		}
	}
	t.MostPopularType = capitalize(string(popular))

	peak := time.January
	for m := time.January; m <= time.December; m++ {
		if monthCounts[m] > monthCounts[peak] {
			peak = m
		}
	}
	t.PeakMonth = peak.String()
	return t
}

// =============================================================================
// HELPERS
// =============================================================================

// responseDays is the decision delay in whole days, rounded up.
func responseDays(r leave.Request) float64 {
	d := r.ApprovedAt.Sub(r.CreatedAt)
	if d <= 0 {
		return 0
	}
	return math.Ceil(d.Hours() / 24)
}

// percent is n/total as a whole percentage, halves rounded up.
func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return (n*200 + total) / (2 * total)
}

func average(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(1)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func nameOf(names map[leave.EmployeeID]leave.Employee, id leave.EmployeeID) string {
	if e, ok := names[id]; ok && e.Name != "" {
		return e.Name
	}
	return string(id)
}
