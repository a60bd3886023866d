package leave

// Policy holds the organisation-wide leave settings.
type Policy struct {
	// DefaultBalances seeds every newly registered employee.
	DefaultBalances Balances

	// RefundOnCancel credits the debited days back when an approved
	// request is cancelled. Off by default.
	RefundOnCancel bool

	// HolidayCountry selects the holiday calendar used for day counting.
	// Empty means holidays of every country count.
	HolidayCountry string
}

// DefaultPolicy: annual 25, sick 10, personal 3, emergency 5, no refund.
func DefaultPolicy() Policy {
	return Policy{
		DefaultBalances: NewBalances(25, 10, 3, 5),
		RefundOnCancel:  false,
		HolidayCountry:  "LK",
	}
}
