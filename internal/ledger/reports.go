package ledger

import (
	"fmt"
	"time"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAnnual  Period = "annual"
)

var monthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// Window is a half-open [Start, End) range of local time.
type Window struct {
	Period Period    `json:"period"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func (w Window) contains(t time.Time) bool { return !t.Before(w.Start) && t.Before(w.End) }

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WindowFor resolves a period against now. Weekly covers the last seven
// calendar days including today. Monthly and annual use year and month, or
// the current ones when zero.
func WindowFor(p Period, now time.Time, year int, month time.Month) (Window, error) {
	today := midnight(now)
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	if month < time.January || month > time.December {
		return Window{}, fmt.Errorf("mês %d: %w", month, ErrInvalidDate)
	}
	loc := now.Location()
	switch p {
	case PeriodDaily:
		return Window{p, today, today.AddDate(0, 0, 1)}, nil
	case PeriodWeekly:
		return Window{p, today.AddDate(0, 0, -6), today.AddDate(0, 0, 1)}, nil
	case PeriodMonthly:
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return Window{p, start, start.AddDate(0, 1, 0)}, nil
	case PeriodAnnual:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return Window{p, start, start.AddDate(1, 0, 0)}, nil
	}
	return Window{}, fmt.Errorf("%q: %w", p, ErrInvalidPeriod)
}

// Summary aggregates non-reversed sales. Gross is before discounts.
type Summary struct {
	Count     int     `json:"count"`
	Gross     float64 `json:"gross"`
	Discounts float64 `json:"discounts"`
	Net       float64 `json:"net"`
	Cost      float64 `json:"cost"`
	Profit    float64 `json:"profit"`
	Margin    float64 `json:"margin"`
}

func (s *Summary) add(t Transaction) {
	s.Count++
	s.Net += t.Amount
	s.Discounts += t.Discount
	s.Cost += t.Cost
}

func (s *Summary) finish() {
	s.Gross = s.Net + s.Discounts
	s.Profit = s.Net - s.Cost
	s.Margin = margin(s.Profit, s.Gross)
}

func margin(profit, gross float64) float64 {
	if gross > 0 {
		return profit / gross * 100
	}
	return 0
}

type DayBucket struct {
	Date   string  `json:"date"`
	Paid   float64 `json:"paid"`
	Unpaid float64 `json:"unpaid"`
}

type MonthBucket struct {
	Month    int     `json:"month"` // 1-12
	Label    string  `json:"label"`
	Paid     float64 `json:"paid"`
	Unpaid   float64 `json:"unpaid"`
	Cost     float64 `json:"cost"`
	Discount float64 `json:"discount"`
	Gross    float64 `json:"gross"`
	Profit   float64 `json:"profit"`
	Margin   float64 `json:"margin"`
}

type PeriodReport struct {
	Window
	Summary      Summary       `json:"summary"`
	Days         []DayBucket   `json:"days,omitempty"`
	Months       []MonthBucket `json:"months,omitempty"`
	Transactions []Transaction `json:"transactions"`
}

// PeriodReport builds the report for the given period.
func (l *Ledger) PeriodReport(p Period, year int, month time.Month) (PeriodReport, error) {
	w, err := WindowFor(p, l.now().In(l.loc), year, month)
	if err != nil {
		return PeriodReport{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return BuildPeriodReport(l.state.Transactions, w), nil
}

// BuildPeriodReport lists every transaction in the window and aggregates its
// sales. Daily, weekly and monthly reports get zero-filled day buckets; the
// annual report gets twelve month buckets instead.
func BuildPeriodReport(txs []Transaction, w Window) PeriodReport {
	loc := w.Start.Location()
	r := PeriodReport{Window: w, Transactions: []Transaction{}}

	dayIndex := map[string]int{}
	if w.Period == PeriodAnnual {
		r.Months = make([]MonthBucket, 12)
		for i := range r.Months {
			r.Months[i] = MonthBucket{Month: i + 1, Label: monthLabels[i]}
		}
	} else {
		for d := w.Start; d.Before(w.End); d = d.AddDate(0, 0, 1) {
			key := d.Format(dateLayout)
			dayIndex[key] = len(r.Days)
			r.Days = append(r.Days, DayBucket{Date: key})
		}
	}

	for _, t := range txs {
		at := t.Time(loc)
		if !w.contains(at) {
			continue
		}
		r.Transactions = append(r.Transactions, t.clone())
		if !t.IsSale() {
			continue
		}
		r.Summary.add(t)
		unpaid := t.Status == StatusUnpaid

		if r.Months != nil {
			b := &r.Months[at.Month()-1]
			if unpaid {
				b.Unpaid += t.Amount
			} else {
				b.Paid += t.Amount
			}
			b.Cost += t.Cost
			b.Discount += t.Discount
			continue
		}
		if i, ok := dayIndex[at.Format(dateLayout)]; ok {
			if unpaid {
				r.Days[i].Unpaid += t.Amount
			} else {
				r.Days[i].Paid += t.Amount
			}
		}
	}

	for i := range r.Months {
		b := &r.Months[i]
		net := b.Paid + b.Unpaid
		b.Gross = net + b.Discount
		b.Profit = net - b.Cost
		b.Margin = margin(b.Profit, b.Gross)
	}
	r.Summary.finish()
	return r
}
