// Package attendance turns the rows of the portal's monthly summary table into a typed Summary.
// Classification is pure: no I/O, and it never fails. Rows that match nothing are ignored and
// categories that never match keep their zero defaults.
package attendance

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Row is one extracted table row. Cell 0 is the label.
type Row []string

// Label returns the first cell, or "" for an empty row.
func (r Row) Label() string {
	return r.Cell(0)
}

// Cell returns the i-th cell, or "" when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Category identifies one of the summary table's row kinds.
type Category uint8

const (
	CategoryTarget Category = 1 << iota // monthly target hours
	CategoryTotal                       // total hours and days worked
	CategoryLate                        // minutes late
	CategoryAbsent                      // absence hours and occurrences
)

// String returns the category name used in logs.
func (c Category) String() string {
	switch c {
	case CategoryTarget:
		return "target"
	case CategoryTotal:
		return "total"
	case CategoryLate:
		return "late"
	case CategoryAbsent:
		return "absent"
	}
	var parts []string
	for _, one := range []Category{CategoryTarget, CategoryTotal, CategoryLate, CategoryAbsent} {
		if c&one != 0 {
			parts = append(parts, one.String())
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// defaultText is what text fields hold when their row never matched or the cell was blank.
const defaultText = "0"

// Summary is the aggregated attendance for the current month.
type Summary struct {
	TargetHours string `json:"target_hours"`
	TotalHours  string `json:"total_hours"`
	TotalDays   string `json:"total_days"`
	LateMinutes int    `json:"late_minutes"`
	AbsentHours string `json:"absent_hours"`
	AbsentTimes int    `json:"absent_times"`

	// Matched records which categories were seen at least once.
	Matched Category `json:"-"`
}

// NewSummary returns a Summary with every field at its default.
func NewSummary() Summary {
	return Summary{
		TargetHours: defaultText,
		TotalHours:  defaultText,
		TotalDays:   defaultText,
		AbsentHours: defaultText,
	}
}

// Empty reports whether no row of the table matched any category.
func (s Summary) Empty() bool {
	return s.Matched == 0
}

// Labels holds the label substrings recognised for each category.
type Labels struct {
	Target string `yaml:"target"`
	Total  string `yaml:"total"`
	Late   string `yaml:"late"`
	Absent string `yaml:"absent"`
}

// DefaultLabels returns the labels the portal renders for a Thai-locale account.
func DefaultLabels() Labels {
	return Labels{
		Target: "ชั่วโมงการทำงานรายเดือน",
		Total:  "TOTAL WORKING HOURS",
		Late:   "เข้าสาย",
		Absent: "ขาดงาน",
	}
}

// withDefaults fills blank labels from DefaultLabels.
func (l Labels) withDefaults() Labels {
	d := DefaultLabels()
	if strings.TrimSpace(l.Target) == "" {
		l.Target = d.Target
	}
	if strings.TrimSpace(l.Total) == "" {
		l.Total = d.Total
	}
	if strings.TrimSpace(l.Late) == "" {
		l.Late = d.Late
	}
	if strings.TrimSpace(l.Absent) == "" {
		l.Absent = d.Absent
	}
	return l
}

type rule struct {
	category Category
	needle   string
}

// Classifier matches row labels case-insensitively against a fixed, ordered rule list.
type Classifier struct {
	fold  cases.Caser
	rules []rule
}

// NewClassifier builds a classifier; blank labels fall back to the defaults.
func NewClassifier(labels Labels) *Classifier {
	labels = labels.withDefaults()
	fold := cases.Fold()
	// Order is priority: the first rule that matches a label claims the row.
	return &Classifier{
		fold: fold,
		rules: []rule{
			{CategoryTarget, fold.String(labels.Target)},
			{CategoryTotal, fold.String(labels.Total)},
			{CategoryLate, fold.String(labels.Late)},
			{CategoryAbsent, fold.String(labels.Absent)},
		},
	}
}

// Classify aggregates rows with the default labels.
func Classify(rows []Row) Summary {
	return NewClassifier(DefaultLabels()).Classify(rows)
}

// Classify scans every row in order. A later row of the same category overwrites an earlier one.
func (c *Classifier) Classify(rows []Row) Summary {
	s := NewSummary()
	for _, row := range rows {
		cat, ok := c.match(row.Label())
		if !ok {
			continue
		}
		s.Matched |= cat
		switch cat {
		case CategoryTarget:
			s.TargetHours = textOrDefault(row.Cell(1))
		case CategoryTotal:
			s.TotalHours = textOrDefault(row.Cell(1))
			s.TotalDays = textOrDefault(row.Cell(2))
		case CategoryLate:
			s.LateMinutes = parseCount(row.Cell(1))
		case CategoryAbsent:
			s.AbsentHours = textOrDefault(row.Cell(1))
			s.AbsentTimes = parseCount(row.Cell(2))
		}
	}
	return s
}

func (c *Classifier) match(label string) (Category, bool) {
	if label == "" {
		return 0, false
	}
	folded := c.fold.String(label)
	for _, r := range c.rules {
		if strings.Contains(folded, r.needle) {
			return r.category, true
		}
	}
	return 0, false
}

func textOrDefault(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultText
	}
	return v
}

// parseCount accepts an unsigned run of decimal digits in any script, so Thai "๑๕" is 15.
// Anything else, or a value that overflows int, counts as zero.
func parseCount(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	n := 0
	for _, r := range v {
		d, ok := digitValue(r)
		if !ok || n > (math.MaxInt-d)/10 {
			return 0
		}
		n = n*10 + d
	}
	return n
}

// digitValue returns the value of a Unicode decimal digit. Decimal digits are laid out in
// consecutive blocks of ten, each block starting at zero.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	if !unicode.IsDigit(r) {
		return 0, false
	}
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return int(r-start) % 10, true
}
