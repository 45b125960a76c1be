// Package dataset defines the JSON document that holds a user's complete
// budget in cloud storage, and the backup snapshots derived from it.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"budgettracker/internal/calc"
)

// SchemaVersion is stamped on every uploaded document.
const SchemaVersion = "1.0.0"

// Budget period statuses.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// TimeLayout is the ISO-8601 form used for lastModified and timestamp
// fields: UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Dataset is the full budget of one user.
//
// A nil Expenses or BudgetPeriods slice means the array was absent from
// the decoded document.
type Dataset struct {
	Version       string         `json:"version"`
	LastModified  Timestamp      `json:"lastModified"`
	Expenses      []Expense      `json:"expenses"`
	BudgetPeriods []BudgetPeriod `json:"budgetPeriods"`
}

// Backup is an immutable snapshot of a Dataset.
type Backup struct {
	Dataset
	Timestamp Timestamp `json:"timestamp"`
}

// New returns an empty dataset of the current schema version.
func New() *Dataset {
	return &Dataset{
		Version:       SchemaVersion,
		Expenses:      []Expense{},
		BudgetPeriods: []BudgetPeriod{},
	}
}

// Decode parses a document.
func Decode(data []byte) (*Dataset, error) {
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &d, nil
}

// DecodeBackup parses a backup snapshot.
func DecodeBackup(data []byte) (*Backup, error) {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return &b, nil
}

// Expense is the wire form of an expense.
type Expense struct {
	ID             ID        `json:"id"`
	BudgetPeriodID ID        `json:"budgetPeriodId,omitempty"`
	Name           string    `json:"name"`
	Amount         float64   `json:"amount"`
	Frequency      string    `json:"frequency"`
	StartMonth     int       `json:"startMonth"`
	EndMonth       int       `json:"endMonth"`
	MonthlyAmounts []float64 `json:"monthlyAmounts,omitempty"`

	// Extra holds fields this version does not know about. They are
	// written back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

// Calc converts the expense for the calculation engine. Twelve monthly
// amounts take precedence over the scalar amount.
func (e Expense) Calc() calc.Expense {
	amount := calc.Fixed(e.Amount)
	if len(e.MonthlyAmounts) == calc.MonthsPerYear {
		var values [calc.MonthsPerYear]float64
		copy(values[:], e.MonthlyAmounts)
		amount = calc.Variable(values)
	}
	return calc.Expense{
		ID:         string(e.ID),
		Name:       e.Name,
		Amount:     amount,
		Frequency:  calc.Frequency(e.Frequency),
		StartMonth: e.StartMonth,
		EndMonth:   e.EndMonth,
	}
}

type expenseFields Expense

var expenseKeys = keySet("id", "budgetPeriodId", "name", "amount", "frequency", "startMonth", "endMonth", "monthlyAmounts")

func (e Expense) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(expenseFields(e), e.Extra)
}

func (e *Expense) UnmarshalJSON(data []byte) error {
	var f expenseFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := unknownFields(data, expenseKeys)
	if err != nil {
		return err
	}
	f.Extra = extra
	*e = Expense(f)
	return nil
}

// BudgetPeriod is the wire form of a budget period.
type BudgetPeriod struct {
	ID              ID        `json:"id"`
	Year            int       `json:"year"`
	MonthlyPayment  float64   `json:"monthlyPayment"`
	PreviousBalance float64   `json:"previousBalance"`
	MonthlyPayments []float64 `json:"monthlyPayments,omitempty"`
	Status          string    `json:"status"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Income returns the period's income as a calculation amount.
func (p BudgetPeriod) Income() calc.Amount {
	if len(p.MonthlyPayments) == calc.MonthsPerYear {
		var values [calc.MonthsPerYear]float64
		copy(values[:], p.MonthlyPayments)
		return calc.Variable(values)
	}
	return calc.Fixed(p.MonthlyPayment)
}

type periodFields BudgetPeriod

var periodKeys = keySet("id", "year", "monthlyPayment", "previousBalance", "monthlyPayments", "status")

func (p BudgetPeriod) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(periodFields(p), p.Extra)
}

func (p *BudgetPeriod) UnmarshalJSON(data []byte) error {
	var f periodFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := unknownFields(data, periodKeys)
	if err != nil {
		return err
	}
	f.Extra = extra
	*p = BudgetPeriod(f)
	return nil
}

// ID is an opaque record identifier. Older documents carry numeric ids, so
// both JSON strings and numbers are accepted; ids are always written as
// strings.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Timestamp is a point in time encoded with TimeLayout.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to milliseconds in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

// String formats the timestamp with TimeLayout, or "" for the zero value.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be an ISO-8601 string: %w", err)
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(*s))
	if err != nil {
		return fmt.Errorf("timestamp must be an ISO-8601 string: %w", err)
	}
	*t = NewTimestamp(parsed)
	return nil
}

// marshalWithExtra encodes v and adds the extra fields that v does not
// already define.
func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, known := fields[k]; !known {
			fields[k] = raw
		}
	}
	return json.Marshal(fields)
}

// unknownFields returns the members of the JSON object data whose keys are
// not in known.
func unknownFields(data []byte, known map[string]struct{}) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	var extra map[string]json.RawMessage
	for k, v := range all {
		if _, ok := known[k]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	return extra, nil
}

func keySet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
