package validator

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgettracker/internal/dataset"
)

func ptr(v float64) *float64 { return &v }

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"79", 79},
		{"79.50", 79.5},
		{"79,50", 79.5},
		{"1.234", 1234},
		{"0.125", 0.125},
		{".125", 0.125},
		{"1234.567", 1234.567},
		{"012.500", 12.5},
		{"1.234,50", 1234.5},
		{"1,234.50", 1234.5},
		{"1.234.567", 1234567},
		{"1,234,567", 1234567},
		{"  2.500 kr.", 2500},
		{"12,5 kr", 12.5},
		{"-100", 0},
		{"", 0},
		{"abc", 0},
		{"-", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateAmount(tt.in))
		})
	}
}

func TestValidateMonthRange(t *testing.T) {
	tests := []struct {
		start, end         int
		wantStart, wantEnd int
	}{
		{1, 12, 1, 12},
		{0, 13, 1, 12},
		{-4, 3, 1, 3},
		{9, 3, 9, 9},
		{15, 2, 12, 12},
	}

	for _, tt := range tests {
		s, e := ValidateMonthRange(tt.start, tt.end)
		assert.Equal(t, tt.wantStart, s, "start for %d..%d", tt.start, tt.end)
		assert.Equal(t, tt.wantEnd, e, "end for %d..%d", tt.start, tt.end)
	}
}

func TestValidateMonthlyAmounts(t *testing.T) {
	twelve := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	got := ValidateMonthlyAmounts(twelve)
	require.NotNil(t, got)
	assert.Equal(t, 12.0, got[11])

	assert.Nil(t, ValidateMonthlyAmounts(twelve[:11]))
	assert.Nil(t, ValidateMonthlyAmounts(nil))

	negative := append([]float64{}, twelve...)
	negative[3] = -1
	assert.Nil(t, ValidateMonthlyAmounts(negative))

	nan := append([]float64{}, twelve...)
	nan[0] = math.NaN()
	assert.Nil(t, ValidateMonthlyAmounts(nan))
}

func TestValidateExpense(t *testing.T) {
	valid := ExpenseInput{Name: "Netflix", Amount: ptr(79), Frequency: "monthly", StartMonth: 1, EndMonth: 12}

	t.Run("valid", func(t *testing.T) {
		res := ValidateExpense(valid)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("collects every problem", func(t *testing.T) {
		res := ValidateExpense(ExpenseInput{Name: "  ", Amount: ptr(-5), Frequency: "weekly", StartMonth: 0, EndMonth: 13})
		assert.False(t, res.Valid)
		assert.Len(t, res.Errors, 5)
	})

	t.Run("inverted range", func(t *testing.T) {
		in := valid
		in.StartMonth, in.EndMonth = 8, 3
		res := ValidateExpense(in)
		assert.Equal(t, []string{"endMonth must not be before startMonth"}, res.Errors)
	})

	t.Run("zero amount", func(t *testing.T) {
		in := valid
		in.Amount = ptr(0)
		assert.True(t, ValidateExpense(in).Valid)

		in.Amount = ptr(-0.01)
		assert.Equal(t, []string{"amount must be a non-negative number"}, ValidateExpense(in).Errors)
	})

	t.Run("missing amount", func(t *testing.T) {
		in := valid
		in.Amount = nil
		assert.Equal(t, []string{"amount is required"}, ValidateExpense(in).Errors)
	})

	t.Run("monthly amounts take precedence", func(t *testing.T) {
		in := valid
		in.Amount = nil
		in.MonthlyAmounts = make([]float64, 12)
		assert.True(t, ValidateExpense(in).Valid)

		in.MonthlyAmounts = make([]float64, 11)
		assert.Equal(t, []string{"monthlyAmounts must have exactly 12 entries"}, ValidateExpense(in).Errors)
	})

	t.Run("name too long", func(t *testing.T) {
		in := valid
		in.Name = strings.Repeat("æ", MaxNameLength+1)
		assert.False(t, ValidateExpense(in).Valid)

		in.Name = strings.Repeat("æ", MaxNameLength)
		assert.True(t, ValidateExpense(in).Valid)
	})
}

func TestValidatePeriod(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		res := ValidatePeriod(PeriodInput{Year: 2025, MonthlyPayment: 6000, PreviousBalance: -1500})
		assert.True(t, res.Valid)
	})

	t.Run("bad year and payment", func(t *testing.T) {
		res := ValidatePeriod(PeriodInput{Year: 25, MonthlyPayment: -1})
		assert.Equal(t, []string{
			"year must be between 1900 and 2200",
			"monthlyPayment must be a non-negative number",
		}, res.Errors)
	})

	t.Run("monthly payments", func(t *testing.T) {
		res := ValidatePeriod(PeriodInput{Year: 2025, MonthlyPayment: -1, MonthlyPayments: make([]float64, 12)})
		assert.True(t, res.Valid, "monthly payments replace the scalar payment")

		res = ValidatePeriod(PeriodInput{Year: 2025, MonthlyPayments: []float64{1, 2}})
		assert.Equal(t, []string{"monthlyPayments must have exactly 12 entries"}, res.Errors)
	})

	t.Run("non-finite balance", func(t *testing.T) {
		res := ValidatePeriod(PeriodInput{Year: 2025, PreviousBalance: math.Inf(1)})
		assert.Equal(t, []string{"previousBalance must be a number"}, res.Errors)
	})
}

func TestSanitizeExpense(t *testing.T) {
	in := dataset.Expense{
		ID:             "e1",
		Name:           "  Gym ",
		Amount:         -20,
		Frequency:      "weekly",
		StartMonth:     11,
		EndMonth:       2,
		MonthlyAmounts: []float64{1, 2},
		Extra:          map[string]json.RawMessage{"note": json.RawMessage(`"x"`)},
	}

	out := SanitizeExpense(in)

	assert.Equal(t, "Gym", out.Name)
	assert.Zero(t, out.Amount)
	assert.Equal(t, "monthly", out.Frequency)
	assert.Equal(t, 11, out.StartMonth)
	assert.Equal(t, 11, out.EndMonth)
	assert.Nil(t, out.MonthlyAmounts)
	assert.Equal(t, in.Extra, out.Extra)

	out.Extra["note"] = json.RawMessage(`"y"`)
	assert.JSONEq(t, `"x"`, string(in.Extra["note"]), "input must not be mutated")
}

func TestValidateCloudData(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d := dataset.New()
		d.BudgetPeriods = []dataset.BudgetPeriod{{ID: "p1", Year: 2025}}
		d.Expenses = []dataset.Expense{{ID: "e1", BudgetPeriodID: "p1"}, {ID: "e2"}}

		res := ValidateCloudData(d)
		assert.True(t, res.Valid)
		assert.False(t, res.Critical)
	})

	t.Run("expenses without periods is critical", func(t *testing.T) {
		d := dataset.New()
		d.Expenses = []dataset.Expense{{ID: "e1", BudgetPeriodID: "p1"}}

		res := ValidateCloudData(d)
		assert.False(t, res.Valid)
		assert.True(t, res.Critical)
	})

	t.Run("orphans block upload", func(t *testing.T) {
		d := dataset.New()
		d.BudgetPeriods = []dataset.BudgetPeriod{{ID: "p1"}}
		d.Expenses = []dataset.Expense{{ID: "e1", BudgetPeriodID: "p1"}, {ID: "e2", BudgetPeriodID: "p9"}}

		res := ValidateCloudData(d)
		assert.False(t, res.Valid)
		assert.False(t, res.Critical)
		assert.Equal(t, []dataset.ID{"e2"}, res.Orphans)
	})

	t.Run("missing arrays", func(t *testing.T) {
		res := ValidateCloudData(&dataset.Dataset{})
		assert.False(t, res.Valid)
		assert.Len(t, res.Errors, 2)

		assert.False(t, ValidateCloudData(nil).Valid)
	})

	t.Run("empty document is valid", func(t *testing.T) {
		assert.True(t, ValidateCloudData(dataset.New()).Valid)
	})
}

func TestValidateDownloadedData(t *testing.T) {
	t.Run("drops orphans with a warning", func(t *testing.T) {
		d, err := dataset.Decode([]byte(`{
			"version": "1.0.0",
			"expenses": [{"id": 1, "budgetPeriodId": 1, "name": "a"}, {"id": 2, "budgetPeriodId": 999, "name": "b"}],
			"budgetPeriods": [{"id": 1}]
		}`))
		require.NoError(t, err)

		res := ValidateDownloadedData(d)

		require.True(t, res.Valid)
		require.NotNil(t, res.Data)
		require.Len(t, res.Data.Expenses, 1)
		assert.Equal(t, dataset.ID("1"), res.Data.Expenses[0].ID)
		assert.Len(t, res.Warnings, 1)
		assert.Len(t, d.Expenses, 2, "input must not be mutated")
	})

	t.Run("missing arrays are invalid", func(t *testing.T) {
		d, err := dataset.Decode([]byte(`{"version": "1.0.0", "expenses": []}`))
		require.NoError(t, err)

		res := ValidateDownloadedData(d)
		assert.False(t, res.Valid)
		assert.Nil(t, res.Data)
		assert.Equal(t, []string{"document is missing the budgetPeriods array"}, res.Errors)
	})

	t.Run("sanitizes kept expenses", func(t *testing.T) {
		d := &dataset.Dataset{
			Expenses:      []dataset.Expense{{ID: "e1", Name: " x ", Amount: -3, Frequency: "monthly", StartMonth: 0, EndMonth: 20}},
			BudgetPeriods: []dataset.BudgetPeriod{},
		}

		res := ValidateDownloadedData(d)
		require.True(t, res.Valid)
		assert.Equal(t, dataset.SchemaVersion, res.Data.Version)
		e := res.Data.Expenses[0]
		assert.Equal(t, "x", e.Name)
		assert.Zero(t, e.Amount)
		assert.Equal(t, 1, e.StartMonth)
		assert.Equal(t, 12, e.EndMonth)
	})
}

type bindingTarget struct {
	Frequency string `binding:"required,frequency"`
	Month     int    `binding:"required,month"`
	Status    string `binding:"omitempty,period_status"`
}

func TestRegister(t *testing.T) {
	Register()

	ok := bindingTarget{Frequency: "quarterly", Month: 4, Status: "archived"}
	assert.NoError(t, binding.Validator.ValidateStruct(&ok))

	tests := []bindingTarget{
		{Frequency: "weekly", Month: 4},
		{Frequency: "monthly", Month: 13},
		{Frequency: "monthly", Month: 1, Status: "deleted"},
	}
	for _, tt := range tests {
		assert.Error(t, binding.Validator.ValidateStruct(&tt))
	}
}
