package categorizer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/aqlanhadi/ledgr/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := New()

	tests := []struct {
		description string
		want        string
	}{
		{"Salary Deposit", Income},
		{"STARBUCKS #1234", FoodDining},
		{"Uber trip", Transportation},
		{"AMAZON MKTPLACE", Shopping},
		{"Walmart Supercenter", Shopping},
		{"Car insurance", Healthcare},
		{"hotel coffee", FoodDining},
		{"netflix and rent", Housing},
		{"Comcast cable", Utilities},
		{"Random vendor", Other},
		{"", Other},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.description))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := New()
	first := c.Classify("hotel coffee")
	for i := 0; i < 50; i++ {
		require.Equal(t, first, c.Classify("hotel coffee"))
	}
}

func TestClassify_MatchesLinearScan(t *testing.T) {
	c := New()
	descriptions := []string{
		"whole foods market", "at&t wireless", "home depot", "best buy electronics",
		"gas station", "gas bill", "spotify premium", "cvs pharmacy", "student loan",
		"airbnb stay", "property tax", "interest payment", "trader joe's",
	}

	for _, d := range descriptions {
		want := Other
		for _, kw := range c.keywords {
			if contains(d, kw) {
				want = c.owner[kw]
				break
			}
		}
		assert.Equal(t, want, c.Classify(d), d)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestClassifyAmount(t *testing.T) {
	c := New()

	assert.Equal(t, Income, c.ClassifyAmount("Salary Deposit", decimal.NewFromInt(3000)))
	assert.Equal(t, Income, c.ClassifyAmount("Wire XYZ", decimal.NewFromInt(1500)))
	assert.Equal(t, Other, c.ClassifyAmount("Wire XYZ", decimal.NewFromInt(1000)))
	assert.Equal(t, Other, c.ClassifyAmount("Misc fee", decimal.RequireFromString("-2.00")))
	assert.Equal(t, Other, c.ClassifyAmount("Wire XYZ", decimal.NewFromInt(-5000)))
	assert.Equal(t, FoodDining, c.ClassifyAmount("Coffee", decimal.NewFromInt(2000)))
}

func TestRegister(t *testing.T) {
	c := New()

	require.NoError(t, c.Register(Category{Name: "Pets", Keywords: []string{"Petco", " vet "}}))
	assert.Equal(t, "Pets", c.Classify("PETCO #123"))
	assert.Equal(t, "Pets", c.Classify("town vet"))
	// clinic was registered long before vet
	assert.Equal(t, Healthcare, c.Classify("city vet clinic"))
	assert.Equal(t, DefaultColor, c.Colors()["Pets"])
	assert.True(t, c.Has("Pets"))

	names := c.Names()
	assert.Equal(t, "Pets", names[len(names)-1])
}

func TestRegister_CollisionGoesToLatest(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(Category{Name: "Subscriptions", Keywords: []string{"netflix"}, Color: "#000000"}))

	assert.Equal(t, "Subscriptions", c.Classify("NETFLIX.COM"))
	// netflix keeps its original position, so rent still comes first
	assert.Equal(t, Housing, c.Classify("netflix and rent"))
}

func TestRegister_ReplacesDefinitionButKeepsLookup(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(Category{Name: Travel, Keywords: []string{"cruise"}, Color: "#111111"}))

	assert.Equal(t, "#111111", c.Colors()[Travel])
	assert.Equal(t, Travel, c.Classify("cruise line"))
	assert.Equal(t, Travel, c.Classify("hotel stay"))
	assert.Len(t, c.Names(), 11)
}

func TestRegister_Invalid(t *testing.T) {
	c := New()

	assert.ErrorIs(t, c.Register(Category{Name: "  "}), ErrInvalidCategory)
	assert.ErrorIs(t, c.Register(Category{Name: Other, Keywords: []string{"misc"}}), ErrInvalidCategory)
	assert.Equal(t, Other, c.Classify("misc"))
}

func TestClone_IsIndependent(t *testing.T) {
	base := New()
	scoped := base.Clone()
	require.NoError(t, scoped.Register(Category{Name: "Pets", Keywords: []string{"petco"}}))

	assert.Equal(t, "Pets", scoped.Classify("petco"))
	assert.Equal(t, Other, base.Classify("petco"))
	assert.False(t, base.Has("Pets"))
}

func TestColors(t *testing.T) {
	colors := New().Colors()

	assert.Len(t, colors, 11)
	assert.Equal(t, "#28a745", colors[Income])
	assert.Equal(t, "#6610f2", colors[Travel])
	assert.Equal(t, "#6c757d", colors[Other])
}

func TestSuggest(t *testing.T) {
	c := New()

	got := c.Suggest("coffee")
	require.Len(t, got, 1)
	assert.Equal(t, FoodDining, got[0].Category)
	assert.InDelta(t, 1.0, got[0].Confidence, 1e-9)

	got = c.Suggest("amazon prime video")
	require.Len(t, got, 2)
	assert.Equal(t, Entertainment, got[0].Category)
	assert.Equal(t, Shopping, got[1].Category)

	got = c.Suggest("xpay rollx")
	require.Len(t, got, 1)
	assert.Equal(t, Income, got[0].Category)
	assert.InDelta(t, 0.8, got[0].Confidence, 1e-9)
}

func TestSuggest_TopThree(t *testing.T) {
	got := New().Suggest("amazon rent uber coffee")

	require.Len(t, got, 3)
	assert.Equal(t, []string{FoodDining, Housing, Transportation},
		[]string{got[0].Category, got[1].Category, got[2].Category})
}

func TestSuggest_NoMatch(t *testing.T) {
	c := New()
	assert.Empty(t, c.Suggest(""))
	assert.Empty(t, c.Suggest("zzz qqq"))
}

func TestBulkAssign(t *testing.T) {
	c := New()
	txs := []ledger.Transaction{
		{Description: "a", Category: Other},
		{Description: "b"},
		{Description: "c", Category: Income},
	}

	require.NoError(t, c.BulkAssign(txs, []int{0, 2}, Travel))
	assert.Equal(t, Travel, txs[0].Category)
	assert.Equal(t, "", txs[1].Category)
	assert.Equal(t, Travel, txs[2].Category)
	assert.Equal(t, "c", txs[2].Description)
}

func TestBulkAssign_UnknownCategory(t *testing.T) {
	c := New()
	txs := []ledger.Transaction{{Description: "a"}}

	err := c.BulkAssign(txs, []int{0}, "Food")
	require.ErrorIs(t, err, ErrUnknownCategory)
	assert.Contains(t, err.Error(), `did you mean "Food & Dining"`)

	err = c.BulkAssign(txs, []int{0}, "income")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Equal(t, "", txs[0].Category)
}

func TestBulkAssign_BadIndexChangesNothing(t *testing.T) {
	c := New()
	txs := []ledger.Transaction{{Description: "a"}, {Description: "b"}}

	err := c.BulkAssign(txs, []int{0, 5}, Travel)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, "", txs[0].Category)
}

func TestClassifyAll(t *testing.T) {
	c := New()
	txs := []ledger.Transaction{
		{Description: "Starbucks", Amount: decimal.NewFromInt(-5)},
		{Description: "Rent", Category: Travel},
		{Description: "netflix", Category: Other},
		{Description: "Employer ACH", Amount: decimal.NewFromInt(2500)},
	}

	n := c.ClassifyAll(txs)

	assert.Equal(t, 3, n)
	assert.Equal(t, FoodDining, txs[0].Category)
	assert.Equal(t, Travel, txs[1].Category)
	assert.Equal(t, Entertainment, txs[2].Category)
	assert.Equal(t, Income, txs[3].Category)
}

func TestStats(t *testing.T) {
	c := New()
	txs := []ledger.Transaction{
		{Category: Income, Amount: decimal.NewFromInt(3000)},
		{Category: FoodDining, Amount: decimal.RequireFromString("-4.50")},
		{Category: FoodDining, Amount: decimal.NewFromInt(2)},
		{Category: "Unregistered", Amount: decimal.NewFromInt(99)},
	}

	stats := c.Stats(txs)

	require.Len(t, stats, 2)
	assert.Equal(t, Income, stats[0].Name)
	assert.Equal(t, 1, stats[0].Count)
	assert.True(t, stats[0].Income.Equal(decimal.NewFromInt(3000)))
	assert.True(t, stats[0].Expense.IsZero())
	assert.Equal(t, "#28a745", stats[0].Color)

	assert.Equal(t, FoodDining, stats[1].Name)
	assert.Equal(t, 2, stats[1].Count)
	assert.True(t, stats[1].Total.Equal(decimal.RequireFromString("-2.5")))
	assert.True(t, stats[1].Income.Equal(decimal.NewFromInt(2)))
	assert.True(t, stats[1].Expense.Equal(decimal.RequireFromString("4.5")))
}

func TestProgress(t *testing.T) {
	p := Progress([]ledger.Transaction{
		{Category: ""}, {Category: Other}, {Category: Income}, {Category: "  "},
	})

	assert.Equal(t, ProgressStats{Total: 4, Categorized: 2, Uncategorized: 2, Percentage: 50}, p)
	assert.Equal(t, ProgressStats{}, Progress(nil))
}

func TestConcurrentClassifyAndRegister(t *testing.T) {
	c := New()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.Equal(t, FoodDining, c.Classify("coffee"))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 20; j++ {
			_ = c.Register(Category{Name: fmt.Sprintf("Custom %d", j), Keywords: []string{fmt.Sprintf("vendor%d", j)}})
		}
	}()
	wg.Wait()

	assert.Equal(t, "Custom 7", c.Classify("paid vendor7 today"))
}
