package categorizer

// Built-in category names.
const (
	Income         = "Income"
	FoodDining     = "Food & Dining"
	Housing        = "Housing"
	Utilities      = "Utilities"
	Transportation = "Transportation"
	Entertainment  = "Entertainment"
	Healthcare     = "Healthcare"
	Shopping       = "Shopping"
	Education      = "Education"
	Travel         = "Travel"
	Other          = "Other"
)

// DefaultColor is used for categories registered without a color.
const DefaultColor = "#6c757d"

// Category is a named set of lowercase keywords with a display color.
type Category struct {
	Name     string   `json:"name" mapstructure:"name"`
	Keywords []string `json:"keywords" mapstructure:"keywords"`
	Color    string   `json:"color" mapstructure:"color"`
}

// Builtin returns the categories every classifier starts with, in
// registration order. The order decides which keyword wins when a
// description mentions several.
func Builtin() []Category {
	return []Category{
		{Income, []string{"salary", "paycheck", "pay roll", "deposit", "transfer in", "direct deposit", "refund", "cashback", "reward", "bonus", "interest", "dividend", "pension", "social security"}, "#28a745"},
		{FoodDining, []string{"grocery", "restaurant", "starbucks", "mcdonalds", "subway", "pizza", "food", "dining", "coffee", "lunch", "dinner", "breakfast", "cafe", "bakery", "delivery", "takeout", "whole foods", "trader joe", "walmart", "target", "costco"}, "#ffc107"},
		{Housing, []string{"rent", "mortgage", "housing", "apartment", "home", "property tax", "homeowner", "hoa", "maintenance"}, "#6f42c1"},
		{Utilities, []string{"electric", "electricity", "water", "internet", "phone", "cable", "gas bill", "utility", "sewer", "trash", "verizon", "at&t", "comcast", "spectrum"}, "#17a2b8"},
		{Transportation, []string{"gas", "gasoline", "fuel", "uber", "lyft", "taxi", "parking", "transit", "bus", "train", "metro", "car payment", "auto loan", "insurance", "dmv", "maintenance", "repair", "toll"}, "#fd7e14"},
		{Entertainment, []string{"netflix", "movie", "concert", "amazon", "streaming", "spotify", "hulu", "disney", "youtube", "gaming", "theater", "show", "ticket", "entertainment"}, "#e83e8c"},
		{Healthcare, []string{"doctor", "hospital", "pharmacy", "medical", "health", "dentist", "vision", "prescription", "clinic", "cvs", "walgreens", "insurance", "copay"}, "#dc3545"},
		{Shopping, []string{"amazon", "target", "walmart", "costco", "best buy", "shopping", "store", "retail", "clothing", "shoes", "electronics", "home depot", "lowes"}, "#6c757d"},
		{Education, []string{"school", "tuition", "education", "book", "university", "college", "student", "course", "training"}, "#20c997"},
		{Travel, []string{"hotel", "flight", "airline", "travel", "vacation", "booking", "expedia", "airbnb", "rental car"}, "#6610f2"},
		{Other, nil, "#6c757d"},
	}
}
