package complaints

// Category is one dimension of the fixed complaint taxonomy.
type Category string

// The closed category set. A review may match any number of them.
const (
	CategoryService       Category = "service"
	CategoryWaitTime      Category = "wait_time"
	CategoryFoodQuality   Category = "food_quality"
	CategoryPortionTemp   Category = "portion_temp"
	CategoryPricingValue  Category = "pricing_value"
	CategoryAmbience      Category = "ambience"
	CategoryOrderAccuracy Category = "order_accuracy"
	CategoryCleanliness   Category = "cleanliness"
)

// Pattern couples a category with its Dutch keyword pattern. The taxonomy is
// declarative data so the tagger stays table-driven and each category can be
// tested on its own.
type Pattern struct {
	Category Category
	Regex    string
}

// Taxonomy returns the complaint taxonomy in canonical order.
func Taxonomy() []Pattern {
	return []Pattern{
		{
			Category: CategoryService,
			Regex:    `bedien|servic|onvriend|gastvrij|attent|aandacht|personeel|medewerker`,
		},
		{
			Category: CategoryWaitTime,
			Regex:    `wacht|wachttijd|lang|traag|op tijd|duur|snel|verlaat`,
		},
		{
			Category: CategoryFoodQuality,
			Regex:    `slecht|niet lekker|not_lekker|taai|rauw|doorbak|verbrand|kwaliteit|smaak|vies|smerig|klef|droog`,
		},
		{
			Category: CategoryPortionTemp,
			Regex:    `koud|lauw|warmhoud|temperatuur|afgekoeld`,
		},
		{
			Category: CategoryPricingValue,
			Regex:    `duur|rekening|prijs|te duur|prijs-kwaliteit|overprijs|kosten`,
		},
		{
			Category: CategoryAmbience,
			Regex:    `muziek|lawaai|geluid|herrie|airco|warm|heet|klimaat|druk|sfeer`,
		},
		{
			Category: CategoryOrderAccuracy,
			Regex:    `vergeten|ontbrak|fout|verkeerd|bon|bestelling|niet gekregen`,
		},
		{
			Category: CategoryCleanliness,
			Regex:    `vies|smerig|vuil|schoon|hygi[eë]ne|insect|vlieg`,
		},
	}
}

// Categories lists all taxonomy categories in canonical order.
func Categories() []Category {
	tax := Taxonomy()
	out := make([]Category, len(tax))
	for i, p := range tax {
		out[i] = p.Category
	}
	return out
}
