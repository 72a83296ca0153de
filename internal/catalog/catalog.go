package catalog

import "errors"

var (
	ErrUnknownProduct  = errors.New("unknown product")
	ErrGradeNotOffered = errors.New("grade not offered for this product")
)

// Grade is a kashrut/quality tier. Pricing varies by grade and not every
// product is offered at every grade.
type Grade string

const (
	GradeKosher       Grade = "kosher"
	GradeMehadrin     Grade = "mehadrin"
	GradeMehadrinPlus Grade = "mehadrin_plus"
)

var gradeText = map[Grade]string{
	GradeKosher:       "כשר",
	GradeMehadrin:     "מהדרין",
	GradeMehadrinPlus: "מהדרין מן המהדרין",
}

// GradeText returns the Hebrew display text for a grade, or the raw grade
// value when it is not a known tier.
func GradeText(g Grade) string {
	if t, ok := gradeText[g]; ok {
		return t
	}
	return string(g)
}

type Product struct {
	ID   string
	Name string
	// Prices holds the unit price in whole shekels per offered grade.
	Prices map[Grade]int
}

// Full four-species sets and standalone etrogim come in three origin
// traditions and three grades. Single species are sold at one tier.
var products = map[string]Product{
	"set-yemenite": {
		ID:   "set-yemenite",
		Name: "סט תימני",
		Prices: map[Grade]int{
			GradeKosher:       250,
			GradeMehadrin:     350,
			GradeMehadrinPlus: 480,
		},
	},
	"set-moroccan": {
		ID:   "set-moroccan",
		Name: "סט מרוקאי",
		Prices: map[Grade]int{
			GradeKosher:       230,
			GradeMehadrin:     330,
			GradeMehadrinPlus: 450,
		},
	},
	"set-ashkenazi": {
		ID:   "set-ashkenazi",
		Name: "סט אשכנזי",
		Prices: map[Grade]int{
			GradeKosher:       240,
			GradeMehadrin:     340,
			GradeMehadrinPlus: 460,
		},
	},
	"etrog-yemenite": {
		ID:   "etrog-yemenite",
		Name: "אתרוג תימני",
		Prices: map[Grade]int{
			GradeKosher:       120,
			GradeMehadrin:     180,
			GradeMehadrinPlus: 260,
		},
	},
	"etrog-moroccan": {
		ID:   "etrog-moroccan",
		Name: "אתרוג מרוקאי",
		Prices: map[Grade]int{
			GradeKosher:       110,
			GradeMehadrin:     170,
			GradeMehadrinPlus: 250,
		},
	},
	"etrog-ashkenazi": {
		ID:   "etrog-ashkenazi",
		Name: "אתרוג אשכנזי",
		Prices: map[Grade]int{
			GradeKosher:       115,
			GradeMehadrin:     175,
			GradeMehadrinPlus: 255,
		},
	},
	"lulav": {
		ID:     "lulav",
		Name:   "לולב",
		Prices: map[Grade]int{GradeKosher: 34},
	},
	"hadas": {
		ID:     "hadas",
		Name:   "הדס",
		Prices: map[Grade]int{GradeKosher: 25},
	},
	"arava": {
		ID:     "arava",
		Name:   "ערבה",
		Prices: map[Grade]int{GradeKosher: 15},
	},
}

// Lookup returns the catalog entry for a product id.
func Lookup(productID string) (Product, error) {
	p, ok := products[productID]
	if !ok {
		return Product{}, ErrUnknownProduct
	}
	return p, nil
}

// UnitPrice returns the whole-shekel unit price for a product at a grade.
func UnitPrice(productID string, grade Grade) (int, error) {
	p, ok := products[productID]
	if !ok {
		return 0, ErrUnknownProduct
	}
	price, ok := p.Prices[grade]
	if !ok {
		return 0, ErrGradeNotOffered
	}
	return price, nil
}
