package usecase

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/realfoodscore/backend/internal/domain"
)

// MinContainmentLength is the shortest phrase allowed to take part in a
// containment match, in bytes
const MinContainmentLength = 3

// Catalog is the immutable reference set of known ingredient phrases.
// It is safe for concurrent use.
type Catalog struct {
	phrases  map[domain.IngredientCategory][]string
	exact    map[string]domain.CategorySet
	partial  map[string]domain.CategorySet // proper word subsequences of catalog phrases
	maxWords int
	size     int
}

// DefaultCatalog returns the process-wide catalog built from the curated
// phrase lists
var DefaultCatalog = sync.OnceValue(func() *Catalog {
	return MustNewCatalog(catalogPhrases)
})

// MustNewCatalog is NewCatalog that panics on invalid data
func MustNewCatalog(phrases map[domain.IngredientCategory][]string) *Catalog {
	c, err := NewCatalog(phrases)
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog builds a catalog. Phrases go through the same normalization as
// parsed ingredients so every entry can match itself.
func NewCatalog(phrases map[domain.IngredientCategory][]string) (*Catalog, error) {
	c := &Catalog{
		phrases: make(map[domain.IngredientCategory][]string, len(phrases)),
		exact:   make(map[string]domain.CategorySet),
		partial: make(map[string]domain.CategorySet),
	}

	for category, list := range phrases {
		if !category.Valid() {
			return nil, fmt.Errorf("unknown ingredient category %q", category)
		}
		seen := make(map[string]bool, len(list))
		normalized := make([]string, 0, len(list))
		for _, raw := range list {
			phrase := normalizePhrase(raw)
			if phrase == "" {
				return nil, fmt.Errorf("catalog phrase %q in %s is empty after normalization", raw, category)
			}
			if seen[phrase] {
				continue
			}
			seen[phrase] = true
			normalized = append(normalized, phrase)
			c.exact[phrase] = c.exact[phrase].With(category)
		}
		sort.Strings(normalized)
		c.phrases[category] = normalized
		c.size += len(normalized)
	}

	for phrase, set := range c.exact {
		words := strings.Fields(phrase)
		if len(words) > c.maxWords {
			c.maxWords = len(words)
		}
		for n := 1; n < len(words); n++ {
			for i := 0; i+n <= len(words); i++ {
				key := strings.Join(words[i:i+n], " ")
				if len(key) < MinContainmentLength {
					continue
				}
				c.partial[key] = c.partial[key].Union(set)
			}
		}
	}

	return c, nil
}

// Size returns the number of (category, phrase) entries
func (c *Catalog) Size() int {
	return c.size
}

// Phrases returns a copy of the sorted phrases registered under category
func (c *Catalog) Phrases(category domain.IngredientCategory) []string {
	return append([]string(nil), c.phrases[category]...)
}

// Categories returns the categories that have at least one phrase
func (c *Catalog) Categories() []domain.IngredientCategory {
	out := make([]domain.IngredientCategory, 0, len(domain.AllCategories))
	for _, category := range domain.AllCategories {
		if len(c.phrases[category]) > 0 {
			out = append(out, category)
		}
	}
	return out
}

// Lookup returns the categories a phrase is registered under, if any
func (c *Catalog) Lookup(phrase string) (domain.CategorySet, bool) {
	set, ok := c.exact[phrase]
	return set, ok
}

// catalogPhrases operationalizes the real food guidance into matchable
// phrase lists. Entries listed twice across categories are genuinely
// ambiguous (amaranth is both a grain and the E123 dye).
var catalogPhrases = map[domain.IngredientCategory][]string{
	domain.AddedSugar: {
		// direct sugars
		"sugar", "cane sugar", "brown sugar", "raw sugar", "turbinado sugar",
		"powdered sugar", "confectioners sugar", "invert sugar", "coconut sugar",
		"demerara sugar", "muscovado sugar", "panela", "jaggery", "sucanat",
		"organic sugar", "evaporated cane juice", "cane juice crystals",
		"beet sugar", "date sugar", "icing sugar",

		// syrups
		"high fructose corn syrup", "hfcs", "corn syrup", "corn syrup solids",
		"maple syrup", "agave syrup", "agave nectar", "rice syrup",
		"brown rice syrup", "golden syrup", "malt syrup", "refiner's syrup",
		"sorghum syrup", "tapioca syrup", "glucose syrup", "glucose-fructose syrup",
		"isoglucose", "carob syrup", "yacon syrup", "date syrup", "oat syrup",

		// chemical sugars
		"glucose", "fructose", "dextrose", "sucrose", "maltose", "lactose",
		"galactose", "trehalose", "isomaltulose", "polydextrose",
		"crystalline fructose", "d-ribose", "mannose", "tagatose",

		// concentrates and extracts
		"fruit juice concentrate", "grape juice concentrate",
		"apple juice concentrate", "pear juice concentrate",
		"concentrated fruit juice", "fruit juice from concentrate",
		"date paste", "honey",

		// other forms
		"molasses", "blackstrap molasses", "caramel", "dextrin", "maltodextrin",
		"barley malt", "malt extract", "ethyl maltol", "florida crystals",
	},

	domain.IndustrialOil: {
		// seed and vegetable oils
		"vegetable oil", "soybean oil", "canola oil", "rapeseed oil",
		"corn oil", "sunflower oil", "safflower oil", "cottonseed oil",
		"grapeseed oil", "rice bran oil", "peanut oil", "sesame oil", "soy oil",

		// hydrogenated and trans fats
		"hydrogenated oil", "partially hydrogenated oil",
		"hydrogenated vegetable oil", "partially hydrogenated vegetable oil",
		"partially hydrogenated soybean oil", "hydrogenated soybean oil",
		"hydrogenated cottonseed oil", "hydrogenated palm oil",
		"hydrogenated palm kernel oil", "shortening", "vegetable shortening",
		"margarine", "interesterified oil",

		// blends and generic terms
		"vegetable oil blend", "frying oil", "cooking oil",
		"oil blend", "seed oil", "refined oil",

		// specific industrial variants
		"high oleic sunflower oil", "high oleic canola oil",
		"high oleic safflower oil", "expeller pressed canola oil",
		"refined soybean oil", "brominated vegetable oil", "bvo",
	},

	domain.Preservative: {
		// antioxidants
		"bha", "butylated hydroxyanisole", "bht", "butylated hydroxytoluene",
		"tbhq", "tertiary butylhydroquinone", "propyl gallate",

		// benzoates
		"sodium benzoate", "potassium benzoate", "benzoic acid",
		"benzyl benzoate", "calcium benzoate",

		// sorbates
		"potassium sorbate", "sodium sorbate", "sorbic acid",
		"calcium sorbate",

		// sulfites
		"sodium sulfite", "sodium bisulfite", "sodium metabisulfite",
		"potassium bisulfite", "potassium metabisulfite", "sulfur dioxide",
		"sulfites", "sulphites",

		// nitrates and nitrites
		"sodium nitrate", "sodium nitrite", "potassium nitrate",
		"potassium nitrite", "celery powder", "cultured celery powder",

		// propionates
		"calcium propionate", "sodium propionate", "propionic acid",

		// EDTA
		"edta", "disodium edta", "calcium disodium edta",
		"tetrasodium edta",

		// parabens
		"methylparaben", "propylparaben", "ethylparaben",

		// other preservatives
		"sodium erythorbate", "erythorbic acid", "natamycin",
		"nisin", "lysozyme", "hexamine", "sodium diacetate",
		"sodium lactate", "dimethyl dicarbonate",
	},

	domain.ArtificialColor: {
		// red dyes
		"red 40", "red no. 40", "red 40 lake", "allura red", "fd&c red 40",
		"fd&c red no. 40", "e129", "red 3", "red no. 3", "erythrosine",
		"fd&c red 3", "e127", "red 2", "amaranth", "e123",

		// yellow dyes
		"yellow 5", "yellow no. 5", "yellow 5 lake", "tartrazine", "fd&c yellow 5",
		"e102", "yellow 6", "yellow no. 6", "yellow 6 lake", "sunset yellow",
		"fd&c yellow 6", "e110",

		// blue dyes
		"blue 1", "blue no. 1", "blue 1 lake", "brilliant blue", "fd&c blue 1",
		"e133", "blue 2", "blue no. 2", "indigo carmine", "fd&c blue 2", "e132",

		// green dyes
		"green 3", "fast green", "fd&c green 3", "e143",

		// caramel color
		"caramel color", "caramel colour", "caramel coloring", "e150", "e150a",
		"e150b", "e150c", "e150d", "class iv caramel",

		// titanium dioxide
		"titanium dioxide", "e171",

		// other synthetic colors
		"citrus red 2", "orange b", "carbon black",

		// generic terms
		"artificial color", "artificial colors", "artificial colour",
		"color added", "certified color", "dye", "synthetic color",
		"fd&c colors", "lake", "aluminum lake",
	},

	domain.ArtificialSweetener: {
		"aspartame", "sucralose", "saccharin", "acesulfame potassium",
		"acesulfame k", "ace-k", "neotame", "advantame", "cyclamate",

		// sugar alcohols
		"erythritol", "xylitol", "sorbitol", "mannitol", "maltitol",
		"maltitol syrup", "isomalt", "lactitol", "hydrogenated starch hydrolysate",

		// branded names
		"splenda", "equal", "sweet'n low", "nutrasweet",

		// processed stevia extracts
		"stevia extract", "reb a", "rebaudioside", "rebaudioside a",
		"steviol glycosides",
	},

	domain.Emulsifier: {
		// emulsifiers
		"soy lecithin", "lecithin", "sunflower lecithin",
		"mono and diglycerides", "monoglycerides", "diglycerides",
		"polysorbate 60", "polysorbate 80", "polysorbate 20",
		"sorbitan monostearate", "sodium stearoyl lactylate",
		"calcium stearoyl lactylate", "datem", "diacetyl tartaric acid ester",
		"propylene glycol alginate",

		// gums and thickeners
		"xanthan gum", "guar gum", "locust bean gum", "carob bean gum",
		"gellan gum", "gum arabic", "acacia gum", "carrageenan", "agar", "pectin",
		"cellulose gum", "carboxymethyl cellulose", "methylcellulose",
		"microcrystalline cellulose",

		// modified starches
		"modified corn starch", "modified food starch", "modified starch",
		"modified tapioca starch", "modified wheat starch", "resistant starch",
	},

	domain.WholeFood: {
		// meat
		"chicken", "beef", "pork", "lamb", "turkey", "duck", "venison",
		"bison", "veal", "goat", "rabbit", "chicken breast", "ground beef",
		"steak", "bacon", "ham", "sausage",

		// seafood
		"fish", "salmon", "tuna", "cod", "halibut", "tilapia", "trout",
		"sardines", "anchovies", "mackerel", "shrimp", "prawns", "crab",
		"lobster", "scallops", "mussels", "clams", "oysters", "squid",

		// eggs
		"eggs", "egg", "egg whites", "egg yolks", "whole eggs",

		// dairy
		"milk", "whole milk", "cream", "heavy cream", "half and half",
		"cheese", "cheddar", "mozzarella", "parmesan", "feta",
		"yogurt", "greek yogurt", "cottage cheese", "sour cream",
		"cream cheese", "ricotta", "gouda", "swiss cheese", "brie",
		"whey", "buttermilk", "kefir",

		// vegetables
		"tomato", "tomatoes", "onion", "onions", "garlic", "carrot", "carrots",
		"celery", "bell pepper", "peppers", "broccoli", "spinach", "kale",
		"lettuce", "cabbage", "zucchini", "squash", "potato", "potatoes",
		"sweet potato", "mushrooms", "mushroom", "corn", "peas", "beans",
		"green beans", "cucumber", "cauliflower", "asparagus", "eggplant",
		"artichoke", "beets", "brussels sprouts", "bok choy", "arugula",
		"radish", "turnip", "parsnip", "leek", "shallot", "scallion",
		"green onion", "jalapeno", "serrano", "poblano", "habanero",

		// fruits
		"apple", "apples", "banana", "bananas", "orange", "oranges",
		"lemon", "lemons", "lime", "limes", "berries", "strawberries",
		"blueberries", "raspberries", "blackberries", "cranberries",
		"grapes", "mango", "pineapple", "papaya", "guava", "passion fruit",
		"peach", "peaches", "pear", "pears", "watermelon", "avocado",
		"cantaloupe", "honeydew", "kiwi", "pomegranate", "fig", "dates",
		"plum", "apricot", "cherry", "cherries", "grapefruit", "tangerine",
		"clementine", "coconut", "raisins", "prunes",

		// whole grains
		"whole wheat", "whole grain", "oats", "rolled oats", "steel cut oats",
		"rice", "brown rice", "wild rice", "quinoa", "barley", "buckwheat",
		"millet", "whole wheat flour", "oat flour", "farro", "spelt", "amaranth",
		"teff", "sorghum", "rye", "whole rye",

		// nuts and seeds
		"almonds", "walnuts", "pecans", "cashews", "peanuts", "pistachios",
		"macadamia", "hazelnuts", "brazil nuts", "pine nuts",
		"sunflower seeds", "pumpkin seeds", "chia seeds", "flax seeds",
		"flaxseed", "sesame seeds", "hemp seeds", "poppy seeds",

		// legumes
		"black beans", "kidney beans", "chickpeas", "garbanzo beans",
		"lentils", "pinto beans", "navy beans", "cannellini beans",
		"lima beans", "edamame", "split peas", "black eyed peas",

		// herbs
		"basil", "oregano", "thyme", "rosemary", "sage", "mint", "parsley",
		"cilantro", "dill", "chives", "tarragon", "marjoram", "bay leaf",
		"bay leaves", "lemongrass", "chervil",

		// spices
		"salt", "sea salt", "kosher salt", "pepper", "black pepper",
		"white pepper", "cumin", "paprika", "smoked paprika", "cinnamon",
		"turmeric", "ginger", "nutmeg", "cloves", "allspice", "cardamom",
		"coriander", "fennel", "anise", "star anise", "mustard seed",
		"cayenne", "chili powder", "curry powder", "garam masala",
		"saffron", "vanilla", "vanilla extract", "vanilla bean",

		// simple condiments
		"water", "vinegar", "apple cider vinegar", "balsamic vinegar",
		"red wine vinegar", "white wine vinegar", "rice vinegar",
		"lemon juice", "lime juice", "tomato paste", "mustard",
		"dijon mustard", "tamari", "coconut aminos", "fish sauce",

		// acceptable fats
		"olive oil", "extra virgin olive oil", "avocado oil", "coconut oil",
		"butter", "ghee", "lard", "tallow", "duck fat", "palm oil",

		// unsweetened cocoa
		"cocoa", "cocoa powder", "cacao", "cacao nibs", "unsweetened chocolate",
	},
}
