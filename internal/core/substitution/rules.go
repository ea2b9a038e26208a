package substitution

// Rule 一個食材 key 對應的替代品清單
type Rule struct {
	Key           string
	Substitutions []Substitution
}

func sub(name, ratio, note string) Substitution {
	return Substitution{Ingredient: name, Ratio: ratio, Note: note}
}

// DefaultRules 內建替代規則。部分比對依此順序掃描，順序不可改變。
var DefaultRules = []Rule{
	{"butter", []Substitution{
		sub("Olive Oil", "3/4", "For baking, reduce liquid by 3 tbsp per cup"),
		sub("Coconut Oil", "1:1", "Best for baking and sautéing"),
		sub("Applesauce", "1/2", "For baking, reduces fat content"),
	}},
	{"milk", []Substitution{
		sub("Almond Milk", "1:1", "Unsweetened for savory dishes"),
		sub("Oat Milk", "1:1", "Creamy texture, good for baking"),
		sub("Coconut Milk", "1:1", "Adds slight coconut flavor"),
		sub("Soy Milk", "1:1", "Neutral flavor, high protein"),
	}},
	{"heavy cream", []Substitution{
		sub("Coconut Cream", "1:1", "For dairy-free option"),
		sub("Cashew Cream", "1:1", "Blend cashews with water"),
		sub("Half & Half + Butter", "7/8 cup half & half + 1/8 cup butter", "Closest to heavy cream"),
	}},
	{"cream cheese", []Substitution{
		sub("Greek Yogurt", "1:1", "Lower fat, tangy flavor"),
		sub("Coconut Cream", "1:1", "Dairy-free option"),
		sub("Silken Tofu", "1:1", "Blend until smooth"),
	}},
	{"all-purpose flour", []Substitution{
		sub("Whole Wheat Flour", "1:1", "Use 3/4 cup whole wheat + 1/4 cup all-purpose for better texture"),
		sub("Almond Flour", "1/4 cup less", "Gluten-free, higher fat"),
		sub("Coconut Flour", "1/4", "Highly absorbent, use with eggs"),
		sub("Oat Flour", "1:1", "Blend rolled oats to make flour"),
	}},
	{"wheat flour", []Substitution{
		sub("Rice Flour", "1:1", "For gluten-free baking"),
		sub("Buckwheat Flour", "1:1", "Nutty flavor, gluten-free"),
		sub("Quinoa Flour", "1:1", "High protein, mild flavor"),
	}},
	{"egg", []Substitution{
		sub("Flax Egg", "1 tbsp ground flaxseed + 3 tbsp water", "Let sit 5 minutes, equals 1 egg"),
		sub("Chia Egg", "1 tbsp chia seeds + 3 tbsp water", "Similar to flax egg"),
		sub("Applesauce", "1/4 cup", "For binding in baking"),
		sub("Mashed Banana", "1/4 cup", "Adds moisture and sweetness"),
		sub("Silken Tofu", "1/4 cup blended", "Good for dense baked goods"),
	}},
	{"white sugar", []Substitution{
		sub("Honey", "3/4 cup honey = 1 cup sugar", "Reduce liquid by 1/4 cup"),
		sub("Maple Syrup", "3/4 cup = 1 cup sugar", "Adds maple flavor"),
		sub("Coconut Sugar", "1:1", "Similar texture and sweetness"),
		sub("Stevia", "1 tsp = 1 cup sugar", "Very concentrated, adjust to taste"),
	}},
	{"brown sugar", []Substitution{
		sub("White Sugar + Molasses", "1 cup white sugar + 1 tbsp molasses", "Mix thoroughly"),
		sub("Coconut Sugar", "1:1", "Natural brown sugar alternative"),
		sub("Maple Syrup", "3/4 cup", "For liquid recipes"),
	}},
	{"ground beef", []Substitution{
		sub("Ground Turkey", "1:1", "Leaner option, may need extra seasoning"),
		sub("Ground Chicken", "1:1", "Lower fat, similar texture"),
		sub("Lentils", "1 cup cooked = 1 lb ground beef", "Plant-based protein"),
		sub("Mushrooms", "1:1 by weight", "Umami flavor, great for burgers"),
	}},
	{"chicken", []Substitution{
		sub("Tofu", "1:1 by weight", "Marinate for best flavor"),
		sub("Tempeh", "1:1 by weight", "Firm texture, high protein"),
		sub("Chickpeas", "1:1 by weight", "Great in salads and curries"),
	}},
	{"vegetable oil", []Substitution{
		sub("Olive Oil", "1:1", "Use extra virgin for salads, regular for cooking"),
		sub("Coconut Oil", "1:1", "Solid at room temp, melt before use"),
		sub("Avocado Oil", "1:1", "High smoke point, neutral flavor"),
		sub("Canola Oil", "1:1", "Neutral flavor, good for baking"),
	}},
	{"baking powder", []Substitution{
		sub("Baking Soda + Cream of Tartar", "1/4 tsp baking soda + 1/2 tsp cream of tartar = 1 tsp baking powder", "Mix before adding"),
		sub("Baking Soda + Buttermilk", "1/4 tsp baking soda = 1 tsp baking powder", "Replace liquid with buttermilk"),
	}},
	{"baking soda", []Substitution{
		sub("Baking Powder", "3x the amount", "Use 3 tsp baking powder = 1 tsp baking soda"),
	}},
	{"white vinegar", []Substitution{
		sub("Apple Cider Vinegar", "1:1", "Milder flavor, slight apple taste"),
		sub("Lemon Juice", "1:1", "Adds citrus flavor"),
		sub("Rice Vinegar", "1:1", "Milder, slightly sweet"),
	}},
}

// fallbackRules 依關鍵字的通用替代品，第一個包含於輸入的關鍵字勝出
var fallbackRules = []Rule{
	{"salt", []Substitution{
		sub("Sea Salt", "1:1", "Cleaner mineral taste"),
		sub("Kosher Salt", "1:1", "Larger crystals, adjust by taste"),
	}},
	{"sugar", []Substitution{
		sub("Honey", "3/4", "Reduce other liquids slightly"),
		sub("Maple Syrup", "3/4", "Adds its own flavor"),
	}},
	{"oil", []Substitution{
		sub("Olive Oil", "1:1", "Good for sautéing"),
		sub("Avocado Oil", "1:1", "High smoke point"),
	}},
	{"flour", []Substitution{
		sub("Whole Wheat Flour", "1:1", "Denser texture"),
		sub("Oat Flour", "1:1", "Mild flavor"),
	}},
	{"milk", []Substitution{
		sub("Almond Milk", "1:1", "Neutral dairy-free option"),
		sub("Oat Milk", "1:1", "Creamier texture"),
	}},
	{"egg", []Substitution{
		sub("Flax Egg", "1 tbsp flax + 3 tbsp water", "Let gel 5 minutes"),
		sub("Applesauce", "1/4 cup", "Moisture & binding in baking"),
	}},
	{"butter", []Substitution{
		sub("Olive Oil", "3/4", "Use in cooking, adjust liquids"),
		sub("Coconut Oil", "1:1", "Solid at room temp"),
	}},
	{"chicken", []Substitution{
		sub("Turkey", "1:1", "Leaner protein"),
		sub("Tofu", "1:1 by weight", "Marinate for flavor"),
	}},
	{"beef", []Substitution{
		sub("Ground Turkey", "1:1", "Lower fat"),
		sub("Lentils", "1 cup cooked = 1 lb", "Plant-based option"),
	}},
	{"rice", []Substitution{
		sub("Quinoa", "1:1", "Higher protein"),
		sub("Cauliflower Rice", "1:1", "Low-carb alternative"),
	}},
	{"cream", []Substitution{
		sub("Coconut Cream", "1:1", "Dairy-free richness"),
		sub("Cashew Cream", "1:1", "Blend soaked cashews"),
	}},
}
