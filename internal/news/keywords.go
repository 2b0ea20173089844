package news

// Priorities assigned by the default tiers.
const (
	PriorityHighest = 90
	PriorityHigh    = 70
	PriorityFloor   = 40
)

// KeywordCategory is one internal category and its keywords, in declaration order.
type KeywordCategory struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// KeywordTier groups categories that share a priority. Tiers are evaluated
// in slice order and the first tier with any hit wins.
type KeywordTier struct {
	Name       string            `yaml:"name" json:"name"`
	Priority   int               `yaml:"priority" json:"priority"`
	Categories []KeywordCategory `yaml:"categories" json:"categories"`
}

// KeywordTables is the full scoring configuration.
type KeywordTables struct {
	Tiers []KeywordTier `yaml:"tiers" json:"tiers"`
	// Mapping translates internal category names to public categories.
	Mapping map[string]Category `yaml:"mapping" json:"mapping"`
	// Required keywords for the telecom-relevance filter.
	Required      []string `yaml:"required" json:"required"`
	FloorPriority int      `yaml:"floor_priority" json:"floor_priority"`
}

// DefaultKeywordTables returns a fresh copy of the built-in tables.
func DefaultKeywordTables() KeywordTables {
	return KeywordTables{
		Tiers: []KeywordTier{
			{
				Name:     "highest",
				Priority: PriorityHighest,
				Categories: []KeywordCategory{
					{Name: "ericsson", Keywords: []string{"ericsson", "愛立信"}},
					{Name: "taiwan", Keywords: []string{"taiwan", "台灣", "cht", "中華電", "台灣大", "遠傳", "ncc"}},
					{Name: "major_events", Keywords: []string{"bankruptcy", "破產", "ban", "禁令", "acquisition", "merger", "併購"}},
				},
			},
			{
				Name:     "high",
				Priority: PriorityHigh,
				Categories: []KeywordCategory{
					{Name: "ran", Keywords: []string{"open ran", "vran", "c-ran", "o-ran", "radio access network", "massive mimo"}},
					{Name: "core", Keywords: []string{"5g core", "core network", "epc", "核心網", "5gc", "nef", "upf"}},
					{Name: "new_tech", Keywords: []string{
						"6g", "ai-ran", "network slicing", "mec", "redcap", "ntn", "衛星通訊",
						"private 5g", "edge computing", "digital twin",
					}},
					{Name: "financial", Keywords: []string{
						"earnings", "revenue", "財報", "q1", "q2", "q3", "q4", "profit",
						"loss", "營收", "quarterly",
					}},
					{Name: "partnership", Keywords: []string{
						"partnership", "collaboration", "合作", "contract", "deal",
						"agreement", "alliance",
					}},
					{Name: "ma", Keywords: []string{"acquisition", "merger", "m&a", "併購", "收購", "takeover"}},
				},
			},
		},
		Mapping: map[string]Category{
			"ericsson":     CategoryEricsson,
			"taiwan":       CategoryTaiwan,
			"ran":          CategoryRAN,
			"core":         CategoryCore,
			"new_tech":     CategoryTech,
			"financial":    CategoryBusiness,
			"partnership":  CategoryBusiness,
			"ma":           CategoryBusiness,
			"major_events": CategoryBusiness,
		},
		Required: []string{
			"telecom", "telco", "wireless", "mobile", "cellular", "operator", "carrier",
			"network", "spectrum", "5g", "6g", "lte", "ran", "broadband", "fiber", "fibre",
			"satellite", "ericsson", "nokia", "huawei", "samsung networks",
			"電信", "通訊", "基地台", "頻譜", "網路",
		},
		FloorPriority: PriorityFloor,
	}
}
