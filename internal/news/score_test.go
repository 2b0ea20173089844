package news

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	s := DefaultScorer()

	tests := []struct {
		name         string
		title        string
		description  string
		wantPriority int
		wantCategory Category
	}{
		{name: "ericsson", title: "Ericsson wins 5G contract", wantPriority: 90, wantCategory: CategoryEricsson},
		{name: "taiwan chinese", title: "中華電 推出新方案", wantPriority: 90, wantCategory: CategoryTaiwan},
		{name: "major event maps to business", title: "Operator files for bankruptcy", wantPriority: 90, wantCategory: CategoryBusiness},
		{name: "ran", title: "Open RAN trials expand", wantPriority: 70, wantCategory: CategoryRAN},
		{name: "core in description", title: "Operator update", description: "Migration to a cloud-native 5G core", wantPriority: 70, wantCategory: CategoryCore},
		{name: "new tech maps to tech", title: "Network slicing goes live", wantPriority: 70, wantCategory: CategoryTech},
		{name: "financial short keyword", title: "Nokia Q3 results", wantPriority: 70, wantCategory: CategoryBusiness},
		{name: "floor", title: "Weather is nice", description: "nothing relevant", wantPriority: 40, wantCategory: CategoryOther},
		{name: "empty", wantPriority: 40, wantCategory: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, c := s.Score(tt.title, tt.description)
			assert.Equal(t, tt.wantPriority, p)
			assert.Equal(t, tt.wantCategory, c)
		})
	}
}

func TestScoreTierPrecedence(t *testing.T) {
	s := DefaultScorer()

	// "open ran" is in the high tier, "ericsson" in the highest.
	p, c := s.Score("Open RAN push", "Ericsson joins the effort")
	assert.Equal(t, 90, p)
	assert.Equal(t, CategoryEricsson, c)
}

func TestScoreFirstCategoryWins(t *testing.T) {
	s := DefaultScorer()

	// Hits both ericsson and taiwan; ericsson is declared first.
	_, c := s.Score("Taiwan operator picks Ericsson", "")
	assert.Equal(t, CategoryEricsson, c)

	// Hits core and partnership; core is declared first.
	_, c = s.Score("Core network contract signed", "")
	assert.Equal(t, CategoryCore, c)
}

func TestScoreShortKeywordsMatchAsSubstrings(t *testing.T) {
	s := DefaultScorer()

	tests := []struct {
		title        string
		wantPriority int
		wantCategory Category
	}{
		{title: "US bans Huawei gear from networks", wantPriority: 90, wantCategory: CategoryBusiness},
		{title: "Regulator banned the vendor", wantPriority: 90, wantCategory: CategoryBusiness},
		{title: "Operators trial 6GHz spectrum", wantPriority: 70, wantCategory: CategoryTech},
		{title: "Legacy EPC retired", wantPriority: 70, wantCategory: CategoryCore},
		{title: "Nokia Q4 outlook", wantPriority: 70, wantCategory: CategoryBusiness},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			p, c := s.Score(tt.title, "")
			assert.Equal(t, tt.wantPriority, p)
			assert.Equal(t, tt.wantCategory, c)
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := DefaultScorer()
	title, desc := "Fierce: RedCap and NTN roadmap", "partnership with operators"

	p1, c1 := s.Score(title, desc)
	for i := 0; i < 20; i++ {
		p, c := s.Score(title, desc)
		assert.Equal(t, p1, p)
		assert.Equal(t, c1, c)
	}
}

func TestNewScorerRejectsBadPriority(t *testing.T) {
	tables := DefaultKeywordTables()
	tables.Tiers[0].Priority = 120

	_, err := NewScorer(tables)
	assert.Error(t, err)

	tables = DefaultKeywordTables()
	tables.FloorPriority = -1
	_, err = NewScorer(tables)
	assert.Error(t, err)
}

func TestScoreUnknownMappingIsOther(t *testing.T) {
	s, err := NewScorer(KeywordTables{
		Tiers: []KeywordTier{{
			Name:       "custom",
			Priority:   80,
			Categories: []KeywordCategory{{Name: "unmapped", Keywords: []string{"satellite"}}},
		}},
		FloorPriority: 10,
	})
	require.NoError(t, err)

	p, c := s.Score("Satellite launch", "")
	assert.Equal(t, 80, p)
	assert.Equal(t, CategoryOther, c)

	p, c = s.Score("Nothing", "")
	assert.Equal(t, 10, p)
	assert.Equal(t, CategoryOther, c)
}

func TestIsRelevant(t *testing.T) {
	s := DefaultScorer()

	assert.True(t, s.IsRelevant("Operator expands 5G", ""))
	assert.True(t, s.IsRelevant("新聞", "電信業者 公布 營收"))
	assert.False(t, s.IsRelevant("Celebrity gossip", "movie premiere"))
	assert.True(t, s.IsRelevant("Operators trial 6GHz spectrum", ""))
}

func TestFilterRelevantKeepsOrder(t *testing.T) {
	s := DefaultScorer()
	records := []Record{
		{Title: "Wireless spectrum auction"},
		{Title: "Cooking tips"},
		{Title: "Fiber rollout"},
	}

	got := s.FilterRelevant(records)

	require.Len(t, got, 2)
	assert.Equal(t, "Wireless spectrum auction", got[0].Title)
	assert.Equal(t, "Fiber rollout", got[1].Title)
}

func TestSortByPriorityStable(t *testing.T) {
	records := []Record{
		{Title: "a", Priority: 40},
		{Title: "b", Priority: 90},
		{Title: "c", Priority: 40},
		{Title: "d", Priority: 90},
	}

	SortByPriority(records)

	var titles []string
	for _, r := range records {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, titles)
}

func TestSortByPublished(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{Title: "old", Published: base},
		{Title: "new", Published: base.Add(2 * time.Hour)},
		{Title: "mid", Published: base.Add(time.Hour)},
	}

	SortByPublished(records)

	assert.Equal(t, "new", records[0].Title)
	assert.Equal(t, "mid", records[1].Title)
	assert.Equal(t, "old", records[2].Title)
}

func TestNewRecord(t *testing.T) {
	published := time.Date(2026, 1, 23, 9, 0, 0, 0, time.FixedZone("CST", 8*3600))

	r, err := NewRecord(" <b>Ericsson</b> news ", " https://x.example/a ", "<p>desc</p>", published, "Light Reading", "en")
	require.NoError(t, err)
	assert.Equal(t, "Ericsson news", r.Title)
	assert.Equal(t, "https://x.example/a", r.Link)
	assert.Equal(t, "desc", r.Description)
	assert.Equal(t, DedupKey("https://x.example/a"), r.DedupKey)
	assert.Equal(t, time.UTC, r.Published.Location())
	assert.Equal(t, CategoryOther, r.Category)

	_, err = NewRecord("<br>", "https://x.example/a", "", published, "s", "en")
	assert.ErrorIs(t, err, ErrEntryIncomplete)

	_, err = NewRecord("title", "   ", "", published, "s", "en")
	assert.ErrorIs(t, err, ErrEntryIncomplete)
}
