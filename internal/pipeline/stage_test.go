package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	for _, s := range StageOrder {
		parsed, err := ParseStage(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStage("seo_keywords")
	assert.Error(t, err)
	_, err = ParseStage("")
	assert.Error(t, err)
}

func TestNextStage(t *testing.T) {
	tests := []struct {
		name    string
		product domain.Product
		want    Stage
		done    bool
	}{
		{
			name:    "fresh product starts at market analysis",
			product: domain.Product{RawText: "widget"},
			want:    StageMarketAnalysis,
		},
		{
			name:    "market analysis done moves to product page",
			product: domain.Product{MarketAnalysis: "a"},
			want:    StageProductPage,
		},
		{
			name:    "first two done moves to image prompts",
			product: domain.Product{MarketAnalysis: "a", ProductPageContent: "b"},
			want:    StageImagePrompts,
		},
		{
			name: "image prompts done moves to ad copy",
			product: domain.Product{
				MarketAnalysis: "a", ProductPageContent: "b", ImagePrompts: "c",
			},
			want: StageAdCopy,
		},
		{
			name: "all done",
			product: domain.Product{
				MarketAnalysis: "a", ProductPageContent: "b",
				ImagePrompts: "c", AdCopy: "d",
			},
			done: true,
		},
		{
			name: "image prompts precedes ad copy when both runnable",
			product: domain.Product{
				MarketAnalysis: "a", ProductPageContent: "b", AdCopy: "",
			},
			want: StageImagePrompts,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, ok := NextStage(&tt.product)
			if tt.done {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, stage)
		})
	}
}

func TestNextStageDeterministic(t *testing.T) {
	p := &domain.Product{MarketAnalysis: "a"}
	first, ok := NextStage(p)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := NextStage(p)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestMissingDeps(t *testing.T) {
	fresh := &domain.Product{}
	assert.Empty(t, StageMarketAnalysis.MissingDeps(fresh))
	assert.Equal(t, []Stage{StageMarketAnalysis}, StageProductPage.MissingDeps(fresh))
	assert.Equal(t,
		[]Stage{StageMarketAnalysis, StageProductPage},
		StageImagePrompts.MissingDeps(fresh))

	partial := &domain.Product{MarketAnalysis: "a"}
	assert.Equal(t, []Stage{StageProductPage}, StageImagePrompts.MissingDeps(partial))
}

func TestFixedCosts(t *testing.T) {
	costs := FixedCosts{StageProductPage: 3, StageAdCopy: -5}

	assert.Equal(t, int64(3), costs.StageCost(StageProductPage))
	// Negative settings clamp to free rather than granting credits.
	assert.Equal(t, int64(0), costs.StageCost(StageAdCopy))
	// Absent entries fall back to the built-in table.
	assert.Equal(t, int64(0), costs.StageCost(StageMarketAnalysis))
	assert.Equal(t, int64(1), costs.StageCost(StageImagePrompts))
}

func TestCleanImagePrompt(t *testing.T) {
	got := CleanImagePrompt("**Bold** line one\nline two")
	assert.Equal(t, "Bold line one line two", got)

	long := make([]byte, 600)
	for i := range long {
		long[i] = 'x'
	}
	assert.LessOrEqual(t, len(CleanImagePrompt(string(long))), 400)

	// The cap counts characters, not bytes, and never leaves a torn rune.
	wide := CleanImagePrompt(strings.Repeat("日", 500))
	assert.True(t, utf8.ValidString(wide))
	assert.Equal(t, 400, utf8.RuneCountInString(wide))
}
