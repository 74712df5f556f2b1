// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-scraper/pkg/types"
)

func records(titles ...string) []types.PaperRecord {
	out := make([]types.PaperRecord, len(titles))
	for i, t := range titles {
		out[i] = types.PaperRecord{Title: t}
	}
	return out
}

func TestNormalize(t *testing.T) {
	got := Normalize([]string{" Adversarial ", "DIFFUSION", "", "adversarial", "  "})
	assert.Equal(t, []string{"adversarial", "diffusion"}, got)
	assert.Empty(t, Normalize(nil))
}

func TestApply_NoKeywordsPassesEverything(t *testing.T) {
	in := records("Adversarial Diffusion Models", "Classic CNN Survey")
	got := Apply(in, nil)
	require.Len(t, got, 2)
	for _, rec := range got {
		assert.Equal(t, []string{types.AllKeyword}, rec.Keywords)
	}
	assert.Nil(t, in[0].Keywords, "input must not be modified")
}

func TestApply_SingleKeyword(t *testing.T) {
	got := Apply(records("Adversarial Diffusion Models", "Classic CNN Survey"), []string{"adversarial"})
	require.Len(t, got, 1)
	assert.Equal(t, "Adversarial Diffusion Models", got[0].Title)
	assert.Equal(t, []string{"adversarial"}, got[0].Keywords)
}

func TestApply_MultipleMatchesKeepKeywordOrder(t *testing.T) {
	kws := Normalize([]string{"diffusion", "Adversarial", "domain"})
	got := Apply(records("ADVERSARIAL diffusion for Domain Shift"), kws)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"diffusion", "adversarial", "domain"}, got[0].Keywords)
}

func TestApply_SubstringMatch(t *testing.T) {
	got := Apply(records("Unpaired Image Translation", "Paired Data"), []string{"unpair"})
	require.Len(t, got, 1)
	assert.Equal(t, "Unpaired Image Translation", got[0].Title)
}

func TestApply_NoMatchesDropped(t *testing.T) {
	got := Apply(records("Classic CNN Survey"), []string{"diffusion"})
	assert.Empty(t, got)
}
