// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package listing

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const journalIssueHTML = `<!DOCTYPE html>
<html><body>
<div class="obj_issue_toc">
 <ul class="cmp_article_list articles">
  <li>
   <div class="obj_article_summary">
    <h3 class="title">
     <a id="article-101" href="https://ojs.aaai.org/index.php/AAAI/article/view/101">
      Adversarial Diffusion Models
     </a>
    </h3>
    <div class="meta">
     <div class="authors">Alice Smith, Bob Jones</div>
     <div class="pages">1-9</div>
    </div>
    <ul class="galleys_links">
     <li><a class="obj_galley_link pdf" href="/index.php/AAAI/article/view/101/201">PDF</a></li>
    </ul>
   </div>
  </li>
  <li>
   <div class="obj_article_summary">
    <h3 class="title"><a href="https://ojs.aaai.org/index.php/AAAI/article/view/102">Classic CNN Survey</a></h3>
    <div class="meta"><div class="authors">Carol White</div><div class="pages">10-18</div></div>
    <ul class="galleys_links">
     <li><a class="obj_galley_link pdf" href="https://ojs.aaai.org/index.php/AAAI/article/view/102/202">PDF</a></li>
    </ul>
   </div>
  </li>
  <li>
   <div class="obj_article_summary">
    <h3 class="title"><a href="https://ojs.aaai.org/index.php/AAAI/article/view/103">Workshop Overview</a></h3>
   </div>
  </li>
  <li>
   <div class="obj_article_summary"><div class="meta">orphan block</div></div>
  </li>
 </ul>
</div>
</body></html>`

const proceedingsHTML = `<!DOCTYPE html>
<html><body>
<div id="header">CVPR 2025 open access</div>
<div id="content">
<dl>
<dt class="ptitle"><br><a href="/content/CVPR2025/html/Smith_Adversarial_Diffusion_CVPR_2025_paper.html">Adversarial Diffusion Models</a></dt>
<dd>
 <form id="form-smith" action="/CVPR2025_search" method="post"><a href="#">Alice Smith</a></form>
</dd>
<dd>
 [<a href="/content/CVPR2025/papers/Smith_Adversarial_Diffusion_CVPR_2025_paper.pdf">pdf</a>]
 [<a href="/content/CVPR2025/supplemental/Smith_supp.pdf">supp</a>]
 <div class="link2">[<a class="fakelink">bibtex</a>]
  <div class="bibref pre-white-space">@InProceedings{Smith_2025_CVPR,
    author    = {Smith, Alice},
    title     = {Adversarial Diffusion Models},
    booktitle = {CVPR},
    year      = {2025}
}</div>
 </div>
</dd>
<dt class="ptitle"><a href="/content/CVPR2025/papers/Stray_paper.pdf">pdf</a></dt>
<dt class="ptitle"><a href="/content/CVPR2025/html/Lonely_CVPR_2025_paper.html">Lonely Title Without Details</a></dt>
<dt class="ptitle"><a href="/content/CVPR2025/html/White_CVPR_2025_paper.html">Classic CNN Survey</a></dt>
<dd>Carol White</dd>
<dd>[<a href="../papers/White_CVPR_2025_paper.pdf">PDF</a>] <div><div>no citation here</div></div></dd>
<dt class="ptitle"><a href="/content/CVPR2025/html/Empty.html">  </a></dt>
<dd>[<a href="/content/CVPR2025/papers/Empty.pdf">pdf</a>]</dd>
</dl>
</div>
</body></html>`

func mustDoc(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func TestJournalParse(t *testing.T) {
	records, err := Journal{}.Parse(mustDoc(t, journalIssueHTML))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Adversarial Diffusion Models", records[0].Title)
	assert.Equal(t, "/index.php/AAAI/article/view/101/201", records[0].Link)
	assert.Equal(t, "Alice Smith, Bob Jones", records[0].Authors)
	assert.Equal(t, "1-9", records[0].Pages)

	assert.Equal(t, "Classic CNN Survey", records[1].Title)
	assert.Equal(t, "https://ojs.aaai.org/index.php/AAAI/article/view/102/202", records[1].Link)

	// No galley link: record kept, nothing to download.
	assert.Equal(t, "Workshop Overview", records[2].Title)
	assert.False(t, records[2].HasLink())
	assert.Empty(t, records[2].Authors)
}

func TestJournalParse_EmptyPage(t *testing.T) {
	records, err := Journal{}.Parse(mustDoc(t, `<html><body><p>maintenance</p></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProceedingsParse(t *testing.T) {
	base, _ := url.Parse("https://openaccess.thecvf.com/")
	records, err := Proceedings{Base: base}.Parse(mustDoc(t, proceedingsHTML))
	require.NoError(t, err)
	require.Len(t, records, 3)

	smith := records[0]
	assert.Equal(t, "Adversarial Diffusion Models", smith.Title)
	assert.Equal(t, "https://openaccess.thecvf.com/content/CVPR2025/papers/Smith_Adversarial_Diffusion_CVPR_2025_paper.pdf", smith.Link)
	assert.True(t, strings.HasPrefix(smith.BibTeX, "@InProceedings{Smith_2025_CVPR,"), smith.BibTeX)
	assert.Contains(t, smith.BibTeX, "year      = {2025}")

	lonely := records[1]
	assert.Equal(t, "Lonely Title Without Details", lonely.Title)
	assert.Empty(t, lonely.Link)
	assert.Empty(t, lonely.BibTeX)

	white := records[2]
	assert.Equal(t, "Classic CNN Survey", white.Title)
	assert.Equal(t, "https://openaccess.thecvf.com/papers/White_CVPR_2025_paper.pdf", white.Link)
	assert.Empty(t, white.BibTeX, "nested div without @ is not a citation")
}

func TestProceedingsParse_CustomMarker(t *testing.T) {
	src := `<div id="content"><dl>
<dt><a href="/detail/1">Paper One</a></dt><dd>[<a href="/p/1.pdf">pdf</a>]</dd>
<dt><a href="/content/CVPR2025/html/2.html">Paper Two</a></dt>
</dl></div>`
	base, _ := url.Parse("https://example.org/")
	records, err := Proceedings{Base: base, DetailMarker: "/detail/"}.Parse(mustDoc(t, src))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Paper One", records[0].Title)
	assert.Equal(t, "https://example.org/p/1.pdf", records[0].Link)
}

func TestProceedingsParse_NoListing(t *testing.T) {
	_, err := Proceedings{}.Parse(mustDoc(t, `<html><body><div id="content"><p>none</p></div></body></html>`))
	assert.ErrorIs(t, err, ErrNoListing)
}

func TestFindPDFLink(t *testing.T) {
	base, _ := url.Parse("https://ojs.aaai.org/index.php/AAAI/article/view/101/201")

	t.Run("exact PDF anchor", func(t *testing.T) {
		doc := mustDoc(t, `<html><body>
<a href="/other">pdf</a>
<a href="">PDF</a>
<a class="download" href="/index.php/AAAI/article/download/101/201"> PDF </a>
</body></html>`)
		link, err := FindPDFLink(doc, base)
		require.NoError(t, err)
		assert.Equal(t, "https://ojs.aaai.org/index.php/AAAI/article/download/101/201", link)
	})

	t.Run("missing anchor", func(t *testing.T) {
		doc := mustDoc(t, `<html><body><a href="/x">Download</a></body></html>`)
		_, err := FindPDFLink(doc, base)
		assert.ErrorIs(t, err, ErrNoPDFLink)
	})
}

func TestResolve(t *testing.T) {
	base, _ := url.Parse("https://ojs.aaai.org/")
	assert.Equal(t, "https://ojs.aaai.org/a/b", Resolve(base, "/a/b"))
	assert.Equal(t, "https://cdn.example.org/x.pdf", Resolve(base, "https://cdn.example.org/x.pdf"))
	assert.Equal(t, "/a/b", Resolve(nil, "/a/b"))
	assert.Equal(t, "", Resolve(base, "  "))
}
