package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/myusername/intralism-score-checker/pkg/models"
)

// Child-node positions of the ranking block on a profile page
const (
	totalGlobalRankNode  = 4
	countryRankNode      = 9
	totalCountryRankNode = 10
)

// rankUpdateMarker appears in the header of the "time until next rank update"
// table, which some profile pages show before the score table
const rankUpdateMarker = "Until"

var profileRef = regexp.MustCompile(`[./]*\?page=profile[^'"\s]*`)

func newDocument(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, models.WrapError("scraper.parse", models.ErrDataFormat, err, "parsing HTML")
	}
	return doc, nil
}

// ParseRankRows extracts the rows of a rank or search results page
func ParseRankRows(htmlContent, baseURL string) ([]models.Row, error) {
	doc, err := newDocument(htmlContent)
	if err != nil {
		return nil, err
	}

	table := DataTable(doc)
	if table == nil {
		return nil, models.NewError("scraper.ParseRankRows", models.ErrDataFormat, "no rank table on page")
	}

	var rows []models.Row
	table.Find("tbody tr").Each(func(i int, tr *goquery.Selection) {
		id, _ := tr.Attr("id")
		rows = append(rows, models.Row{
			ID:    strings.TrimSpace(id),
			Link:  rowLink(tr, baseURL),
			Cells: cellTexts(tr.Find("td")),
		})
	})
	return rows, nil
}

// rowLink finds the profile reference carried by a rank row, either in one of
// its attributes (onclick, data-href, ...) or in an anchor
func rowLink(tr *goquery.Selection, baseURL string) string {
	if len(tr.Nodes) > 0 {
		for _, attr := range tr.Nodes[0].Attr {
			if ref := profileRef.FindString(attr.Val); ref != "" {
				return ResolveRelativeURL(baseURL, ref)
			}
		}
	}

	var link string
	tr.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.Contains(href, "page=profile") {
			link = ResolveRelativeURL(baseURL, strings.TrimSpace(href))
			return false
		}
		return true
	})
	return link
}

func cellTexts(cells *goquery.Selection) []string {
	texts := make([]string, 0, cells.Length())
	cells.Each(func(i int, cell *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(cell.Text()))
	})
	return texts
}

// ParseProfilePage extracts identity, ranking and score table of a profile page
func ParseProfilePage(htmlContent string) (*models.ProfilePage, error) {
	const op = "scraper.ParseProfilePage"

	doc, err := newDocument(htmlContent)
	if err != nil {
		return nil, err
	}

	blocks := doc.Find("main > div")
	identity := blocks.Eq(0)
	heading := identity.Find("h1 span").First()
	if heading.Length() == 0 {
		return nil, models.NewError(op, models.ErrDataFormat, "no player name on profile page")
	}

	page := &models.ProfilePage{}
	page.Name, page.GlobalRank = splitNameRank(heading.Text())
	page.Country = strings.TrimSpace(identity.Find("p span").First().Text())
	page.PictureLink, _ = identity.Find("img").First().Attr("src")

	ranking := blocks.Eq(1).ChildrenFiltered("div").Eq(1).Contents()
	if ranking.Length() <= totalCountryRankNode {
		return nil, models.NewError(op, models.ErrDataFormat,
			"ranking block has %d nodes, expected more than %d", ranking.Length(), totalCountryRankNode)
	}
	page.TotalGlobalRank = strings.TrimSpace(ranking.Eq(totalGlobalRankNode).Text())
	page.CountryRank = strings.TrimSpace(ranking.Eq(countryRankNode).Text())
	page.TotalCountryRank = strings.TrimSpace(ranking.Eq(totalCountryRankNode).Text())

	table := DataTable(doc)
	if table == nil {
		return page, nil
	}

	var rowErr error
	table.Find("tbody tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		row, err := scoreRow(tr)
		if err != nil {
			rowErr = models.WrapError(op, models.ErrDataFormat, err, "score row %d", i)
			return false
		}
		page.Scores = append(page.Scores, row)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return page, nil
}

// splitNameRank splits a "Name#123" heading at its last '#'
func splitNameRank(heading string) (name, rank string) {
	heading = strings.TrimSpace(heading)
	i := strings.LastIndex(heading, "#")
	if i < 0 {
		return heading, ""
	}
	return strings.TrimSpace(heading[:i]), strings.TrimSpace(heading[i+1:])
}

// DataTable selects the score or ranking table of a page by its header: the
// rank-update table mentions "Until" in its header, the data table does not.
func DataTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("main table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		if isRankUpdateTable(table) {
			return true
		}
		found = table
		return false
	})
	return found
}

func isRankUpdateTable(table *goquery.Selection) bool {
	marked := false
	table.Find("thead th").EachWithBreak(func(i int, th *goquery.Selection) bool {
		marked = strings.Contains(th.Text(), rankUpdateMarker)
		return !marked
	})
	return marked
}

// scoreRow maps a profile score row onto the fixed cell order of
// models.ScoreCell*. The map cell carries the map anchor and, as its third
// child node, an optional modifier label.
func scoreRow(tr *goquery.Selection) (models.Row, error) {
	cells := tr.Find("th, td")
	if cells.Length() < models.ScoreCellCount {
		return models.Row{}, fmt.Errorf("expected %d cells, got %d", models.ScoreCellCount, cells.Length())
	}

	mapCell := cells.Eq(1)
	link, _ := mapCell.Find("a").First().Attr("href")

	modifier := ""
	if contents := mapCell.Contents(); contents.Length() == 3 {
		modifier = strings.TrimSpace(contents.Eq(2).Text())
	}

	return models.Row{
		Cells: []string{
			models.ScoreCellMapLink:  strings.TrimSpace(link),
			models.ScoreCellModifier: modifier,
			models.ScoreCellScore:    strings.TrimSpace(cells.Eq(2).Text()),
			models.ScoreCellAccuracy: strings.TrimSpace(cells.Eq(3).Text()),
			models.ScoreCellMiss:     strings.TrimSpace(cells.Eq(4).Text()),
			models.ScoreCellPoints:   strings.TrimSpace(cells.Eq(5).Text()),
		},
	}, nil
}
