package ratings

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseRoster extracts the member table from a club roster page.
func parseRoster(r io.Reader, source string) ([]ClubRosterEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ExtractionError{URL: source, Reason: err.Error()}
	}

	table := doc.Find("table").FilterFunction(func(i int, s *goquery.Selection) bool {
		header := strings.ToLower(s.Find("th").Text())
		return strings.Contains(header, "rank") &&
			strings.Contains(header, "rating") &&
			strings.Contains(header, "name")
	}).First()
	if table.Length() == 0 {
		return nil, &ExtractionError{URL: source, Reason: "club roster table not found"}
	}

	var rows []ClubRosterEntry
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}

		nameCell := cells.Eq(2)
		link := nameCell.Find("a").First()
		href, _ := link.Attr("href")
		playerID := parsePlayerID(href)
		displayName := strings.TrimSpace(link.Text())
		if displayName == "" {
			displayName = strings.TrimSpace(nameCell.Text())
		}
		if playerID == 0 || displayName == "" {
			return
		}

		rating := ParseRating(cells.Eq(1).Text())
		rows = append(rows, ClubRosterEntry{
			PlayerID:       playerID,
			Rank:           parseRank(cells.Eq(0).Text()),
			DisplayName:    displayName,
			RatingMean:     rating.Mean,
			RatingStDev:    rating.StDev,
			LastPlayedDate: ParseOptionalDate(cells.Eq(4).Text()),
		})
	})
	return rows, nil
}

func parseRank(text string) *int {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	rank := ParseInt(text)
	return &rank
}
