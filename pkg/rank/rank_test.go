package rank_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/myusername/intralism-score-checker/pkg/models"
	"github.com/myusername/intralism-score-checker/pkg/rank"
)

// fakeGateway serves rank pages from memory and records which pages were read
type fakeGateway struct {
	pages     map[int][]models.Row
	err       error
	requested []int
}

func (g *fakeGateway) FetchProfilePage(context.Context, string) (*models.ProfilePage, error) {
	return nil, errors.New("not implemented")
}

func (g *fakeGateway) FetchRankPage(_ context.Context, page int) ([]models.Row, error) {
	g.requested = append(g.requested, page)
	if g.err != nil {
		return nil, g.err
	}
	return g.pages[page], nil
}

func (g *fakeGateway) SearchPlayer(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}

func rankRow(playerID int64, points string) models.Row {
	return models.Row{
		ID:    fmt.Sprintf("player-%d", playerID),
		Link:  fmt.Sprintf("./?page=profile&id=%d", playerID),
		Cells: []string{"", "", "", points},
	}
}

// fullPage builds a page of 100 rows for players first..first+99, points
// decreasing by one per row from top
func fullPage(first int64, top float64) []models.Row {
	rows := make([]models.Row, rank.PageSize)
	for i := range rows {
		rows[i] = rankRow(first+int64(i), fmt.Sprintf("%.2f", top-float64(i)))
	}
	return rows
}

func TestRankUpPoints(t *testing.T) {
	ctx := context.Background()

	Convey("Given a resolver over rank pages", t, func() {
		gateway := &fakeGateway{pages: map[int][]models.Row{
			1: {
				rankRow(1, "1 500.00"),
				rankRow(2, "1 234.5678"),
				rankRow(3, "1 200.1234"),
			},
			2: fullPage(101, 900),
		}}
		resolver := rank.NewResolver(gateway, zerolog.Nop())

		Convey("When the rank is unknown", func() {
			points, err := resolver.RankUpPoints(ctx, models.UnknownRank, 1, 0)

			Convey("Then the sentinel is returned without fetching", func() {
				So(err, ShouldBeNil)
				So(points, ShouldEqual, models.UnknownRankUpPoints)
				So(gateway.requested, ShouldBeEmpty)
			})
		})

		Convey("When the player is first globally", func() {
			points, err := resolver.RankUpPoints(ctx, 1, 1, 1500)

			So(err, ShouldBeNil)
			So(points, ShouldEqual, 0.0)
			So(gateway.requested, ShouldBeEmpty)
		})

		Convey("When the rank is not positive", func() {
			_, err := resolver.RankUpPoints(ctx, 0, 1, 0)

			So(errors.Is(err, models.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When the player is mid page", func() {
			points, err := resolver.RankUpPoints(ctx, 3, 3, 0)

			Convey("Then the gap to the row above is returned", func() {
				So(err, ShouldBeNil)
				So(points, ShouldEqual, 34.4444)
				So(gateway.requested, ShouldResemble, []int{1})
			})
		})

		Convey("When the player opens a page", func() {
			points, err := resolver.RankUpPoints(ctx, 201, 201, 795.5)

			Convey("Then the previous page is read and its last row compared with the ranked points", func() {
				So(err, ShouldBeNil)
				So(gateway.requested, ShouldResemble, []int{2})
				So(points, ShouldEqual, 5.5)
			})
		})

		Convey("When the player is not on the expected page", func() {
			_, err := resolver.RankUpPoints(ctx, 150, 999, 0)

			So(errors.Is(err, models.ErrRankRowNotFound), ShouldBeTrue)
		})

		Convey("When the player's row opens the page it was found on", func() {
			_, err := resolver.RankUpPoints(ctx, 2, 1, 0)

			Convey("Then there is no row above to compare with", func() {
				So(errors.Is(err, models.ErrRankRowNotFound), ShouldBeTrue)
			})
		})

		Convey("When the previous page is empty", func() {
			_, err := resolver.RankUpPoints(ctx, 301, 301, 1)

			So(errors.Is(err, models.ErrRankRowNotFound), ShouldBeTrue)
		})

		Convey("When only the id prefix matches", func() {
			gateway.pages[1] = []models.Row{rankRow(10, "10"), rankRow(110, "9")}
			_, err := resolver.RankUpPoints(ctx, 2, 11, 0)

			So(errors.Is(err, models.ErrRankRowNotFound), ShouldBeTrue)
		})

		Convey("When a points cell is not numeric", func() {
			gateway.pages[1] = []models.Row{rankRow(1, "lots"), rankRow(2, "10")}
			_, err := resolver.RankUpPoints(ctx, 2, 2, 0)

			So(errors.Is(err, models.ErrDataFormat), ShouldBeTrue)
		})

		Convey("When the page cannot be fetched", func() {
			gateway.err = models.NewError("test", models.ErrFetch, "down")
			_, err := resolver.RankUpPoints(ctx, 3, 3, 0)

			So(errors.Is(err, models.ErrFetch), ShouldBeTrue)
		})
	})
}

func TestPlayerLink(t *testing.T) {
	ctx := context.Background()

	Convey("Given rank pages", t, func() {
		gateway := &fakeGateway{pages: map[int][]models.Row{
			1: fullPage(1, 1000),
			2: {rankRow(101, "500"), {ID: "player-102", Cells: []string{"", "", "", "1"}}},
		}}

		Convey("The link of the player at a rank is read from the right page and index", func() {
			link, err := rank.PlayerLink(ctx, gateway, 100)
			So(err, ShouldBeNil)
			So(link, ShouldEqual, "./?page=profile&id=100")

			link, err = rank.PlayerLink(ctx, gateway, 101)
			So(err, ShouldBeNil)
			So(link, ShouldEqual, "./?page=profile&id=101")
			So(gateway.requested, ShouldResemble, []int{1, 2})
		})

		Convey("A rank beyond the page is not found", func() {
			_, err := rank.PlayerLink(ctx, gateway, 150)
			So(errors.Is(err, models.ErrNotFound), ShouldBeTrue)
		})

		Convey("A row without a link is a data format error", func() {
			_, err := rank.PlayerLink(ctx, gateway, 102)
			So(errors.Is(err, models.ErrDataFormat), ShouldBeTrue)
		})

		Convey("A non-positive rank is invalid", func() {
			_, err := rank.PlayerLink(ctx, gateway, 0)
			So(errors.Is(err, models.ErrInvalidInput), ShouldBeTrue)
		})
	})
}
