package parser_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/myusername/intralism-score-checker/pkg/models"
	"github.com/myusername/intralism-score-checker/pkg/parser"
)

func TestCells(t *testing.T) {
	Convey("LinkID", t, func() {
		Convey("reads the digits after the last equals sign", func() {
			id, err := parser.LinkID("https://intralism.khb-soft.ru/?page=profile&id=76561198000000001")
			So(err, ShouldBeNil)
			So(id, ShouldEqual, int64(76561198000000001))
		})

		Convey("rejects links without a numeric id", func() {
			_, err := parser.LinkID("https://example.com/")
			So(err, ShouldNotBeNil)

			_, err = parser.LinkID("https://example.com/?id=abc")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Numeric cells", t, func() {
		Convey("ignore spaces, non-breaking spaces and commas", func() {
			n, err := parser.ParseInt("1 000")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1000)

			n, err = parser.ParseInt("12\u00a0345")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 12345)

			f, err := parser.ParseFloat("1,234.5")
			So(err, ShouldBeNil)
			So(f, ShouldEqual, 1234.5)
		})

		Convey("parse percentages", func() {
			f, err := parser.ParsePercent(" 99.5% ")
			So(err, ShouldBeNil)
			So(f, ShouldEqual, 99.5)
		})

		Convey("reject text", func() {
			_, err := parser.ParseInt("two")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Rank cells", t, func() {
		So(parser.ParseRank("1 234", models.UnknownRank), ShouldEqual, 1234)
		So(parser.ParseRank("-", models.UnknownRank), ShouldEqual, models.UnknownRank)

		total, err := parser.ParseTotal(" / 5 000")
		So(err, ShouldBeNil)
		So(total, ShouldEqual, 5000)

		_, err = parser.ParseTotal(" / ?")
		So(err, ShouldNotBeNil)
	})

	Convey("Round", t, func() {
		So(parser.Round(0.125, 2), ShouldEqual, 0.13)
		So(parser.Round(-0.125, 2), ShouldEqual, -0.13)
		So(parser.Round(2.5, 0), ShouldEqual, 3.0)
		So(parser.Round(1.23456, 4), ShouldEqual, 1.2346)
	})

	Convey("Modifiers", t, func() {
		So(parser.IsDisallowedModifier("Hidden"), ShouldBeTrue)
		So(parser.IsDisallowedModifier(" Relax "), ShouldBeTrue)
		So(parser.IsDisallowedModifier(""), ShouldBeFalse)
		So(parser.IsDisallowedModifier("Mirror"), ShouldBeFalse)
	})
}
