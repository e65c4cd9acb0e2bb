package stats_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/kabile/matchnight/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlayerStats_GetSet(t *testing.T) {
	Convey("Given a stat set with some metrics present", t, func() {
		s := stats.PlayerStats{
			L10HLTV2: stats.Ptr(1.12),
			L10ADR:   stats.Ptr(0),
		}

		Convey("Then present values are returned with ok=true", func() {
			v, ok := s.Get(stats.L10HLTV2)
			So(ok, ShouldBeTrue)
			So(v, ShouldAlmostEqual, 1.12)
		})

		Convey("Then a real zero is a data point, not missing", func() {
			v, ok := s.Get(stats.L10ADR)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 0)
		})

		Convey("Then absent metrics report missing", func() {
			_, ok := s.Get(stats.SKD)
			So(ok, ShouldBeFalse)
		})

		Convey("Then NaN counts as missing", func() {
			s.Set(stats.SKD, stats.Ptr(math.NaN()))
			_, ok := s.Get(stats.SKD)
			So(ok, ShouldBeFalse)
		})

		Convey("When a metric is cleared via Set(nil)", func() {
			s.Set(stats.L10HLTV2, nil)

			Convey("Then it reports missing", func() {
				_, ok := s.Get(stats.L10HLTV2)
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestPlayerStats_Merge(t *testing.T) {
	Convey("Given a stat set and a partial patch", t, func() {
		s := stats.PlayerStats{
			L10HLTV2: stats.Ptr(1.00),
			SADR:     stats.Ptr(80),
		}
		patch := map[stats.Key]*float64{
			stats.L10HLTV2: stats.Ptr(1.30), // overwrite
			stats.SADR:     nil,             // explicit clear
			stats.SKD:      stats.Ptr(1.05), // new metric
		}

		Convey("When merged", func() {
			s.Merge(patch)

			Convey("Then patched fields change and untouched fields survive", func() {
				v, ok := s.Get(stats.L10HLTV2)
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 1.30)

				_, ok = s.Get(stats.SADR)
				So(ok, ShouldBeFalse)

				v, ok = s.Get(stats.SKD)
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 1.05)
			})
		})
	})
}

func TestPlayerStats_Clone(t *testing.T) {
	Convey("Given a populated stat set", t, func() {
		s := stats.PlayerStats{L10HLTV2: stats.Ptr(1.20)}
		c := s.Clone()

		Convey("When the clone is mutated", func() {
			c.Set(stats.L10HLTV2, stats.Ptr(9.99))

			Convey("Then the original is unaffected", func() {
				v, ok := s.Get(stats.L10HLTV2)
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 1.20)
			})
		})
	})
}

func TestPlayerStats_JSON(t *testing.T) {
	Convey("Given a JSON document with absent and null metrics", t, func() {
		raw := []byte(`{"L10_HLTV2":1.15,"S_ADR":null}`)

		Convey("When unmarshalled", func() {
			var s stats.PlayerStats
			So(json.Unmarshal(raw, &s), ShouldBeNil)

			Convey("Then both absent and null read as missing", func() {
				v, ok := s.Get(stats.L10HLTV2)
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 1.15)

				_, ok = s.Get(stats.SADR)
				So(ok, ShouldBeFalse)
				_, ok = s.Get(stats.SKD)
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestDecimals(t *testing.T) {
	Convey("Given the display precision convention", t, func() {
		So(stats.Decimals(stats.L10ADR), ShouldEqual, 0)
		So(stats.Decimals(stats.SADR), ShouldEqual, 0)
		So(stats.Decimals(stats.L10HLTV2), ShouldEqual, 2)
		So(stats.Decimals(stats.SKD), ShouldEqual, 2)
	})
}
