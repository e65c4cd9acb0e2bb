package attendance_test

import (
	"testing"

	"github.com/kabile/matchnight/internal/domain/attendance"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecodeState(t *testing.T) {
	Convey("Given a snapshot in the current id-keyed shape", t, func() {
		raw := map[string]any{
			"7656119000001": map[string]any{"name": "guCci", "status": "coming"},
			"7656119000002": map[string]any{"name": "ozzy", "status": "not_coming"},
		}

		Convey("When decoded", func() {
			entries, dropped := attendance.DecodeState(raw)

			Convey("Then every entry canonicalizes keyed by id", func() {
				So(dropped, ShouldEqual, 0)
				So(len(entries), ShouldEqual, 2)
				So(entries["7656119000001"].Name, ShouldEqual, "guCci")
				So(entries["7656119000001"].Status, ShouldEqual, attendance.Coming)
				So(entries["7656119000002"].Status, ShouldEqual, attendance.NotComing)
			})
		})
	})

	Convey("Given a snapshot in the legacy name-keyed shape", t, func() {
		raw := map[string]any{
			"guCci": map[string]any{"steamId": "7656119000001", "status": "coming"},
			// legacy data sometimes stored numeric steam ids
			"ozzy": map[string]any{"steamId": float64(7656119000002), "status": "no_response"},
		}

		Convey("When decoded", func() {
			entries, dropped := attendance.DecodeState(raw)

			Convey("Then entries re-key onto the steam id", func() {
				So(dropped, ShouldEqual, 0)
				So(entries["7656119000001"].Name, ShouldEqual, "guCci")
				So(entries["7656119000001"].Status, ShouldEqual, attendance.Coming)
				So(entries["7656119000002"].Name, ShouldEqual, "ozzy")
			})
		})
	})

	Convey("Given a snapshot mixing both shapes and malformed entries", t, func() {
		raw := map[string]any{
			"7656119000001": map[string]any{"name": "guCci", "status": "coming"},
			"ozzy":          map[string]any{"steamId": "7656119000002", "status": "coming"},
			"broken":        map[string]any{"whatever": true},
			"scalar":        "coming",
		}

		Convey("When decoded", func() {
			entries, dropped := attendance.DecodeState(raw)

			Convey("Then good entries survive and bad ones are dropped with a count", func() {
				So(len(entries), ShouldEqual, 2)
				So(dropped, ShouldEqual, 2)
				So(entries, ShouldContainKey, "7656119000001")
				So(entries, ShouldContainKey, "7656119000002")
			})
		})
	})
}

func TestDecodeMoods(t *testing.T) {
	Convey("Given a mood snapshot", t, func() {
		raw := map[string]any{
			"7656119000001": map[string]any{"name": "guCci", "status": "waffle"},
		}

		Convey("When decoded", func() {
			moods, dropped := attendance.DecodeMoods(raw)

			Convey("Then the status carries over as a mood", func() {
				So(dropped, ShouldEqual, 0)
				So(moods["7656119000001"].Status, ShouldEqual, attendance.MoodWaffle)
			})
		})
	})
}
