package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kabile/matchnight/internal/adapters/matchapi"
	"github.com/kabile/matchnight/internal/adapters/statfeed"
	"github.com/kabile/matchnight/internal/adapters/store"
	"github.com/kabile/matchnight/internal/domain/attendance"
	"github.com/kabile/matchnight/internal/domain/roster"
	"github.com/kabile/matchnight/internal/domain/stats"
)

const integrationSeason = `[
	{"steam_id":"100","name":"alice","hltv_2":1.20,"adr":90.0,"kd":1.3},
	{"steam_id":"200","name":"bob","hltv_2":0.90,"adr":70.0,"kd":0.9}
]`

const integrationLast10 = `[
	{"steam_id":"100","name":"alice","hltv_2":1.10,"adr":85.0,"kd":1.2},
	{"steam_id":"200","name":"bob","hltv_2":1.00,"adr":75.0,"kd":1.0}
]`

func TestServiceEndToEnd(t *testing.T) {
	Convey("Given a full night setup", t, func() {
		ctx := context.Background()

		mux := http.NewServeMux()
		mux.HandleFunc("/season.json", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(integrationSeason))
		})
		mux.HandleFunc("/last10.json", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(integrationLast10))
		})
		var matchReq matchapi.Request
		mux.HandleFunc("/match", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&matchReq)
			w.Write([]byte(`{"matchid":"night-1"}`))
		})
		srv := httptest.NewServer(mux)
		Reset(srv.Close)

		feed := statfeed.New(
			statfeed.WithTableURL(statfeed.Season, srv.URL+"/season.json"),
			statfeed.WithTableURL(statfeed.Last10, srv.URL+"/last10.json"),
		)

		st := store.NewMemoryStore()
		seedAttendance(ctx, st,
			attendance.Entry{PlayerID: "100", Name: "alice", Status: attendance.Coming},
			attendance.Entry{PlayerID: "200", Name: "bob", Status: attendance.Coming},
			attendance.Entry{PlayerID: "300", Name: "carol", Status: attendance.NoResponse},
		)
		svc := startService(ctx, st,
			WithFeed(feed),
			WithMatchClient(matchapi.New(srv.URL+"/match")),
		)
		Reset(svc.Stop)

		So(waitFor(func() bool { return len(svc.Attendance()) == 3 }), ShouldBeTrue)
		So(waitFor(func() bool {
			pool := svc.Pool()
			if len(pool) != 2 {
				return false
			}
			_, ok := pool[0].Stats.Get(stats.L10HLTV2)
			return ok
		}), ShouldBeTrue)

		Convey("Then the pool is rating-sorted with feed stats merged", func() {
			pool := svc.Pool()
			So(pool[0].ID, ShouldEqual, "100")
			v, ok := pool[0].Stats.Get(stats.L10HLTV2)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 1.10)
			So(pool[1].ID, ShouldEqual, "200")
		})

		Convey("When the night is drafted out", func() {
			So(svc.Assign(ctx, "100", roster.TeamA), ShouldBeNil)
			So(svc.Assign(ctx, "200", roster.TeamB), ShouldBeNil)
			So(waitFor(func() bool {
				a, _ := svc.Team(roster.TeamA)
				b, _ := svc.Team(roster.TeamB)
				return len(a.Players) == 1 && len(b.Players) == 1
			}), ShouldBeTrue)

			Convey("Then team averages carry the drafted snapshots", func() {
				a, _ := svc.Team(roster.TeamA)
				v, ok := a.Averages.Get(stats.SADR)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 90.0)
			})

			Convey("Then the comparison normalizes against the fixed ranges", func() {
				So(waitFor(func() bool {
					comp := svc.Comparison()
					return comp.Revision > 0 && len(comp.TeamA.Normalized) == 5 &&
						comp.TeamA.Normalized[0] > 0
				}), ShouldBeTrue)

				comp := svc.Comparison()
				// L10 HLTV 1.10 in range 0.70-1.40 lands at 400/7 ≈ 57.14.
				So(comp.TeamA.Normalized[0], ShouldAlmostEqual, 57.142857, 0.001)
				// S_ADR 70 in range 50-100 lands at 40.
				So(comp.TeamB.Normalized[4], ShouldAlmostEqual, 40.0, 0.001)
			})

			Convey("When an attendance flip evicts a drafted player", func() {
				So(svc.SetAttendance(ctx, "200", "bob", attendance.NotComing), ShouldBeNil)
				So(waitFor(func() bool {
					b, _ := svc.Team(roster.TeamB)
					return len(b.Players) == 0
				}), ShouldBeTrue)

				Convey("Then team B averages go absent", func() {
					b, _ := svc.Team(roster.TeamB)
					_, ok := b.Averages.Get(stats.L10HLTV2)
					So(ok, ShouldBeFalse)
				})
			})

			Convey("When a match is created from the draft", func() {
				So(svc.SetKabile(ctx, roster.TeamA, "Kianlar"), ShouldBeNil)
				So(svc.SetKabile(ctx, roster.TeamB, "Kabile 1"), ShouldBeNil)
				So(svc.SetMapName(ctx, 1, "de_mirage"), ShouldBeNil)
				So(svc.SetSide(ctx, 1, roster.TeamB), ShouldBeNil)
				So(waitFor(func() bool {
					slots := svc.MapSlots()
					a, _ := svc.Team(roster.TeamA)
					return slots[0].CT == roster.TeamB && a.Kabile == "Kianlar"
				}), ShouldBeTrue)

				body, err := svc.CreateMatch(ctx)

				Convey("Then the orchestration payload matches the draft", func() {
					So(err, ShouldBeNil)
					So(string(body), ShouldEqual, `{"matchid":"night-1"}`)
					So(matchReq.Team1.Name, ShouldEqual, "Kianlar")
					So(matchReq.Team2.Name, ShouldEqual, "Kabile 1")
					So(matchReq.Team1.Players["100"], ShouldEqual, "alice")
					So(matchReq.MapList, ShouldResemble, []string{"de_mirage"})
					So(matchReq.MapSides, ShouldResemble, []string{"team2_ct"})
					So(matchReq.CVars["hostname"], ShouldEqual, "Kianlar vs Kabile 1")
				})
			})
		})
	})
}

func TestServiceLegacyAttendanceShape(t *testing.T) {
	Convey("Given a name-keyed legacy attendance subtree", t, func() {
		ctx := context.Background()
		st := store.NewMemoryStore()
		legacy := map[string]any{
			"alice": map[string]any{"steamId": "100", "status": "coming"},
			"bob":   map[string]any{"steamId": "200", "status": "not_coming"},
			"junk":  map[string]any{"nonsense": true},
		}
		So(st.Set(ctx, pathAttendance, legacy), ShouldBeNil)

		svc := startService(ctx, st)
		Reset(svc.Stop)

		Convey("Then entries decode keyed by player id and junk drops", func() {
			So(waitFor(func() bool { return len(svc.Attendance()) == 2 }), ShouldBeTrue)
			att := svc.Attendance()
			So(att["100"].Name, ShouldEqual, "alice")
			So(att["100"].Status, ShouldEqual, attendance.Coming)
			So(att["200"].Status, ShouldEqual, attendance.NotComing)
			So(waitFor(func() bool { return svc.GetStats().DecodeDrops == 1 }), ShouldBeTrue)
		})
	})
}
