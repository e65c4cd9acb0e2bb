package matchapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kabile/matchnight/internal/domain/roster"
	"github.com/kabile/matchnight/internal/domain/stats"
)

func testRoster(pairs ...string) roster.Roster {
	r := make(roster.Roster, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		r[pairs[i]] = stats.Player{ID: pairs[i], Name: pairs[i+1]}
	}
	return r
}

func TestBuildRequest(t *testing.T) {
	Convey("Given two drafted rosters", t, func() {
		a := testRoster("100", "alice", "101", "ayse")
		b := testRoster("200", "bob")

		Convey("When building a two-map request with mixed side picks", func() {
			req, err := BuildRequest("Kianlar", "Kabile 1", a, b,
				[]string{"de_mirage", "de_nuke"},
				[]Side{SideTeamBCT})

			Convey("Then the wire shape matches the orchestration contract", func() {
				So(err, ShouldBeNil)
				So(req.Team1.Name, ShouldEqual, "Kianlar")
				So(req.Team1.Players, ShouldResemble, map[string]string{"100": "alice", "101": "ayse"})
				So(req.Team2.Players, ShouldResemble, map[string]string{"200": "bob"})
				So(req.NumMaps, ShouldEqual, 2)
				So(req.MapList, ShouldResemble, []string{"de_mirage", "de_nuke"})
				So(req.ClinchSeries, ShouldBeTrue)
				So(req.PlayersPerTeam, ShouldEqual, 2)
				So(req.CVars["hostname"], ShouldEqual, "Kianlar vs Kabile 1")
				So(req.CVars["tv_enable"], ShouldEqual, 1)
			})

			Convey("Then unset side slots pad out with knife rounds", func() {
				So(req.MapSides, ShouldResemble, []string{"team2_ct", "knife"})
			})
		})

		Convey("When team A holds CT on the opener", func() {
			req, err := BuildRequest("A", "B", a, b, []string{"de_inferno"}, []Side{SideTeamACT})
			So(err, ShouldBeNil)
			So(req.MapSides, ShouldResemble, []string{"team1_ct"})
		})

		Convey("When a team is empty", func() {
			_, err := BuildRequest("A", "B", a, roster.Roster{}, []string{"de_mirage"}, nil)
			So(err, ShouldWrap, ErrEmptyTeam)
		})

		Convey("When a rostered player has no name", func() {
			broken := testRoster("300", "")
			_, err := BuildRequest("A", "B", broken, b, []string{"de_mirage"}, nil)
			So(err, ShouldWrap, ErrInvalidEntry)
		})
	})
}

func TestClientSubmit(t *testing.T) {
	Convey("Given a match orchestration endpoint", t, func() {
		var got Request
		mux := http.NewServeMux()
		mux.HandleFunc("/match", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.Write([]byte(`{"matchid":"m-1"}`))
		})
		mux.HandleFunc("/reject", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad maplist"}`))
		})
		srv := httptest.NewServer(mux)
		Reset(srv.Close)

		req, err := BuildRequest("A", "B",
			testRoster("100", "alice"), testRoster("200", "bob"),
			[]string{"de_mirage"}, []Side{SideKnife})
		So(err, ShouldBeNil)

		Convey("When submitting succeeds", func() {
			c := New(srv.URL + "/match")
			body, err := c.Submit(context.Background(), req)

			Convey("Then the response passes through untouched", func() {
				So(err, ShouldBeNil)
				So(string(body), ShouldEqual, `{"matchid":"m-1"}`)
				So(got.Team1.Players["100"], ShouldEqual, "alice")
				So(got.MapSides, ShouldResemble, []string{"knife"})
			})
		})

		Convey("When the endpoint rejects the request", func() {
			c := New(srv.URL + "/reject")
			body, err := c.Submit(context.Background(), req)
			So(err, ShouldWrap, ErrRejected)
			So(string(body), ShouldEqual, `{"error":"bad maplist"}`)
		})

		Convey("When no endpoint is configured", func() {
			c := New("")
			_, err := c.Submit(context.Background(), req)
			So(err, ShouldWrap, ErrNoEndpoint)
		})
	})
}
