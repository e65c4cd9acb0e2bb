package roster_test

import (
	"testing"

	"github.com/kabile/matchnight/internal/domain/attendance"
	"github.com/kabile/matchnight/internal/domain/roster"
	"github.com/kabile/matchnight/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func coming(id, name string) attendance.Entry {
	return attendance.Entry{PlayerID: id, Name: name, Status: attendance.Coming}
}

type fakeSource map[string]stats.PlayerStats

func (f fakeSource) PlayerStats(id string) stats.PlayerStats {
	return f[id].Clone()
}

func TestReconcile(t *testing.T) {
	Convey("Given rosters and an attendance snapshot", t, func() {
		att := map[string]attendance.Entry{
			"p1": coming("p1", "one"),
			"p2": {PlayerID: "p2", Name: "two", Status: attendance.NotComing},
		}
		a := roster.Roster{
			"p1": {ID: "p1", Name: "one"},
			"p2": {ID: "p2", Name: "two"},
		}
		b := roster.Roster{
			"p3": {ID: "p3", Name: "three"}, // absent from attendance entirely
		}

		Convey("When reconciled", func() {
			evictions := roster.Reconcile(att, a, b)

			Convey("Then rostered players not coming are evicted from their team", func() {
				So(evictions, ShouldResemble, []roster.Eviction{
					{Team: roster.TeamA, PlayerID: "p2"},
					{Team: roster.TeamB, PlayerID: "p3"},
				})
			})

			Convey("And reconciling again without mutation yields the same set", func() {
				So(roster.Reconcile(att, a, b), ShouldResemble, evictions)
			})

			Convey("And once applied, a further call yields no evictions", func() {
				delete(a, "p2")
				delete(b, "p3")
				So(roster.Reconcile(att, a, b), ShouldBeEmpty)
			})
		})
	})

	Convey("Given an attendance flip for a rostered player", t, func() {
		a := roster.Roster{"p1": {ID: "p1", Name: "one"}}
		att := map[string]attendance.Entry{"p1": coming("p1", "one")}
		So(roster.Reconcile(att, a, nil), ShouldBeEmpty)

		Convey("When the player flips to not coming", func() {
			att["p1"] = attendance.Entry{PlayerID: "p1", Name: "one", Status: attendance.NotComing}
			evictions := roster.Reconcile(att, a, nil)

			Convey("Then exactly one eviction for team A is emitted", func() {
				So(evictions, ShouldResemble, []roster.Eviction{{Team: roster.TeamA, PlayerID: "p1"}})
			})
		})
	})
}

func TestAvailablePool(t *testing.T) {
	Convey("Given attendance with rostered and absent players", t, func() {
		att := map[string]attendance.Entry{
			"p1": coming("p1", "one"),
			"p2": coming("p2", "two"),
			"p3": {PlayerID: "p3", Name: "three", Status: attendance.NotComing},
		}
		a := roster.Roster{"p1": {ID: "p1", Name: "one"}}
		b := roster.Roster{}
		src := fakeSource{"p2": {L10HLTV2: stats.Ptr(1.10)}}

		Convey("When the pool is built", func() {
			pool := roster.AvailablePool(att, a, b, src)

			Convey("Then only unrostered coming players remain", func() {
				So(len(pool), ShouldEqual, 1)
				So(pool[0].ID, ShouldEqual, "p2")
			})

			Convey("And stats are merged from the source", func() {
				v, ok := pool[0].Stats.Get(stats.L10HLTV2)
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 1.10)
			})
		})
	})

	Convey("Given players with and without ratings", t, func() {
		att := map[string]attendance.Entry{
			"p1": coming("p1", "one"),
			"p2": coming("p2", "two"),
			"p3": coming("p3", "three"),
		}
		src := fakeSource{
			"p1": {L10HLTV2: stats.Ptr(0.95)},
			"p3": {L10HLTV2: stats.Ptr(1.25)},
			// p2 has no rating at all
		}

		Convey("When the pool is built", func() {
			pool := roster.AvailablePool(att, nil, nil, src)

			Convey("Then ordering is rating descending with missing last", func() {
				ids := []string{pool[0].ID, pool[1].ID, pool[2].ID}
				So(ids, ShouldResemble, []string{"p3", "p1", "p2"})
			})
		})
	})
}

func TestRosterClone(t *testing.T) {
	Convey("Given a roster with stats", t, func() {
		r := roster.Roster{"p1": {ID: "p1", Stats: stats.PlayerStats{SADR: stats.Ptr(80)}}}
		c := r.Clone()

		Convey("When the clone's stats mutate", func() {
			p := c["p1"]
			p.Stats.Set(stats.SADR, stats.Ptr(99))
			c["p1"] = p

			Convey("Then the original is unchanged", func() {
				v, ok := r["p1"].Stats.Get(stats.SADR)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 80)
			})
		})
	})
}
