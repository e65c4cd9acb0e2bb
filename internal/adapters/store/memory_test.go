package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/kabile/matchnight/internal/adapters/store"
	. "github.com/smartystreets/goconvey/convey"
)

func recv(c C, ch <-chan store.Snapshot) store.Snapshot {
	select {
	case snap := <-ch:
		return snap
	case <-time.After(time.Second):
		c.So("timed out waiting for snapshot", ShouldBeEmpty)
		return store.Snapshot{}
	}
}

func TestMemoryStore_SetAndRead(t *testing.T) {
	Convey("Given an empty store", t, func() {
		s := store.NewMemoryStore()
		ctx := context.Background()

		Convey("When a nested path is set", func() {
			err := s.Set(ctx, "teamPickerState/teamA/kabile", "Kianlar")
			So(err, ShouldBeNil)

			Convey("Then reading the leaf returns the value", func() {
				v, err := s.ReadOnce(ctx, "teamPickerState/teamA/kabile")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "Kianlar")
			})

			Convey("Then reading a parent returns the subtree", func() {
				v, err := s.ReadOnce(ctx, "teamPickerState/teamA")
				So(err, ShouldBeNil)
				So(v, ShouldResemble, map[string]any{"kabile": "Kianlar"})
			})

			Convey("Then reading an absent path returns nil", func() {
				v, err := s.ReadOnce(ctx, "nowhere")
				So(err, ShouldBeNil)
				So(v, ShouldBeNil)
			})
		})

		Convey("When a typed struct is written", func() {
			type payload struct {
				Name string `json:"name"`
			}
			So(s.Set(ctx, "x", payload{Name: "guCci"}), ShouldBeNil)

			Convey("Then it lands in canonical JSON shape", func() {
				v, err := s.ReadOnce(ctx, "x")
				So(err, ShouldBeNil)
				So(v, ShouldResemble, map[string]any{"name": "guCci"})
			})
		})

		Convey("When an invalid path is used", func() {
			So(s.Set(ctx, "", 1), ShouldNotBeNil)
			So(s.Set(ctx, "a//b", 1), ShouldNotBeNil)
		})
	})
}

func TestMemoryStore_Subscribe(t *testing.T) {
	Convey("Given a store with a subscriber", t, func(c C) {
		s := store.NewMemoryStore()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch, err := s.Subscribe(ctx, "attendanceState")
		So(err, ShouldBeNil)

		Convey("Then the current value is delivered immediately", func() {
			snap := recv(c, ch)
			So(snap.Value, ShouldBeNil)
		})

		Convey("When the subscribed path changes", func() {
			recv(c, ch) // initial
			So(s.Set(context.Background(), "attendanceState/p1", map[string]any{"name": "one", "status": "coming"}), ShouldBeNil)

			Convey("Then the full value at the subscribed path arrives", func() {
				snap := recv(c, ch)
				So(snap.Value, ShouldResemble, map[string]any{
					"p1": map[string]any{"name": "one", "status": "coming"},
				})
				So(snap.OpID, ShouldNotBeEmpty)
			})
		})

		Convey("When an unrelated path changes", func() {
			recv(c, ch) // initial
			So(s.Set(context.Background(), "emojiState/p1", "x"), ShouldBeNil)

			Convey("Then nothing is delivered", func() {
				select {
				case snap := <-ch:
					So(snap, ShouldBeZeroValue)
				case <-time.After(50 * time.Millisecond):
				}
			})
		})

		Convey("When snapshots arrive in a burst", func() {
			recv(c, ch) // initial
			for i := 0; i < 5; i++ {
				So(s.Set(context.Background(), "attendanceState/n", float64(i)), ShouldBeNil)
			}

			Convey("Then delivery preserves store order with the latest last", func() {
				var last store.Snapshot
				for i := 0; i < 5; i++ {
					last = recv(c, ch)
				}
				So(last.Value, ShouldResemble, map[string]any{"n": float64(4)})
			})
		})
	})
}

func TestMemoryStore_Update(t *testing.T) {
	Convey("Given a store holding two rosters", t, func(c C) {
		s := store.NewMemoryStore()
		ctx := context.Background()
		So(s.Set(ctx, "teamPickerState/teamA/players/p1", map[string]any{"id": "p1"}), ShouldBeNil)

		Convey("When a multi-path patch moves the player to team B", func() {
			err := s.Update(ctx, map[string]any{
				"teamPickerState/teamB/players/p1": map[string]any{"id": "p1"},
				"teamPickerState/teamA/players/p1": nil,
			})
			So(err, ShouldBeNil)

			Convey("Then both sides of the move are visible together", func() {
				a, _ := s.ReadOnce(ctx, "teamPickerState/teamA/players")
				b, _ := s.ReadOnce(ctx, "teamPickerState/teamB/players/p1")
				So(a, ShouldResemble, map[string]any{})
				So(b, ShouldResemble, map[string]any{"id": "p1"})
			})
		})

		Convey("When a patch contains an invalid path", func() {
			err := s.Update(ctx, map[string]any{
				"":                                 "x",
				"teamPickerState/teamA/players/p1": nil,
			})

			Convey("Then nothing is applied", func() {
				So(err, ShouldNotBeNil)
				v, _ := s.ReadOnce(ctx, "teamPickerState/teamA/players/p1")
				So(v, ShouldResemble, map[string]any{"id": "p1"})
			})
		})
	})
}

func TestMemoryStore_Close(t *testing.T) {
	Convey("Given a store with a subscriber", t, func(c C) {
		s := store.NewMemoryStore()
		ch, err := s.Subscribe(context.Background(), "x")
		So(err, ShouldBeNil)
		recv(c, ch)

		Convey("When the store closes", func() {
			So(s.Close(), ShouldBeNil)

			Convey("Then the channel closes and writes are rejected", func() {
				_, open := <-ch
				So(open, ShouldBeFalse)
				So(s.Set(context.Background(), "x", 1), ShouldEqual, store.ErrClosed)
				_, err := s.Subscribe(context.Background(), "x")
				So(err, ShouldEqual, store.ErrClosed)
			})
		})
	})
}
