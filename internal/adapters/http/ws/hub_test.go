package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/kabile/matchnight/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func dial(tsURL string) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(tsURL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	return conn, err
}

func waitClients(h *Hub, n int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return h.ClientCount() == n
}

func TestHubBroadcast(t *testing.T) {
	Convey("Given a hub with two connected clients", t, func() {
		h := NewHub()
		ts := httptest.NewServer(http.HandlerFunc(h.HandleWS))
		Reset(func() {
			h.Close()
			ts.Close()
		})

		c1, err := dial(ts.URL)
		So(err, ShouldBeNil)
		Reset(func() { c1.Close() })
		c2, err := dial(ts.URL)
		So(err, ShouldBeNil)
		Reset(func() { c2.Close() })
		So(waitClients(h, 2), ShouldBeTrue)

		Convey("When a snapshot is broadcast", func() {
			h.Broadcast(map[string]any{"revision": 7})

			Convey("Then both clients receive it as JSON", func() {
				for _, conn := range []*websocket.Conn{c1, c2} {
					_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
					_, payload, err := conn.ReadMessage()
					So(err, ShouldBeNil)

					var got map[string]float64
					So(json.Unmarshal(payload, &got), ShouldBeNil)
					So(got["revision"], ShouldEqual, 7)
				}
			})
		})

		Convey("When a client disconnects", func() {
			c1.Close()

			Convey("Then the hub drops it", func() {
				So(waitClients(h, 1), ShouldBeTrue)
			})
		})
	})
}

func TestHubClose(t *testing.T) {
	Convey("Given a hub with a connected client", t, func() {
		h := NewHub()
		ts := httptest.NewServer(http.HandlerFunc(h.HandleWS))
		Reset(ts.Close)

		conn, err := dial(ts.URL)
		So(err, ShouldBeNil)
		Reset(func() { conn.Close() })
		So(waitClients(h, 1), ShouldBeTrue)

		Convey("When the hub closes", func() {
			h.Close()

			Convey("Then the client count drops and further closes are safe", func() {
				So(h.ClientCount(), ShouldEqual, 0)
				h.Close()
			})
		})
	})
}
