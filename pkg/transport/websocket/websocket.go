// Package websocket carries the matrix link over binary websocket frames.
package websocket

import (
	"net/http"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/ledmatrix/pkg/transport/stream"
)

// Conn is a websocket connection used as a byte stream. Each Write is sent
// as one binary frame.
type Conn struct {
	*stream.Deadline
	ws *websocket.Conn
}

// New wraps websocket.Conn.
func New(ws *websocket.Conn, readTimeout time.Duration) *Conn {
	ws.PayloadType = websocket.BinaryFrame
	return &Conn{Deadline: stream.NewDeadline(ws, readTimeout), ws: ws}
}

// Dial connects to a websocket endpoint such as ws://host:8080/matrix.
func Dial(url string, readTimeout time.Duration) (*Conn, error) {
	ws, err := websocket.Dial(url, "", originOf(url))
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("websocket %s connected", url)
	return New(ws, readTimeout), nil
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.ws.Request().RemoteAddr
}

// Handler serves each accepted connection with fn. The connection is
// closed when fn returns.
func Handler(readTimeout time.Duration, fn func(*Conn)) http.Handler {
	return websocket.Handler(func(ws *websocket.Conn) {
		conn := New(ws, readTimeout)
		defer conn.Close()
		glog.V(1).Infof("websocket peer %s", conn.RemoteAddr())
		fn(conn)
	})
}

func originOf(url string) string {
	switch {
	case len(url) > 6 && url[:6] == "wss://":
		return "https://" + url[6:]
	case len(url) > 5 && url[:5] == "ws://":
		return "http://" + url[5:]
	}
	return url
}
