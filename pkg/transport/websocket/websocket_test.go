package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEcho(t *testing.T) {
	srv := httptest.NewServer(Handler(time.Second, func(c *Conn) {
		buf := make([]byte, 64)
		for {
			n, err := c.Read(buf)
			if err != nil {
				return
			}
			if n > 0 {
				if _, err := c.Write(buf[:n]); err != nil {
					return
				}
			}
		}
	}))
	defer srv.Close()

	c, err := Dial("ws://"+strings.TrimPrefix(srv.URL, "http://"), 500*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Write([]byte{0x55, 0xAA})
	require.NoError(t, err)
	buf := make([]byte, 8)
	n, err := c.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{0x55, 0xAA}, buf[:n])

	c.ReadTimeout = 20 * time.Millisecond
	n, err = c.Read(buf)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestOrigin(t *testing.T) {
	require.Equal(t, "http://host:80/x", originOf("ws://host:80/x"))
	require.Equal(t, "https://host/x", originOf("wss://host/x"))
}
