package sh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ledmatrix/pkg/config"
)

func loopConfig() *config.Config {
	conf := config.NewConfig()
	conf.Link = "loop://"
	conf.ReadTimeout = 10 * time.Millisecond
	conf.Settle = 0
	conf.ReportURL = ""
	return conf
}

func TestRunClosesLinkOnError(t *testing.T) {
	s := New(loopConfig()).WithAutoOpen(true)
	s.Interactive = false
	require.Equal(t, ErrNoCommand, s.Run())
	require.Nil(t, s.Link)
}

func TestOpenAndClose(t *testing.T) {
	conf := loopConfig()
	conf.Mode = "checksum"
	conf.Patterns = map[string][]byte{"dim": make([]byte, 64)}
	s := New(conf)
	require.NoError(t, s.Open("loop://"))
	require.NotNil(t, s.Link)
	_, ok := s.Link.Host.Patterns.Lookup("dim")
	require.True(t, ok)

	res, err := s.Link.Host.Send(context.Background(), "heart")
	require.NoError(t, err)
	require.True(t, res.OK())

	require.NoError(t, s.Close())
	require.Nil(t, s.Link)
	require.NoError(t, s.Close())
}
