package mqtt

import (
	"time"

	"github.com/robotalks/ledmatrix/pkg/transport/stream"
)

// Topics of the link, relative to the queue prefix.
const (
	TopicFrame = "frame"
	TopicEcho  = "echo"
)

// Link is a byte stream between host and device relayed by a broker.
// Each write is one message.
type Link struct {
	*stream.Packets
	Queue    *Queue
	SubTopic string
	PubTopic string

	sub *Subscription
}

// NewLink creates a Link on a queue using the host side topics.
func NewLink(q *Queue, readTimeout time.Duration) *Link {
	l := &Link{Queue: q}
	l.Packets = stream.NewPackets(stream.PacketWriteFunc(l.writePacket), readTimeout)
	return l.ForHost()
}

// WithTopics specifies the topics.
func (l *Link) WithTopics(sub, pub string) *Link {
	l.SubTopic, l.PubTopic = sub, pub
	return l
}

// ForHost sets topics using default convention for the host:
// SubTopic = prefix/echo
// PubTopic = prefix/frame
func (l *Link) ForHost() *Link {
	return l.WithTopics(TopicEcho, TopicFrame)
}

// ForDevice sets topics using default convention for the device:
// SubTopic = prefix/frame
// PubTopic = prefix/echo
func (l *Link) ForDevice() *Link {
	return l.WithTopics(TopicFrame, TopicEcho)
}

// Dial connects to the broker and subscribes the link.
func Dial(brokerURL string, device bool, readTimeout time.Duration) (*Link, error) {
	q, err := NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	l := NewLink(q, readTimeout)
	if device {
		l.ForDevice()
	}
	if err := q.Connect(); err != nil {
		return nil, err
	}
	if err := l.Start(); err != nil {
		q.Close()
		return nil, err
	}
	return l, nil
}

// Start subscribes SubTopic.
func (l *Link) Start() error {
	l.sub = l.Queue.Sub(l.SubTopic, func(_ string, payload []byte) {
		l.Deliver(payload)
	})
	l.sub.Token.Wait()
	return l.sub.Token.Error()
}

// Close implements io.Closer.
func (l *Link) Close() error {
	if l.sub != nil {
		l.sub.Close()
	}
	l.Packets.Close()
	return l.Queue.Close()
}

func (l *Link) writePacket(pkt []byte) error {
	token := l.Queue.Pub(l.PubTopic, pkt)
	token.Wait()
	return token.Error()
}
