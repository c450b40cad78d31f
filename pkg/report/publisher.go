package report

import (
	"context"

	"github.com/robotalks/ledmatrix/pkg/transport/mqtt"
)

// TopicReport is the topic prefix for reports, followed by the host ID.
const TopicReport = "report/"

// Publisher publishes encoded reports to an MQTT queue.
type Publisher struct {
	Queue *mqtt.Queue
}

// NewPublisher connects to the broker.
func NewPublisher(brokerURL string) (*Publisher, error) {
	q, err := mqtt.NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if err := q.Connect(); err != nil {
		return nil, err
	}
	return &Publisher{Queue: q}, nil
}

// Report implements Reporter.
func (p *Publisher) Report(ctx context.Context, m *TransferReport) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	token := p.Queue.Pub(TopicReport+m.Host, data)
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (p *Publisher) Close() error {
	return p.Queue.Close()
}

// Subscribe delivers reports from all hosts until the subscription is
// closed. Malformed messages are passed to fn with the decode error.
func Subscribe(q *mqtt.Queue, fn func(*TransferReport, error)) *mqtt.Subscription {
	return q.Sub(TopicReport+"+", func(_ string, payload []byte) {
		fn(Decode(payload))
	})
}
