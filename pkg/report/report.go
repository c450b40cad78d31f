// Package report publishes transfer outcomes.
package report

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/ledmatrix/pkg/comm"
	fx "github.com/robotalks/ledmatrix/pkg/framework"
)

// TransferReport describes one transfer attempt.
type TransferReport struct {
	Host      string `protobuf:"bytes,1,opt,name=host,proto3" json:"host,omitempty"`
	Link      string `protobuf:"bytes,2,opt,name=link,proto3" json:"link,omitempty"`
	Mode      string `protobuf:"bytes,3,opt,name=mode,proto3" json:"mode,omitempty"`
	State     string `protobuf:"bytes,4,opt,name=state,proto3" json:"state,omitempty"`
	Pattern   string `protobuf:"bytes,5,opt,name=pattern,proto3" json:"pattern,omitempty"`
	Checksum  uint32 `protobuf:"varint,6,opt,name=checksum,proto3" json:"checksum,omitempty"`
	Sent      int32  `protobuf:"varint,7,opt,name=sent,proto3" json:"sent,omitempty"`
	Received  int32  `protobuf:"varint,8,opt,name=received,proto3" json:"received,omitempty"`
	Error     string `protobuf:"bytes,9,opt,name=error,proto3" json:"error,omitempty"`
	ElapsedUs int64  `protobuf:"varint,10,opt,name=elapsed_us,proto3" json:"elapsed_us,omitempty"`
	Timestamp int64  `protobuf:"varint,11,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Payload   []byte `protobuf:"bytes,12,opt,name=payload,proto3" json:"payload,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *TransferReport) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TransferReport) Reset() { *m = TransferReport{} }

// String implements proto.Message.
func (m *TransferReport) String() string { return proto.CompactTextString(m) }

// Encode serializes the report.
func (m *TransferReport) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// Decode parses a serialized report.
func Decode(data []byte) (*TransferReport, error) {
	m := &TransferReport{}
	if err := proto.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Elapsed returns the elapsed time of the attempt.
func (m *TransferReport) Elapsed() time.Duration {
	return time.Duration(m.ElapsedUs) * time.Microsecond
}

// New builds a report from a transfer result.
func New(link, pattern string, payload comm.Payload, res *comm.Result) *TransferReport {
	m := &TransferReport{
		Host:      HostID(),
		Link:      link,
		Mode:      res.Mode.String(),
		State:     res.State.String(),
		Pattern:   pattern,
		Checksum:  uint32(res.Checksum),
		Sent:      int32(res.Sent),
		Received:  int32(len(res.Received)),
		ElapsedUs: res.Elapsed.Microseconds(),
		Timestamp: time.Now().UnixNano(),
		Payload:   append([]byte(nil), payload[:]...),
	}
	switch {
	case res.Mismatch != nil:
		m.Error = res.Mismatch.Error()
	case res.Err != nil:
		m.Error = res.Err.Error()
	}
	return m
}

// Reporter receives transfer reports.
type Reporter interface {
	Report(context.Context, *TransferReport) error
}

// ReportFunc is the func form of Reporter.
type ReportFunc func(context.Context, *TransferReport) error

// Report implements Reporter.
func (f ReportFunc) Report(ctx context.Context, m *TransferReport) error {
	return f(ctx, m)
}

// Multi fans a report out to all reporters.
type Multi []Reporter

// Report implements Reporter.
func (r Multi) Report(ctx context.Context, m *TransferReport) error {
	var errs fx.AggregatedError
	for n, reporter := range r {
		errs.AddFor(fmt.Sprintf("reporter %d (%T)", n, reporter), reporter.Report(ctx, m))
	}
	return errs.Aggregate()
}

// Log writes reports to the log.
type Log struct{}

// Report implements Reporter.
func (Log) Report(_ context.Context, m *TransferReport) error {
	if m.Error != "" {
		glog.Warningf("%s %s %s: %s", m.Pattern, m.Mode, m.State, m.Error)
		return nil
	}
	glog.Infof("%s %s %s: %d bytes sum=0x%02X in %s",
		m.Pattern, m.Mode, m.State, m.Sent, m.Checksum, m.Elapsed())
	return nil
}

var hostID string

// HostID identifies this machine in reports.
func HostID() string {
	if hostID != "" {
		return hostID
	}
	if id, err := machineid.ProtectedID("ledmatrix"); err == nil && len(id) >= 12 {
		hostID = id[:12]
	} else if name, err := os.Hostname(); err == nil {
		hostID = name
	} else {
		hostID = "unknown"
	}
	return hostID
}
