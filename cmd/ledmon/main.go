package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robotalks/ledmatrix/pkg/report"
	"github.com/robotalks/ledmatrix/pkg/transport/mqtt"
)

var (
	reportURL = "mqtt://localhost:1883/ledmatrix/"
)

func init() {
	if val := os.Getenv("LEDMATRIX_REPORT_URL"); val != "" {
		reportURL = val
	}
	flag.StringVar(&reportURL, "report-url", reportURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(reportURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	report.Subscribe(q, func(m *report.TransferReport, err error) {
		if err != nil {
			log.Printf("bad report: %v", err)
			return
		}
		if m.Error != "" {
			log.Printf("%s %s [%s] %s %s: %s", m.Host, m.Link, m.Pattern, m.Mode, m.State, m.Error)
			return
		}
		log.Printf("%s %s [%s] %s %s: %d/%d bytes sum=0x%02X in %s",
			m.Host, m.Link, m.Pattern, m.Mode, m.State, m.Received, m.Sent, m.Checksum, m.Elapsed())
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}
