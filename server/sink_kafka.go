package server

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Team-Elite-2025/midas/defense"
	"github.com/segmentio/kafka-go"
)

// kafkaSink publishes trace records to a fleet telemetry topic, keyed by
// run so one robot's records stay in order on a partition. Publishing is
// decoupled from the control loop through a buffered channel: when the
// broker falls behind, records are dropped rather than stalling a tick.
type kafkaSink struct {
	writer  *kafka.Writer
	records chan defense.TraceRecord
	done    chan struct{}
}

// NewKafkaSink connects a sink to the given brokers and topic and starts
// its background publisher. Close flushes and stops it.
func NewKafkaSink(brokers []string, topic string) *kafkaSink {
	s := &kafkaSink{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		records: make(chan defense.TraceRecord, 256),
		done:    make(chan struct{}),
	}
	go s.publishLoop()
	return s
}

func (s *kafkaSink) Record(rec defense.TraceRecord) {
	select {
	case s.records <- rec:
	default:
		log.Printf("Warning: kafka sink buffer full, dropping trace seq=%d", rec.Seq)
	}
}

func (s *kafkaSink) publishLoop() {
	for {
		select {
		case rec := <-s.records:
			s.publish(rec)
		case <-s.done:
			// Drain whatever is still buffered before shutting down.
			for {
				select {
				case rec := <-s.records:
					s.publish(rec)
				default:
					return
				}
			}
		}
	}
}

func (s *kafkaSink) publish(rec defense.TraceRecord) {
	msg, err := json.Marshal(rec)
	if err != nil {
		log.Printf("kafka sink: marshal trace seq=%d: %v", rec.Seq, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.RunID),
		Value: msg,
	}); err != nil {
		log.Printf("kafka sink: write trace seq=%d: %v", rec.Seq, err)
	}
}

// Close stops the publisher and closes the underlying writer.
func (s *kafkaSink) Close() error {
	close(s.done)
	return s.writer.Close()
}
