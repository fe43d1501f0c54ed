package database

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// ConnectNATS opens a NATS connection and its JetStream context.
func ConnectNATS(url string) (*nats.Conn, nats.JetStreamContext, error) {
	if url == "" {
		return nil, nil, fmt.Errorf("nats url must not be empty")
	}

	conn, err := nats.Connect(url, nats.Name("lingua-api"))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to connect to nats: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("unable to open jetstream context: %w", err)
	}

	return conn, js, nil
}
