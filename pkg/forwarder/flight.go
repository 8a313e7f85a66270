package forwarder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// putFlight streams a batch to the upstream Flight endpoint as a single
// DoPut call. The record kind travels in the flight descriptor path.
func (c *Client) putFlight(ctx context.Context, rec arrow.RecordBatch, path string) error {
	client, err := flight.NewClientWithMiddleware(flightAddr(c.cfg.Endpoint), nil, nil,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect flight endpoint: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	md, err := authMetadata(c.cfg.Auth)
	if err != nil {
		return err
	}

	for k, v := range md {
		ctx = metadata.AppendToOutgoingContext(ctx, k, v)
	}

	timeout := c.http.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stream, err := client.DoPut(ctx)
	if err != nil {
		return fmt.Errorf("open flight stream: %w", err)
	}

	wr := flight.NewRecordWriter(stream, ipc.WithSchema(rec.Schema()))
	wr.SetFlightDescriptor(&flight.FlightDescriptor{
		Type: flight.DescriptorPATH,
		Path: []string{strings.TrimPrefix(path, "/v1/")},
	})

	if err := wr.Write(rec); err != nil {
		_ = wr.Close()

		return fmt.Errorf("write flight batch: %w", err)
	}

	if err := wr.Close(); err != nil {
		return fmt.Errorf("finish flight stream: %w", err)
	}

	if err := stream.CloseSend(); err != nil {
		return fmt.Errorf("close flight stream: %w", err)
	}

	// Drain acknowledgements until the server closes the stream.
	for {
		if _, err := stream.Recv(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return fmt.Errorf("flight acknowledgement: %w", err)
		}
	}

	c.log.Debug().Str("path", path).Int64("rows", rec.NumRows()).Msg("Forwarded batch via flight")

	return nil
}

// flightAddr strips an http/grpc scheme off the configured endpoint; the
// flight client dials host:port.
func flightAddr(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		return u.Host
	}

	return endpoint
}
