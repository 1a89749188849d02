package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) TryRunOnce(ctx context.Context, outputToStdout bool) (bool, []byte, error) {
	port, ok := DetectResidentPort(ctx)
	if !ok {
		return false, nil, nil
	}
	d := net.Dialer{Timeout: 2 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", residentAddr(port))
	if err != nil {
		return false, nil, err
	}
	defer conn.Close()
	payload, err := c.request(ctx, conn, Request{OutputToStdout: outputToStdout})
	return true, payload, err
}

// request sends the mode line and waits, without a deadline unless ctx has one,
// for the user to finish the overlay on the resident side.
func (c *tcpClient) request(ctx context.Context, conn net.Conn, req Request) ([]byte, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(req.mode() + "\n"); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return nil, err
	}
	body, _ := io.ReadAll(br)
	switch status {
	case statusSuccess:
		return body, nil
	case statusError:
		return nil, errors.New(string(body))
	}
	return nil, fmt.Errorf("singleinstance: unexpected status %q", status)
}
