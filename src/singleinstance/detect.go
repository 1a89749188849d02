package singleinstance

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"time"
)

const defaultPingTimeout = 300 * time.Millisecond

// PortRange returns the effective inclusive range residents listen on.
func PortRange() (int, int) { return getPortRange() }

// DetectResidentPort returns the first port in PortRange whose listener
// answers PING with PONG.
func DetectResidentPort(ctx context.Context) (int, bool) {
	timeout := pingTimeout(ctx)
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return 0, false
		}
		if ping(ctx, residentAddr(port), timeout) {
			return port, true
		}
	}
	return 0, false
}

func residentAddr(port int) string {
	return net.JoinHostPort(residentHost, strconv.Itoa(port))
}

// pingTimeout caps each probe at defaultPingTimeout, or less when ctx expires sooner.
func pingTimeout(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < defaultPingTimeout {
			return d
		}
	}
	return defaultPingTimeout
}

func ping(ctx context.Context, addr string, timeout time.Duration) bool {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
