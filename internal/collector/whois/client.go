package whois

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"
)

// Defaults.
const (
	DefaultServer      = "whois.iana.org:43"
	DefaultDialTimeout = 10 * time.Second
	port               = "43"
	maxResponseBytes   = 1 << 20
	maxReferrals       = 2
)

// Client speaks the WHOIS protocol over TCP.
type Client struct {
	server string
	dialer *net.Dialer
}

// NewClient returns a Client that starts lookups at server, or at
// DefaultServer when server is empty.
func NewClient(server string) *Client {
	if server == "" {
		server = DefaultServer
	}
	return &Client{server: server, dialer: &net.Dialer{Timeout: DefaultDialTimeout}}
}

// Lookup queries the root server for term and follows its referral to the
// authoritative server. It returns the last response and the servers asked.
func (c *Client) Lookup(ctx context.Context, term string) (string, []string, error) {
	server := c.server
	var (
		asked    []string
		response string
	)
	for i := 0; i < maxReferrals+1; i++ {
		text, err := c.Query(ctx, server, term)
		if err != nil {
			if response != "" {
				// The referral failed; the root answer is still useful.
				return response, asked, nil
			}
			return "", asked, err
		}
		asked = append(asked, server)
		response = text

		next := referral(text)
		if next == "" || next == server {
			break
		}
		server = next
	}
	return response, asked, nil
}

// Query sends one WHOIS request to server and reads the full reply.
func (c *Client) Query(ctx context.Context, server, term string) (string, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", server)
	if err != nil {
		return "", fmt.Errorf("dial whois server %s: %w", server, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// Unblock reads if ctx is cancelled without a deadline.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := io.WriteString(conn, term+"\r\n"); err != nil {
		return "", fmt.Errorf("write whois query: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(conn, maxResponseBytes))
	if err != nil {
		// Connection deadlines only ever come from ctx.
		if errors.Is(err, os.ErrDeadlineExceeded) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			} else {
				err = context.DeadlineExceeded
			}
		}
		return "", fmt.Errorf("read whois reply: %w", err)
	}
	return string(body), nil
}

// referral returns the server named by a "refer:" or "whois:" line, with
// the WHOIS port added when missing.
func referral(text string) string {
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "refer", "whois", "referralserver":
			value = strings.TrimSpace(value)
			value = strings.TrimPrefix(value, "whois://")
			if value == "" {
				continue
			}
			if _, _, err := net.SplitHostPort(value); err != nil {
				value = net.JoinHostPort(value, port)
			}
			return value
		}
	}
	return ""
}
