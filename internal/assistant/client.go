package assistant

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/kir-gadjello/llmsh/internal/shellio"
)

// Default per-call timeouts from spec.md §4.6.
const (
	LivenessTimeout        = 500 * time.Millisecond
	SaveContextTimeout     = 1000 * time.Millisecond
	GenerateCommandTimeout = 10000 * time.Millisecond
	ExitTimeout            = 2000 * time.Millisecond
)

// Client is a synchronous Assistant Client: every call opens a fresh
// connection, probes liveness, sends one request, and reads one reply.
// The Event Loop calls it from both its output and its input goroutine;
// since each call uses its own connection and only reads SessionID after
// Init, it has no connection pooling or concurrency guards.
type Client struct {
	SocketPath string
	SessionID  string

	// Per-call timeouts, overridable (e.g. from internal/config) by
	// callers that construct a Client directly instead of via New.
	// Zero means "use the spec.md §4.6 default".
	LivenessTimeout        time.Duration
	SaveContextTimeout     time.Duration
	GenerateCommandTimeout time.Duration
	ExitTimeout            time.Duration
}

// New returns a Client bound to socketPath, using spec.md §4.6's default
// timeouts. Init must be called before SaveContext or GenerateCommand.
func New(socketPath string) *Client {
	return &Client{
		SocketPath:             socketPath,
		LivenessTimeout:        LivenessTimeout,
		SaveContextTimeout:     SaveContextTimeout,
		GenerateCommandTimeout: GenerateCommandTimeout,
		ExitTimeout:            ExitTimeout,
	}
}

func (c *Client) livenessTimeout() time.Duration {
	if c.LivenessTimeout == 0 {
		return LivenessTimeout
	}
	return c.LivenessTimeout
}

// Init establishes the assistant session, returning the message-of-the-day
// the daemon sends back on first connection.
func (c *Client) Init(user, apiVersion string) (motd string, err error) {
	resp, err := c.call(requestEnvelope{Type: typeSetup, User: user, APIVersion: apiVersion}, c.livenessTimeout())
	if err != nil {
		return "", err
	}
	if resp.Status != statusSetupSuccess {
		return "", fmt.Errorf("%w: unexpected status %q", errUnexpectedStatus, resp.Status)
	}
	c.SessionID = resp.SessionID
	return resp.MOTD, nil
}

// SaveContext ships one classified output block. kind is nil for "not
// yet decided" streaming partial output, matching spec.md §4.6.
func (c *Client) SaveContext(kind *shellio.OutputEvent, text string) error {
	req := requestEnvelope{Type: typeSaveContext, SessionID: c.SessionID, Context: text}
	if kind != nil {
		req.ContextType = kind.String()
	}
	resp, err := c.call(req, c.saveContextTimeout())
	if err != nil {
		return err
	}
	if resp.Status != statusSuccess {
		return fmt.Errorf("%w: %s", ErrHermitFailed, resp.Status)
	}
	return nil
}

func (c *Client) saveContextTimeout() time.Duration {
	if c.SaveContextTimeout == 0 {
		return SaveContextTimeout
	}
	return c.SaveContextTimeout
}

func (c *Client) generateCommandTimeout() time.Duration {
	if c.GenerateCommandTimeout == 0 {
		return GenerateCommandTimeout
	}
	return c.GenerateCommandTimeout
}

func (c *Client) exitTimeout() time.Duration {
	if c.ExitTimeout == 0 {
		return ExitTimeout
	}
	return c.ExitTimeout
}

// GenerateCommand asks the assistant to answer a line-editor prompt.
func (c *Client) GenerateCommand(prompt string) (fullResponse string, commands []string, err error) {
	req := requestEnvelope{Type: typeGenerateCommand, SessionID: c.SessionID, Prompt: prompt}
	resp, err := c.call(req, c.generateCommandTimeout())
	if err != nil {
		return "", nil, err
	}
	if resp.Status != statusCommandResponse {
		return "", nil, fmt.Errorf("%w: %s", ErrHermitFailed, resp.Status)
	}
	return resp.FullResponse, resp.Commands, nil
}

// Exit tears down the assistant session, best-effort: failures are
// returned but never block the caller from exiting.
func (c *Client) Exit() error {
	if c.SessionID == "" {
		return nil
	}
	_, err := c.call(requestEnvelope{Type: typeExit, SessionID: c.SessionID}, c.exitTimeout())
	return err
}

// call performs the liveness probe, then the real request, on a fresh
// connection.
func (c *Client) call(req requestEnvelope, timeout time.Duration) (*responseEnvelope, error) {
	conn, err := net.Dial("unix", c.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHermitDead, err)
	}
	defer conn.Close()

	if err := probeLiveness(conn, c.livenessTimeout()); err != nil {
		return nil, err
	}

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}

	body, err := marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if _, err := conn.Write(append(body, '\n')); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHermitDead, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHermitDead, err)
	}

	var resp responseEnvelope
	if err := unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed reply: %v", ErrFailed, err)
	}
	if resp.Status == statusError {
		return nil, fmt.Errorf("%w: %s", ErrHermitFailed, resp.Status)
	}
	return &resp, nil
}

// probeLiveness writes the empty-message liveness probe and expects
// "Ack" before any real request is sent, per spec.md §4.6.
func probeLiveness(conn net.Conn, timeout time.Duration) error {
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if _, err := conn.Write([]byte("\n")); err != nil {
		return fmt.Errorf("%w: %v", ErrHermitDead, err)
	}
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return ErrHermitDead
	}
	switch trimNewline(line) {
	case statusAck:
		return nil
	case statusBusy:
		return ErrHermitBusy
	default:
		return ErrHermitDead
	}
}

func trimNewline(b []byte) string {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return string(b)
}
