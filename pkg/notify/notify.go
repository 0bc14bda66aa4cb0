// Package notify provides run completion notifications for storecheck suites.
// Destinations are go-pkgz/notify URLs (telegram:chat?token=..., slack:channel?token=...,
// mailto:to@host?from=...&smtpHost=..., http(s) webhooks) plus exec:/path/to/script
// for piping the JSON result to a local script.
package notify

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"os"
	"strings"
	"time"

	ntfy "github.com/go-pkgz/notify"
)

// Params holds configuration for creating a notification Service.
type Params struct {
	URLs      []string // destination URLs; empty disables notifications
	OnSuccess bool     // notify when all journeys pass
	OnFailure bool     // notify when any journey fails
	TimeoutMs int      // per-send timeout, defaults to 10s
}

// Result holds completion data for notifications.
type Result struct {
	Status   string `json:"status"` // "success" or "failure"
	Target   string `json:"target"` // storefront base url
	Passed   int    `json:"passed"`
	Failed   int    `json:"failed"`
	Skipped  int    `json:"skipped"`
	Duration string `json:"duration"`
	LogPath  string `json:"log_path,omitempty"`
	Error    string `json:"error,omitempty"`
}

// logger interface for dependency injection.
type logger interface {
	Print(format string, args ...any)
}

// Service sends run results to the configured destinations.
type Service struct {
	dests     []string
	custom    *customChannel
	onSuccess bool
	onFailure bool
	timeoutMs int
	hostname  string // resolved once at creation via os.Hostname()
	log       logger
}

// sendFn is the routing send, replaceable in tests to avoid live calls.
var sendFn = ntfy.Send

// New creates a notification Service from the given Params.
// returns nil, nil if no destinations are configured, enabling callers to
// skip nil checks via nil-safe Send. validates each destination URL.
func New(p Params, log logger) (*Service, error) {
	if len(p.URLs) == 0 {
		return nil, nil //nolint:nilnil // nil,nil signals "no destinations configured" — Send is nil-safe
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	svc := &Service{
		onSuccess: p.OnSuccess,
		onFailure: p.OnFailure,
		timeoutMs: p.TimeoutMs,
		hostname:  hostname,
		log:       log,
	}
	if svc.timeoutMs <= 0 {
		svc.timeoutMs = 10000
	}

	for _, dest := range p.URLs {
		dest = strings.TrimSpace(dest)
		if dest == "" {
			continue
		}
		if script, ok := strings.CutPrefix(dest, "exec:"); ok {
			if svc.custom != nil {
				return nil, fmt.Errorf("multiple exec destinations, only one script is supported")
			}
			svc.custom = newCustomChannel(script)
			continue
		}
		if err := validateDest(dest); err != nil {
			return nil, err
		}
		svc.dests = append(svc.dests, dest)
	}

	return svc, nil
}

// validateDest checks the destination scheme is one the router understands.
func validateDest(dest string) error {
	u, err := url.Parse(dest)
	if err != nil {
		return fmt.Errorf("invalid notification url %q: %w", dest, err)
	}
	switch u.Scheme {
	case "telegram", "slack", "mailto", "http", "https":
		return nil
	default:
		return fmt.Errorf("unsupported notification scheme %q in %q", u.Scheme, dest)
	}
}

// Send delivers the result to all destinations. nil-safe on receiver.
// checks onSuccess/onFailure flags; errors are logged but never returned.
func (s *Service) Send(ctx context.Context, r Result) {
	if s == nil {
		return
	}

	if r.Status == "success" && !s.onSuccess {
		return
	}
	if r.Status == "failure" && !s.onFailure {
		return
	}

	msg := s.formatMessage(r)

	timeout := time.Duration(s.timeoutMs) * time.Millisecond
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, dest := range s.dests {
		text := msg
		// telegram HTML parse mode needs the message escaped
		if strings.HasPrefix(dest, "telegram:") && strings.Contains(dest, "parseMode=HTML") {
			text = html.EscapeString(msg)
		}
		if err := sendFn(sendCtx, dest, text); err != nil {
			s.log.Print("[WARN] notification failed for %s: %v", redact(dest), err)
		}
	}

	if s.custom != nil {
		if err := s.custom.send(sendCtx, r); err != nil {
			s.log.Print("[WARN] custom notification failed: %v", err)
		}
	}
}

// formatMessage creates a plain text notification message from the result.
func (s *Service) formatMessage(r Result) string {
	var b strings.Builder

	if r.Status == "success" {
		fmt.Fprintf(&b, "storecheck passed on %s\n", s.hostname)
	} else {
		fmt.Fprintf(&b, "storecheck failed on %s\n", s.hostname)
	}

	b.WriteString("\n")

	if r.Target != "" {
		fmt.Fprintf(&b, "target:   %s\n", r.Target)
	}
	fmt.Fprintf(&b, "journeys: %d passed, %d failed", r.Passed, r.Failed)
	if r.Skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", r.Skipped)
	}
	b.WriteString("\n")
	if r.Duration != "" {
		fmt.Fprintf(&b, "duration: %s\n", r.Duration)
	}
	if r.LogPath != "" {
		fmt.Fprintf(&b, "log:      %s\n", r.LogPath)
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "error:    %s\n", r.Error)
	}

	return b.String()
}

// redact strips query values (tokens) from a destination for logging.
func redact(dest string) string {
	u, err := url.Parse(dest)
	if err != nil {
		return dest
	}
	q := u.Query()
	for k := range q {
		q.Set(k, "xxx")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
