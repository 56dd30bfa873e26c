// Package portal drives a signed-in session against the HR portal: federated sign-on, the
// calendar report page, and discovery and extraction of the attendance summary table.
package portal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"timesheetbot/internal/attendance"
	"timesheetbot/internal/browser"
	"timesheetbot/internal/logging"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidTransition    = errors.New("invalid session transition")
	ErrWaitTimeout          = errors.New("condition not met before timeout")
	ErrTableMissing         = errors.New("summary table missing")
	ErrSessionClosed        = errors.New("session closed")
)

// Config describes the portal's fixed endpoints and markup.
type Config struct {
	SignOnURL        string
	ReportURL        string
	RelyingPartyHost string // host the IdP redirects back to once sign-on succeeds

	UsernameSelector string
	PasswordSelector string
	SubmitSelector   string
	TableClass       string

	AuthTimeout   time.Duration
	ReportTimeout time.Duration
	PollInterval  time.Duration
}

// DefaultConfig returns the endpoints of the hospital's ADFS and Humatrix deployment.
func DefaultConfig() Config {
	return Config{
		SignOnURL:        "https://sts.siphhospital.com/adfs/ls/IdpInitiatedSignOn.aspx?LoginToRp=https://SIPH.myhumatrix.com&li=1",
		ReportURL:        "https://siph.myhumatrix.com/ESS/ETime/Hospital/MyCalendar.aspx",
		RelyingPartyHost: "siph.myhumatrix.com",
		UsernameSelector: "input[name='UserName']",
		PasswordSelector: "input[name='Password']",
		SubmitSelector:   "#submitButton",
		TableClass:       "tbActualSummary",
		AuthTimeout:      30 * time.Second,
		ReportTimeout:    30 * time.Second,
		PollInterval:     500 * time.Millisecond,
	}
}

// TableSelector is the CSS selector of the summary table.
func (c Config) TableSelector() string {
	return "table." + c.TableClass
}

// Credentials are the portal sign-on credentials.
type Credentials struct {
	Username string
	Password string
}

// Session is one run's walk through the portal. It is not safe for concurrent use.
type Session struct {
	cfg     Config
	page    browser.Page
	release func() error
	log     *zap.Logger
	state   State

	closeOnce sync.Once
	closeErr  error
}

// NewSession wraps page. release frees the page's browser and runs exactly once, from Close.
func NewSession(page browser.Page, release func() error, cfg Config, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if release == nil {
		release = func() error { return nil }
	}
	return &Session{
		cfg:     cfg,
		page:    page,
		release: release,
		log:     log,
		state:   StateUnauthenticated,
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}

// Authenticate signs in through the identity provider and waits until the browser has been
// redirected back to the relying party.
func (s *Session) Authenticate(ctx context.Context, creds Credentials) error {
	if err := s.transition(StateAuthenticating); err != nil {
		return err
	}
	s.log.Info("signing in", zap.String("user", creds.Username))

	if err := s.page.Navigate(ctx, s.cfg.SignOnURL); err != nil {
		return fmt.Errorf("open sign-on page: %w", err)
	}
	if err := s.page.Fill(ctx, s.cfg.UsernameSelector, creds.Username); err != nil {
		return fmt.Errorf("enter username: %w", err)
	}
	if err := s.page.Fill(ctx, s.cfg.PasswordSelector, creds.Password); err != nil {
		return fmt.Errorf("enter password: %w", err)
	}
	if err := s.page.Click(ctx, s.cfg.SubmitSelector); err != nil {
		return fmt.Errorf("submit sign-on form: %w", err)
	}
	if err := s.transition(StateAwaitingFederationRedirect); err != nil {
		return err
	}

	var last string
	timer := logging.StartTimer(s.log, "sign-on redirect")
	err := poll(ctx, s.cfg.AuthTimeout, s.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		u, err := s.page.URL(ctx)
		if err != nil {
			// Documents are torn down mid-redirect; try again on the next tick.
			return false, nil
		}
		last = u
		return onHost(u, s.cfg.RelyingPartyHost), nil
	})
	timer.StopWithThreshold(s.cfg.AuthTimeout / 2)
	if errors.Is(err, ErrWaitTimeout) {
		return fmt.Errorf("%w: not redirected to %s within %s (at %s)",
			ErrAuthenticationFailed, s.cfg.RelyingPartyHost, s.cfg.AuthTimeout, stripQuery(last))
	}
	if err != nil {
		return err
	}
	s.log.Info("signed in", zap.String("url", stripQuery(last)))
	return s.transition(StateAuthenticated)
}

// OpenReportPage navigates to the calendar report and waits for its load event.
func (s *Session) OpenReportPage(ctx context.Context) error {
	if err := s.transition(StateNavigatingToReport); err != nil {
		return err
	}
	s.log.Info("opening report page", zap.String("url", s.cfg.ReportURL))
	if err := s.page.Navigate(ctx, s.cfg.ReportURL); err != nil {
		return fmt.Errorf("open report page: %w", err)
	}
	if err := s.page.WaitLoad(ctx); err != nil {
		return fmt.Errorf("load report page: %w", err)
	}
	return s.transition(StateReportLoaded)
}

// LocateSummaryTable polls the frame tree until a frame holds the summary table or the report
// timeout elapses. Not finding the table is reported as found == false with a nil error.
func (s *Session) LocateSummaryTable(ctx context.Context) (frame browser.Frame, found bool, err error) {
	if s.state != StateReportLoaded {
		return nil, false, fmt.Errorf("%w: locate table from %s", ErrInvalidTransition, s.state)
	}
	selector := s.cfg.TableSelector()
	timer := logging.StartTimer(s.log, "summary table search")
	err = poll(ctx, s.cfg.ReportTimeout, s.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		f, err := FindFrame(ctx, s.page, selector)
		if err != nil {
			return false, err
		}
		frame = f
		return f != nil, nil
	})
	timer.StopWithThreshold(s.cfg.ReportTimeout / 2)
	switch {
	case err == nil:
		s.log.Info("summary table located", zap.String("selector", selector))
		return frame, true, s.transition(StateTableLocated)
	case errors.Is(err, ErrWaitTimeout):
		s.log.Warn("summary table not found", zap.String("selector", selector), zap.Duration("waited", s.cfg.ReportTimeout))
		return nil, false, s.transition(StateTableNotFound)
	default:
		return nil, false, err
	}
}

// ExtractRows reads the summary table out of frame.
func (s *Session) ExtractRows(ctx context.Context, frame browser.Frame) ([]attendance.Row, error) {
	if s.state != StateTableLocated {
		return nil, fmt.Errorf("%w: extract rows from %s", ErrInvalidTransition, s.state)
	}
	markup, err := frame.OuterHTML(ctx, s.cfg.TableSelector())
	if errors.Is(err, browser.ErrNoElement) {
		return nil, fmt.Errorf("%w: %v", ErrTableMissing, err)
	}
	if err != nil {
		return nil, fmt.Errorf("read summary table: %w", err)
	}
	rows, err := ParseTable(strings.NewReader(markup), s.cfg.TableClass)
	if err != nil {
		return nil, err
	}
	s.log.Debug("rows extracted", zap.Int("rows", len(rows)))
	return rows, nil
}

// Screenshot saves the current page for diagnosis.
func (s *Session) Screenshot(ctx context.Context, path string) error {
	if s.state == StateClosed {
		return ErrSessionClosed
	}
	return s.page.Screenshot(ctx, path)
}

// Close releases the browser. Later calls return the first call's result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.state != StateClosed {
			_ = s.transition(StateClosed)
		}
		s.closeErr = s.release()
	})
	return s.closeErr
}

func onHost(raw, host string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), host)
}

// stripQuery drops query and fragment so relay tokens never reach the logs.
func stripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
