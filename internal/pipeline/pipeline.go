// Package pipeline runs one attendance report: sign in, find the summary table, classify it,
// and push the formatted report. A run never returns an error; every ending is an Outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timesheetbot/internal/attendance"
	"timesheetbot/internal/browser"
	"timesheetbot/internal/logging"
	"timesheetbot/internal/notify"
	"timesheetbot/internal/portal"
	"timesheetbot/internal/report"
)

// ErrPanic wraps a panic recovered during a run.
var ErrPanic = errors.New("run panicked")

// failureNotifyTimeout bounds the failure push, which may run after the run context expired.
const failureNotifyTimeout = 20 * time.Second

// Session is the portal walk a run drives. *portal.Session implements it.
type Session interface {
	Authenticate(ctx context.Context, creds portal.Credentials) error
	OpenReportPage(ctx context.Context) error
	LocateSummaryTable(ctx context.Context) (browser.Frame, bool, error)
	ExtractRows(ctx context.Context, frame browser.Frame) ([]attendance.Row, error)
	Screenshot(ctx context.Context, path string) error
	Close() error
}

// SessionOpener starts a browser and returns a fresh session on it.
type SessionOpener interface {
	Open(ctx context.Context) (Session, error)
}

// OpenerFunc adapts a function to SessionOpener.
type OpenerFunc func(ctx context.Context) (Session, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context) (Session, error) { return f(ctx) }

// Notifier delivers report text. *notify.Client implements it.
type Notifier interface {
	Send(ctx context.Context, text string) notify.DeliveryResult
}

// Kind classifies how a run ended.
type Kind int

const (
	KindFailed Kind = iota
	KindReported
	KindNoTableFound
	KindNoRowsMatched
)

func (k Kind) String() string {
	switch k {
	case KindReported:
		return "reported"
	case KindNoTableFound:
		return "no_table_found"
	case KindNoRowsMatched:
		return "no_rows_matched"
	default:
		return "failed"
	}
}

// Outcome is the result of one run.
type Outcome struct {
	Kind    Kind
	RunID   string
	Summary attendance.Summary
	// Message is the text that was (or, on a dry run, would have been) sent.
	Message    string
	Delivery   notify.DeliveryResult
	Err        error
	Screenshot string // path of the diagnostic screenshot, if one was taken
	DryRun     bool
}

// Options tunes a run.
type Options struct {
	Labels          attendance.Labels
	Location        *time.Location // zone of the report date; nil means local
	ScreenshotPath  string
	NotifyOnFailure bool
	DryRun          bool
	Now             func() time.Time
}

// Orchestrator runs the report sequence.
type Orchestrator struct {
	opener     SessionOpener
	notifier   Notifier
	classifier *attendance.Classifier
	opts       Options
	log        *zap.Logger
}

// New creates an Orchestrator. notifier may be nil for dry runs.
func New(opener SessionOpener, notifier Notifier, opts Options, log *zap.Logger) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.ScreenshotPath == "" {
		opts.ScreenshotPath = "not_found.png"
	}
	return &Orchestrator{
		opener:     opener,
		notifier:   notifier,
		classifier: attendance.NewClassifier(opts.Labels),
		opts:       opts,
		log:        logging.For(log, logging.CategoryPipeline),
	}
}

// Run performs one report run. The session, once opened, is closed exactly once on every path.
func (o *Orchestrator) Run(ctx context.Context, creds portal.Credentials) (out Outcome) {
	out = Outcome{RunID: uuid.NewString(), DryRun: o.opts.DryRun}
	log := o.log.With(zap.String("run_id", out.RunID))
	timer := logging.StartTimer(log, "run")

	var sess Session
	defer func() {
		if r := recover(); r != nil {
			out.Kind = KindFailed
			out.Err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		if sess != nil {
			if err := safeClose(sess); err != nil {
				log.Warn("failed to close session", zap.Error(err))
			}
		}
		if out.Kind == KindFailed {
			log.Error("run failed", zap.Error(out.Err))
			o.notifyFailure(ctx, log, &out)
		}
		log.Info("run finished", zap.Stringer("outcome", out.Kind), zap.Duration("elapsed", timer.Stop()))
	}()

	log.Info("run started", zap.Bool("dry_run", o.opts.DryRun))

	var err error
	sess, err = o.opener.Open(ctx)
	if err != nil {
		out.Err = fmt.Errorf("open session: %w", err)
		return out
	}
	if err := sess.Authenticate(ctx, creds); err != nil {
		out.Err = err
		return out
	}
	if err := sess.OpenReportPage(ctx); err != nil {
		out.Err = err
		return out
	}

	frame, found, err := sess.LocateSummaryTable(ctx)
	if err != nil {
		out.Err = err
		return out
	}
	if !found {
		out.Kind = KindNoTableFound
		o.screenshot(ctx, log, sess, &out)
		return out
	}

	rows, err := sess.ExtractRows(ctx, frame)
	if err != nil {
		out.Err = err
		return out
	}
	out.Summary = o.classifier.Classify(rows)
	log.Info("table classified",
		zap.Int("rows", len(rows)),
		zap.Stringer("matched", out.Summary.Matched))
	if out.Summary.Empty() {
		out.Kind = KindNoRowsMatched
		o.screenshot(ctx, log, sess, &out)
		return out
	}

	out.Message = report.Format(out.Summary, o.opts.Now().In(o.opts.Location))
	out.Kind = KindReported
	if o.opts.DryRun || o.notifier == nil {
		log.Info("dry run, report not sent")
		return out
	}
	out.Delivery = safeSend(ctx, o.notifier, out.Message)
	return out
}

func (o *Orchestrator) screenshot(ctx context.Context, log *zap.Logger, sess Session, out *Outcome) {
	if err := sess.Screenshot(ctx, o.opts.ScreenshotPath); err != nil {
		log.Warn("failed to save screenshot", zap.String("path", o.opts.ScreenshotPath), zap.Error(err))
		return
	}
	out.Screenshot = o.opts.ScreenshotPath
	log.Info("screenshot saved", zap.String("path", out.Screenshot))
}

func (o *Orchestrator) notifyFailure(ctx context.Context, log *zap.Logger, out *Outcome) {
	if !o.opts.NotifyOnFailure || o.opts.DryRun || o.notifier == nil {
		return
	}
	// The run context has often expired by now.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureNotifyTimeout)
	defer cancel()
	out.Message = report.FailureMessage(out.Err)
	out.Delivery = safeSend(ctx, o.notifier, out.Message)
	log.Info("failure notification", zap.Stringer("delivery", out.Delivery))
}

// safeClose turns a panic in Close into an error; it runs after the run's own recover.
func safeClose(sess Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: close: %v", ErrPanic, r)
		}
	}()
	return sess.Close()
}

// safeSend turns a panic in the notifier into an undelivered result.
func safeSend(ctx context.Context, n Notifier, text string) (res notify.DeliveryResult) {
	defer func() {
		if r := recover(); r != nil {
			res = notify.DeliveryResult{Reason: fmt.Sprintf("%v: send: %v", ErrPanic, r)}
		}
	}()
	return n.Send(ctx, text)
}
