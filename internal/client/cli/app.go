package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/charkeeper/internal/backup"
	"github.com/dmitrijs2005/charkeeper/internal/client/config"
	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/client/services"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/dmitrijs2005/charkeeper/internal/logging"
	"github.com/dmitrijs2005/charkeeper/internal/query"
	"github.com/dmitrijs2005/charkeeper/internal/store"
	"github.com/dmitrijs2005/charkeeper/internal/telemetry"
	"golang.org/x/term"
	"golang.org/x/text/language"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

type App struct {
	config      *config.Config
	logger      logging.Logger
	collections services.CollectionService

	// current is the collection open in the editor view, nil on the home view.
	current services.CharacterService
	clauses []query.SearchParam
	sort    query.SortParam

	reader      *bufio.Reader
	out         io.Writer
	interactive bool
	shutdown    func(context.Context) error
}

// NewApp builds the application from c: logger, telemetry, the local
// collection store and, when a bucket is configured, the S3 backup store.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	lang, err := language.Parse(c.Locale)
	if err != nil {
		return nil, fmt.Errorf("%w: locale %q: %v", common.ErrValidation, c.Locale, err)
	}

	tp, shutdown, err := telemetry.Setup(ctx, c.TelemetryEndpoint, common.AppName)
	if err != nil {
		return nil, fmt.Errorf("error initializing telemetry: %w", err)
	}

	st, err := store.NewManager(c.DataDir, c.NamespacePrefix, logger)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("error initializing data dir: %w", err)
	}

	// Left as a nil interface when disabled so the service can detect it.
	var backups services.BackupStore
	if c.BackupEnabled() {
		s3, err := backup.NewS3Store(ctx, backup.Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("error initializing backup storage: %w", err)
		}
		backups = s3
	}

	cs := services.NewCollectionService(st, backups, lang, logger, telemetry.NewReporter(tp))

	a := newApp(cs, os.Stdin, os.Stdout)
	a.config = c
	a.logger = logger
	a.shutdown = shutdown
	a.interactive = isTerminal(int(os.Stdout.Fd()))
	return a, nil
}

func newApp(cs services.CollectionService, in io.Reader, out io.Writer) *App {
	return &App{
		config:      &config.Config{},
		logger:      logging.Nop(),
		collections: cs,
		sort:        query.DefaultSort,
		reader:      bufio.NewReader(in),
		out:         out,
		shutdown:    func(context.Context) error { return nil },
	}
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	printlnFn("Welcome to charkeeper (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// Close releases the open collection and flushes telemetry, waiting at most
// the configured shutdown timeout.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.current != nil {
		errs = append(errs, a.current.Close())
		a.current = nil
	}

	if a.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.ShutdownTimeout)
		defer cancel()
	}
	errs = append(errs, a.shutdown(ctx))
	return errors.Join(errs...)
}

func (a *App) isEditing() bool {
	return a.current != nil
}

// status is shown in the REPL prompt: the editor path of the open
// collection, or nothing on the home view.
func (a *App) status() string {
	if a.current == nil {
		return ""
	}
	return models.EditorPath(a.current.UUID())
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// busy shows a progress indicator on terminals. The returned func clears it
// and must be deferred.
func (a *App) busy() func() {
	if !a.interactive {
		return func() {}
	}
	fmt.Fprint(a.out, "working...")
	return func() { fmt.Fprint(a.out, "\r\x1b[K") }
}

// shownError marks an error whose message has already been printed.
type shownError struct{ error }

func (e shownError) Unwrap() error { return e.error }

// Shown reports whether the message for err has already been printed.
func Shown(err error) bool {
	var s shownError
	return errors.As(err, &s)
}

// fail prints the user-facing message for err and returns it marked as shown.
func (a *App) fail(err error) error {
	a.println(userMessage(err))
	return shownError{err}
}

// failf is fail with a fixed prefix, used for toast-like failures such as
// "import failed: ...".
func (a *App) failf(prefix string, err error) error {
	a.println(prefix + ": " + userMessage(err))
	return shownError{err}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrDuplicateName),
		errors.Is(err, common.ErrArchiveFormat),
		errors.Is(err, common.ErrCollectionExists),
		errors.Is(err, common.ErrBackupDisabled):
		return err.Error()
	case errors.Is(err, common.ErrCollectionNotFound):
		return "collection not found (" + err.Error() + ")"
	case errors.Is(err, common.ErrCharacterNotFound):
		return "character not found"
	default:
		return "something went wrong: " + err.Error()
	}
}
