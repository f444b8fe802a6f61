package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spdl/internal/audio"
	"github.com/desertthunder/spdl/internal/repositories"
	"github.com/desertthunder/spdl/internal/retry"
	"github.com/desertthunder/spdl/internal/services"
	"github.com/desertthunder/spdl/internal/shared"
	"github.com/desertthunder/spdl/internal/tasks"
	"github.com/desertthunder/spdl/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	source     services.SnapshotSource
	resolver   services.TrackResolver
	downloader services.Downloader
	tagger     tasks.CoverEmbedder
	history    *repositories.History
	db         *sql.DB
	logger     *log.Logger
	logCloser  io.Closer
	fixedLog   bool // logger injected, never replaced by the file logger
	verbose    bool
	output     io.Writer
	errOutput  io.Writer
	plain      bool
	wizard     wizardFunc
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Nil collaborators are built from Config on first use.
type RunnerOpts struct {
	Config     *shared.Config
	Source     services.SnapshotSource
	Resolver   services.TrackResolver
	Downloader services.Downloader
	Tagger     tasks.CoverEmbedder
	History    *repositories.History
	Logger     *log.Logger
	Output     io.Writer
	ErrOutput  io.Writer
	Plain      bool // disable styled output
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}

	r := &Runner{
		config:     opts.Config,
		source:     opts.Source,
		resolver:   opts.Resolver,
		downloader: opts.Downloader,
		tagger:     opts.Tagger,
		history:    opts.History,
		logger:     opts.Logger,
		fixedLog:   opts.Logger != nil,
		output:     opts.Output,
		errOutput:  opts.ErrOutput,
		plain:      opts.Plain,
		wizard:     runWizard,
	}
	if r.logger == nil {
		r.logger = shared.NewLogger(opts.ErrOutput)
		r.logger.SetLevel(log.WarnLevel)
	}
	if r.tagger == nil && opts.Config.Cover.Embed {
		r.tagger = audio.NewTagger(opts.Config.Cover.MaxSize)
	}
	return r
}

// buildServices builds the collaborators that were not injected. It runs after before, so they log to the file logger.
func (r *Runner) buildServices() {
	if r.source != nil && r.resolver != nil && r.downloader != nil {
		return
	}
	api := services.NewDownloaderAPI(services.APIOptsFromConfig(r.config, r.logger))

	if r.source == nil {
		r.source = r.snapshotSource(api)
	}
	if r.resolver == nil {
		r.resolver = api
	}
	if r.downloader == nil {
		client := &http.Client{Timeout: r.config.API.Timeout()}
		r.downloader = services.NewHTTPDownloader(client, retry.FromConfig(r.config.Retry), r.logger)
	}
}

// snapshotSource prefers the Spotify Web API when client credentials are configured.
func (r *Runner) snapshotSource(api *services.DownloaderAPI) services.SnapshotSource {
	creds := r.config.Credentials.Spotify
	if !creds.Configured() {
		return api
	}

	svc, err := services.NewSpotifyService(map[string]string{
		"client_id":     creds.ClientID,
		"client_secret": creds.ClientSecret,
	})
	if err != nil {
		r.logger.Warn("spotify credentials unusable, falling back to the downloader API", "error", err)
		return api
	}
	return svc.WithHTTPClient(&http.Client{Timeout: r.config.API.Timeout()}).
		WithRetry(retry.FromConfig(r.config.Retry), r.logger)
}

// before replaces the bootstrap logger with the rotating file logger. --verbose mirrors it on stderr.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.fixedLog {
		return ctx, nil
	}

	verbose := cmd.Bool("verbose")
	if r.logCloser == nil {
		var tee io.Writer
		if verbose {
			tee = r.errOutput
		}
		logger, closer, err := shared.NewFileLogger(r.config.Log, tee)
		if err != nil {
			return ctx, err
		}
		r.logger, r.logCloser, r.verbose = logger, closer, verbose
		r.logger.Info("spdl started", "command", cmd.FullName())
		return ctx, nil
	}

	if verbose && !r.verbose {
		if w, ok := r.logCloser.(io.Writer); ok {
			r.logger.SetOutput(io.MultiWriter(w, r.errOutput))
		}
		r.verbose = true
	}
	return ctx, nil
}

// Close releases the history database and the log file.
func (r *Runner) Close() error {
	var err error
	if r.db != nil {
		err = r.db.Close()
		r.db = nil
	}
	if r.logCloser != nil {
		if cerr := r.logCloser.Close(); cerr != nil && err == nil {
			err = cerr
		}
		r.logCloser = nil
	}
	return err
}

// openHistory returns the history repositories, opening the database on first use.
// It returns nil when history is disabled.
func (r *Runner) openHistory() (*repositories.History, error) {
	if r.history != nil {
		return r.history, nil
	}
	if !r.config.Database.Enabled {
		return nil, nil
	}

	db, err := shared.OpenHistory(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	r.db = db
	r.history = repositories.NewHistory(db)
	return r.history, nil
}

// run is one recorded invocation of download or sync.
type run struct {
	recorder *repositories.HistoryRecorder
	history  *repositories.History
}

// beginRun starts a history run. History failures are logged and never stop the download.
func (r *Runner) beginRun(ctx context.Context, mode, target string) *run {
	history, err := r.openHistory()
	if err != nil {
		r.logger.Warn("download history unavailable", "error", err)
		return &run{}
	}
	if history == nil {
		return &run{}
	}

	recorder, err := history.Begin(ctx, mode, target)
	if err != nil {
		r.logger.Warn("failed to record run", "error", err)
		return &run{}
	}
	return &run{recorder: recorder, history: history}
}

// Recorder returns the engine recorder, nil when history is off.
func (h *run) Recorder() tasks.Recorder {
	if h.recorder == nil {
		return nil
	}
	return h.recorder
}

func (h *run) finish(ctx context.Context, logger *log.Logger, planned, downloaded, failed int) {
	if h.recorder == nil {
		return
	}
	if err := h.history.Runs.Finish(ctx, h.recorder.RunID(), planned, downloaded, failed); err != nil {
		logger.Warn("failed to finish run", "run", h.recorder.RunID(), "error", err)
	}
}

// newEngine builds a download engine that records into recorder.
func (r *Runner) newEngine(recorder tasks.Recorder) *tasks.DownloadEngine {
	r.buildServices()
	return tasks.NewDownloadEngine(tasks.EngineOpts{
		Source:            r.source,
		Resolver:          r.resolver,
		Downloader:        r.downloader,
		Tagger:            r.tagger,
		Recorder:          recorder,
		Workers:           r.config.Download.Workers,
		CreateMissingDirs: r.config.Download.CreateMissingDirs,
		WaitForProgress:   true,
		Logger:            r.logger,
	})
}

func (r *Runner) painter(w io.Writer) *ui.Painter {
	return ui.NewPainter(w, r.plain)
}

// startProgress paints engine updates on w until the returned stop function is called.
// The painter drains for the whole run, so engines built by newEngine may block on it.
func (r *Runner) startProgress(w io.Writer) (chan<- tasks.ProgressUpdate, func()) {
	ch := make(chan tasks.ProgressUpdate, 64)
	p := r.painter(w)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Drain(ch)
	}()

	return ch, func() {
		close(ch)
		wg.Wait()
	}
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("%s\n", separator)
	r.writePlain("%v\n", title)
	r.writePlain("%s\n", separator)
}

const separator = "----------------------------------------"
