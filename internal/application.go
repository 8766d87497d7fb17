package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/whoisthemole/internal/apperror"
	"github.com/rocketscienceinc/whoisthemole/internal/config"
	"github.com/rocketscienceinc/whoisthemole/internal/dispatch"
	"github.com/rocketscienceinc/whoisthemole/internal/poller"
	"github.com/rocketscienceinc/whoisthemole/internal/repository"
	"github.com/rocketscienceinc/whoisthemole/internal/repository/storage"
	"github.com/rocketscienceinc/whoisthemole/internal/session"
	"github.com/rocketscienceinc/whoisthemole/internal/timersync"
	"github.com/rocketscienceinc/whoisthemole/internal/transport/rest"
	"github.com/rocketscienceinc/whoisthemole/internal/tui"
)

type Options struct {
	Name   string
	Resume bool
	// TeaOptions are passed to the terminal program as is.
	TeaOptions []tea.ProgramOption
	Bell       io.Writer
}

// subscription ties the countdown to the polling loop so leaving a session stops both.
type subscription struct {
	*poller.Poller
	timer *timersync.Synchronizer
}

func (that subscription) Stop() {
	that.Poller.Stop()
	that.timer.Stop()
}

// RunApp - runs the terminal client until the player quits or a signal arrives.
func RunApp(logger *slog.Logger, conf *config.Config, opts Options) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := rest.NewClient(logger, conf.Server.URL, conf.Server.RequestTimeout)
	if err != nil {
		return fmt.Errorf("could not create server client: %w", err)
	}

	identities, closeIdentities, err := newIdentityRepository(ctx, log, conf.Identity)
	if err != nil {
		return err
	}
	defer closeIdentities()

	store := session.NewStore(logger)

	// program is assigned before anything that calls send can run.
	var program *tea.Program
	send := func(msg tea.Msg) { program.Send(msg) }

	timer := timersync.New(logger, conf.TimerInterval,
		func(left int) { send(tui.TickMsg{Left: left}) },
		func() { send(tui.AlarmMsg{}) },
	)

	poll := poller.New(logger, client, store, conf.PollInterval,
		func(transition session.Transition) {
			if view := store.View(); view != nil {
				timer.Observe(view.Phase, view.TimerEnd)
			} else {
				timer.Stop()
			}
			send(tui.SnapshotMsg{Transition: transition})
		},
		func(pollErr *apperror.PollError) { send(tui.PollErrorMsg{Err: pollErr}) },
	)
	sub := subscription{Poller: poll, timer: timer}
	defer sub.Stop()

	dispatcher := dispatch.New(logger, client, store, sub, identities, client.BaseURL())

	bell := opts.Bell
	if bell == nil {
		bell = os.Stderr
	}

	model := tui.New(ctx, logger, dispatcher, store, tui.Options{
		Name:   opts.Name,
		Resume: opts.Resume,
		Bell:   bell,
	})

	teaOpts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts.TeaOptions...)
	program = tea.NewProgram(model, teaOpts...)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	log.Info("Starting client", "server", client.BaseURL(), "identity_store", conf.Identity.Store)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer cancel()

		if _, runErr := program.Run(); runErr != nil && !isShutdown(runErr) {
			return fmt.Errorf("terminal program failed: %w", runErr)
		}
		return nil
	})

	group.Go(func() error {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-groupCtx.Done():
		}
		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Client stopped")
	return nil
}

func newIdentityRepository(
	ctx context.Context,
	log *slog.Logger,
	conf config.Identity,
) (repository.IdentityRepository, func(), error) {
	if conf.Store != config.IdentityStoreRedis {
		return repository.NewMemoryIdentityRepository(), func() {}, nil
	}

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeFn := func() {
		if closeErr := redisStorage.Close(); closeErr != nil {
			log.Error("could not close redis storage", "error", closeErr)
		}
	}

	return repository.NewIdentityRepository(redisStorage.Connection), closeFn, nil
}

func isShutdown(err error) bool {
	return errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled)
}
