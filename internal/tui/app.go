// Package tui implements the interactive mode: it shows the search progress,
// asks for confirmation and logs the deletion of each message.
package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gdamore/tcell/v2"
	"github.com/looplab/fsm"
	"github.com/rivo/tview"
	"github.com/rusq/dlog"
	"github.com/rusq/osenv/v2"

	"github.com/rusq/wipemydiscord/internal/waipu"
)

const (
	btnYes = "Yes"
	btnNo  = "No"
	btnOK  = "OK"
)

type App struct {
	tva *tview.Application
	dc  waipu.Discorder
	log *dlog.Logger
	fsm *fsm.FSM

	pages *tview.Pages
	view  views

	channelID snowflake.ID
	userID    snowflake.ID

	mu        sync.Mutex
	searchErr error
}

type views struct {
	mbConfirm *tview.Modal
	mbNothing *tview.Modal

	tvLog *tview.TextView
}

func New(dc waipu.Discorder, channelID, userID snowflake.ID) *App {
	app := &App{
		tva: tview.NewApplication(),
		dc:  dc,

		pages: tview.NewPages(),
		view: views{
			mbConfirm: tview.NewModal(),
			mbNothing: tview.NewModal(),

			tvLog: tview.NewTextView(),
		},

		channelID: channelID,
		userID:    userID,
	}

	app.log = dlog.New(app.view.tvLog, "", dlog.Flags(), osenv.Value("DEBUG", "") != "")

	// init finite state machine
	app.fsm = initFSM(app)

	return app
}

// Run starts the search in background and runs the UI until the user quits.
// If the search failed, the search error is returned.
func (app *App) Run(ctx context.Context) error {
	app.initMain()
	app.initConfirm(ctx)
	app.initNothing(ctx)

	app.tva.SetInputCapture(app.handleKeystrokes)

	// async fetch is needed so that the tvLog will keep updating.
	go app.runSearch(ctx)

	if err := app.tva.SetRoot(app.pages, true).EnableMouse(false).Run(); err != nil {
		return err
	}
	return app.Err()
}

// Err returns the search error, if any.
func (app *App) Err() error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.searchErr
}

// fail records the search error and moves the machine to the final state.
func (app *App) fail(ctx context.Context, err error) {
	app.mu.Lock()
	app.searchErr = err
	app.mu.Unlock()

	app.error(err)
	app.event(ctx, evFailed)
}

func (app *App) logf(format string, a ...any) {
	app.log.Printf(format, a...)
}

func (app *App) error(err error) {
	app.log.Printf("ERROR: %s", err)
}

func (app *App) handleKeystrokes(event *tcell.EventKey) *tcell.EventKey {
	if app.fsm.Current() == stDeleting {
		// we do not process keystrokes until deletion is finished.
		return event
	}

	switch event.Key() {
	case tcell.KeyCtrlQ, tcell.KeyF10:
		app.tva.Stop()
	default:
		return event
	}
	return nil
}

// cancel sends a evCancelled event.
func (app *App) cancel(ctx context.Context) {
	app.event(ctx, evCancelled)
}

// event sends an event to FSM, will return true, if there were no errors.
func (app *App) event(ctx context.Context, event string) bool {
	if err := app.fsm.Event(ctx, event); err != nil {
		app.error(err)
		return false
	}
	return true
}

func (app *App) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(app.view.tvLog, format, a...)
}
