package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const infoText = "Press [Ctrl+Q] or [F10] to quit"

func (app *App) initMain() {
	app.view.tvLog.
		SetWordWrap(true).
		SetScrollable(true).
		SetChangedFunc(func() { app.tva.Draw() }).
		SetBorder(true).
		SetTitle(fmt.Sprintf("[ Channel %s ]", app.channelID))

	// The bottom row is the help message
	info := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetTextAlign(tview.AlignCenter).
		SetTextColor(tcell.ColorRed).
		SetText(infoText)

	mainScreen := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(app.view.tvLog, 0, 1, true).
		AddItem(info, 1, 1, false)

	app.pages.AddPage(stFetching, mainScreen, true, true)
}

// runSearch searches for user messages and moves the machine to the
// confirmation or "nothing to do" state.
func (app *App) runSearch(ctx context.Context) {
	app.logf("Scanning channel %s for messages of %s, please wait...", app.channelID, app.userID)
	total := 0
	msgs, err := app.dc.SearchAllMessages(ctx, app.channelID, app.userID, func(n int) {
		total += n
		if n > 0 {
			app.printf("...%d", total)
		}
	})
	if total > 0 {
		app.printf("\n")
	}
	if err != nil {
		app.fail(ctx, err)
		return
	}
	app.logf("Found %d message(s) sent by %s", len(msgs), app.userID)

	if len(msgs) == 0 {
		// show nothing to do message.
		if !app.event(ctx, evNothingToDo) {
			app.cancel(ctx)
		}
		return
	}

	app.fsm.SetMetadata(metaMessages, msgs)
	app.view.mbConfirm.SetText(fmt.Sprintf("Found %d messages in channel %s.  Delete?", len(msgs), app.channelID))

	if !app.event(ctx, evFetched) {
		app.cancel(ctx)
		return
	}
}
