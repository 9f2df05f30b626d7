package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/rusq/wipemydiscord/internal/discord"
)

func (app *App) initConfirm(ctx context.Context) {
	app.pages.AddPage(stConfirming, app.view.mbConfirm, false, false)
	app.view.mbConfirm.
		AddButtons([]string{btnYes, btnNo}).
		SetDoneFunc(func(_ int, buttonLabel string) {
			app.handleConfirm(ctx, buttonLabel)
		}).
		SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
			if event.Key() == tcell.KeyESC {
				app.cancel(ctx)
				return nil
			}
			return event
		})
}

func (app *App) handleConfirm(ctx context.Context, buttonLabel string) {
	switch buttonLabel {
	case btnYes:
		if !app.event(ctx, evConfirmed) {
			return
		}
		go func() {
			if err := app.handleDelete(ctx); err != nil {
				app.error(err)
			}
		}()
	case btnNo:
		app.cancel(ctx)
	}
}

// handleDelete handles the deletion of the messages.  It gets the messages to
// delete from the FSM Metadata.
func (app *App) handleDelete(ctx context.Context) error {
	defer app.event(ctx, evDeleted)

	msgs, err := metadata[[]discord.Message](app.fsm, metaMessages)
	if err != nil {
		return fmt.Errorf("messages missing: %s", err)
	}
	app.logf("Deleting %d messages, please wait . . .", len(msgs))
	n, err := app.dc.DeleteMessages(ctx, app.channelID, msgs, func(m discord.Message, err error) {
		if err != nil {
			app.logf("Unable to delete message with ID %s: %s", m.ID, err)
			return
		}
		app.logf("Message with ID %s is deleted", m.ID)
	})
	app.logf("%d of %d messages deleted in channel %s", n, len(msgs), app.channelID)
	return err
}
