package waipu

import (
	"context"
	"fmt"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/rusq/dlog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/rusq/wipemydiscord/internal/discord"
)

// Wipe finds all messages of the user in the channel and deletes them.  A
// search error is returned immediately, and nothing is deleted.  Deletion
// errors are logged and do not interrupt the process.  It returns the number
// of deleted messages.
func Wipe(ctx context.Context, cl Discorder, channelID, userID snowflake.ID) (int, error) {
	messages, err := scan(ctx, cl, channelID, userID)
	if err != nil {
		return 0, err
	}
	dlog.Printf("Found %d message(s) sent by %s", len(messages), userID)
	if len(messages) == 0 {
		return 0, nil
	}

	return cl.DeleteMessages(ctx, channelID, messages, logDeletion)
}

func logDeletion(m discord.Message, err error) {
	if err != nil {
		dlog.Printf("Unable to delete message with ID %s: %s", m.ID, err)
		return
	}
	dlog.Printf("Message with ID %s is deleted", m.ID)
}

// scan runs the search showing the spinner, if stderr is a terminal.
func scan(ctx context.Context, cl Discorder, channelID, userID snowflake.ID) ([]discord.Message, error) {
	pb := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetVisibility(term.IsTerminal(int(os.Stderr.Fd()))),
		progressbar.OptionSetDescription(fmt.Sprintf("scanning channel %s", channelID)),
		progressbar.OptionSpinnerType(9),
	)
	pb.RenderBlank()
	messages, err := cl.SearchAllMessages(ctx, channelID, userID, func(n int) {
		pb.Add(n)
	})
	pb.Finish()
	pb.Clear()
	return messages, err
}
