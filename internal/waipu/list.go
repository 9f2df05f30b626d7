package waipu

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

const maxPreview = 60 // characters of message content

// List prints the messages of the user in the channel without deleting them.
func List(ctx context.Context, w io.Writer, cl Discorder, channelID, userID snowflake.ID) error {
	messages, err := scan(ctx, cl, channelID, userID)
	if err != nil {
		return err
	}
	for _, m := range messages {
		if _, err := fmt.Fprintf(w, "%20s  %s  %s\n", m.ID, m.Timestamp.Local().Format(time.DateTime), preview(m.Content, maxPreview)); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "total: %d\n", len(messages))
	return err
}

func preview(s string, n int) string {
	r := []rune(s)
	for i := range r {
		if r[i] == '\n' || r[i] == '\r' {
			r[i] = ' '
		}
	}
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
