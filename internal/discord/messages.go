package discord

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"runtime/trace"
	"slices"
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Message is the subset of the Discord message object.
type Message struct {
	ID        snowflake.ID `json:"id"`
	ChannelID snowflake.ID `json:"channel_id"`
	Author    User         `json:"author"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
}

type User struct {
	ID       snowflake.ID `json:"id"`
	Username string       `json:"username"`
}

// ErrCursorNotDecreasing is returned by the search if the API returns a page
// that does not precede the previous one.
var ErrCursorNotDecreasing = errors.New("message cursor did not decrease")

type searchKey struct {
	channelID snowflake.ID
	authorID  snowflake.ID
}

func messagesPath(channelID snowflake.ID) string {
	return "/channels/" + channelID.String() + "/messages"
}

func messagePath(channelID, messageID snowflake.ID) string {
	return messagesPath(channelID) + "/" + messageID.String()
}

// SearchAllMessages returns all messages in the channel sent by the author,
// newest first.  It walks the channel history from the most recent message
// backwards, page by page, until the API returns an empty page.  Any API error
// aborts the search, no partial result is returned.  For each page, the
// callback function will be invoked with the number of messages in the page,
// if not nil.
func (c *Client) SearchAllMessages(ctx context.Context, channelID, authorID snowflake.ID, cb func(n int)) ([]Message, error) {
	ctx, task := trace.NewTask(ctx, "SearchAllMessages")
	defer task.End()

	key := searchKey{channelID, authorID}
	if cached, err := c.cache.Get(key); err == nil {
		trace.Log(ctx, "cache", "hit")
		msgs := slices.Clone(cached.([]Message))
		if cb != nil {
			cb(len(msgs))
		}
		return msgs, nil
	}

	msgs, err := c.collectMessages(ctx, channelID, authorID, cb)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(key, slices.Clone(msgs)); err != nil {
		return nil, err
	}
	return msgs, nil
}

// collectMessages fetches pages of messages using the "before" cursor and
// collects the ones authored by authorID.
func (c *Client) collectMessages(ctx context.Context, channelID, authorID snowflake.ID, cb func(n int)) ([]Message, error) {
	var (
		before snowflake.ID // zero means "from the most recent message"
		found  = make([]Message, 0)
	)
	for {
		page, err := c.messagesPage(ctx, channelID, before)
		if err != nil {
			return nil, fmt.Errorf("failed to get messages: %w", err)
		}
		if cb != nil {
			cb(len(page))
		}
		if len(page) == 0 {
			break
		}
		for _, m := range page {
			if m.Author.ID == authorID {
				found = append(found, m)
			}
		}
		// the last message of the page is the oldest, regardless of the author.
		oldest := page[len(page)-1].ID
		if before != 0 && oldest >= before {
			return nil, fmt.Errorf("%w: got %s, previous %s", ErrCursorNotDecreasing, oldest, before)
		}
		before = oldest
		trace.Logf(ctx, "logic", "cursor: %s, found: %d", before, len(found))
	}
	return found, nil
}

// messagesPage returns up to defBatchSize messages that precede the message
// with ID before.  If before is zero, the latest messages are returned.
func (c *Client) messagesPage(ctx context.Context, channelID, before snowflake.ID) ([]Message, error) {
	q := url.Values{"limit": {strconv.Itoa(defBatchSize)}}
	if before != 0 {
		q.Set("before", before.String())
	}
	var page []Message
	if err := c.do(ctx, "GET", messagesPath(channelID), q, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// DeleteMessage deletes a single message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID) error {
	return c.do(ctx, "DELETE", messagePath(channelID, messageID), nil, nil)
}

// DeleteMessages deletes messages one by one, in the order given.  A failure
// to delete a message does not stop the process, the error is passed to the
// callback function cb (if not nil) along with the message, and the next
// message is processed.  cb is called after each attempt with nil error on
// success.
//
// It returns the number of deleted messages.  The only error returned is the
// context error, if the context is cancelled before all messages are
// processed.
func (c *Client) DeleteMessages(ctx context.Context, channelID snowflake.ID, msgs []Message, cb func(m Message, err error)) (int, error) {
	ctx, task := trace.NewTask(ctx, "DeleteMessages")
	defer task.End()

	// clearing cache.
	if c.cache.Remove(searchKey{channelID, authorOf(msgs)}) {
		trace.Log(ctx, "logic", "cache cleared")
	}

	total := 0
	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		err := c.DeleteMessage(ctx, channelID, m.ID)
		if err != nil {
			trace.Logf(ctx, "api", "delete %s error: %s", m.ID, err)
		} else {
			total++
		}
		if cb != nil {
			cb(m, err)
		}
	}
	trace.Logf(ctx, "logic", "deleted %d/%d", total, len(msgs))
	return total, nil
}

func authorOf(msgs []Message) snowflake.ID {
	if len(msgs) == 0 {
		return 0
	}
	return msgs[0].Author.ID
}
