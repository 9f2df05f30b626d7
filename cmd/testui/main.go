// Command testui emulates the work of the Text UI for making screenshots
package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/rusq/dlog"

	"github.com/rusq/wipemydiscord/internal/discord"
	"github.com/rusq/wipemydiscord/internal/tui"
)

const (
	fakeSearchDelay      = 50 * time.Millisecond
	fakeDeleteDelay      = 20 * time.Millisecond
	maxFakeMessages      = 500
	fakeFailureFrequency = 13
)

var dotFile = flag.String("dot", "", "write the state machine graph to the `file` and exit")

func main() {
	flag.Parse()

	var (
		channelID = snowflake.New(time.Now())
		userID    = snowflake.New(time.Now().Add(-24 * time.Hour))
	)
	app := tui.New(FakeDiscord{user: userID, channel: channelID}, channelID, userID)
	if *dotFile != "" {
		if err := app.Visualise(*dotFile); err != nil {
			dlog.Fatal(err)
		}
		return
	}

	if err := app.Run(context.Background()); err != nil {
		dlog.Fatal(err)
	}
}

type FakeDiscord struct {
	user    snowflake.ID
	channel snowflake.ID
}

func (fd FakeDiscord) SearchAllMessages(ctx context.Context, channelID, authorID snowflake.ID, cb func(n int)) ([]discord.Message, error) {
	var n = rand.Intn(maxFakeMessages)
	var ret = make([]discord.Message, 0, n)
	ts := time.Now()
	for len(ret) < n {
		page := min(100, n-len(ret))
		for i := 0; i < page; i++ {
			ts = ts.Add(-time.Duration(rand.Intn(3600)) * time.Second)
			ret = append(ret, discord.Message{
				ID:        snowflake.New(ts),
				ChannelID: fd.channel,
				Author:    discord.User{ID: fd.user, Username: "me"},
				Timestamp: ts,
			})
		}
		cb(page)
		time.Sleep(fakeSearchDelay)
	}
	cb(0)
	return ret, nil
}

func (FakeDiscord) DeleteMessages(ctx context.Context, channelID snowflake.ID, msgs []discord.Message, cb func(m discord.Message, err error)) (int, error) {
	n := 0
	for i, m := range msgs {
		time.Sleep(fakeDeleteDelay)
		if i%fakeFailureFrequency == fakeFailureFrequency-1 {
			cb(m, &discord.APIError{Method: "DELETE", Path: "/channels/" + channelID.String() + "/messages/" + m.ID.String(), StatusCode: 429})
			continue
		}
		n++
		cb(m, nil)
	}
	return n, nil
}
