package waipu

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/wipemydiscord/internal/discord"
)

const (
	testChannel = snowflake.ID(100)
	testUser    = snowflake.ID(42)
)

var errFake = errors.New("fake error")

type fakeDiscord struct {
	found     []discord.Message
	searchErr error
	failIDs   map[snowflake.ID]bool

	searched int
	attempts []snowflake.ID
}

func (f *fakeDiscord) SearchAllMessages(ctx context.Context, channelID, authorID snowflake.ID, cb func(n int)) ([]discord.Message, error) {
	f.searched++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if cb != nil {
		cb(len(f.found))
	}
	return f.found, nil
}

func (f *fakeDiscord) DeleteMessages(ctx context.Context, channelID snowflake.ID, msgs []discord.Message, cb func(m discord.Message, err error)) (int, error) {
	n := 0
	for _, m := range msgs {
		f.attempts = append(f.attempts, m.ID)
		var err error
		if f.failIDs[m.ID] {
			err = errFake
		} else {
			n++
		}
		cb(m, err)
	}
	return n, nil
}

func messages(ids ...snowflake.ID) []discord.Message {
	var ret []discord.Message
	for _, id := range ids {
		ret = append(ret, discord.Message{ID: id, Author: discord.User{ID: testUser}, Content: "msg " + id.String()})
	}
	return ret
}

func TestWipe(t *testing.T) {
	tests := []struct {
		name         string
		fake         *fakeDiscord
		want         int
		wantAttempts []snowflake.ID
		wantErr      bool
	}{
		{
			name:         "deletes all messages",
			fake:         &fakeDiscord{found: messages(30, 20, 10)},
			want:         3,
			wantAttempts: []snowflake.ID{30, 20, 10},
		},
		{
			name:         "failure does not stop deletion",
			fake:         &fakeDiscord{found: messages(30, 20, 10), failIDs: map[snowflake.ID]bool{20: true}},
			want:         2,
			wantAttempts: []snowflake.ID{30, 20, 10},
		},
		{
			name: "nothing found",
			fake: &fakeDiscord{},
			want: 0,
		},
		{
			name:    "search error is fatal",
			fake:    &fakeDiscord{found: messages(1, 2), searchErr: errFake},
			want:    0,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Wipe(context.Background(), tt.fake, testChannel, testUser)
			if (err != nil) != tt.wantErr {
				t.Errorf("Wipe() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantAttempts, tt.fake.attempts)
			assert.Equal(t, 1, tt.fake.searched)
		})
	}
}

func TestList(t *testing.T) {
	t.Run("prints messages", func(t *testing.T) {
		fake := &fakeDiscord{found: messages(30, 20)}
		var buf bytes.Buffer
		require.NoError(t, List(context.Background(), &buf, fake, testChannel, testUser))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[0], "msg 30")
		assert.Contains(t, lines[1], "msg 20")
		assert.Equal(t, "total: 2", lines[2])
		assert.Empty(t, fake.attempts, "list must not delete anything")
	})
	t.Run("search error", func(t *testing.T) {
		fake := &fakeDiscord{searchErr: errFake}
		var buf bytes.Buffer
		assert.ErrorIs(t, List(context.Background(), &buf, fake, testChannel, testUser), errFake)
		assert.Empty(t, buf.String())
	})
}

func Test_preview(t *testing.T) {
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 6, "hello…"},
		{"newlines", "a\nb\r\nc", 10, "a b  c"},
		{"unicode", "привет мир", 7, "привет…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preview(tt.s, tt.n))
		})
	}
}
