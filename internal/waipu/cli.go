package waipu

import (
	"context"

	"github.com/disgoorg/snowflake/v2"

	"github.com/rusq/wipemydiscord/internal/discord"
)

type Discorder interface {
	SearchAllMessages(ctx context.Context, channelID, authorID snowflake.ID, cb func(n int)) ([]discord.Message, error)
	DeleteMessages(ctx context.Context, channelID snowflake.ID, msgs []discord.Message, cb func(m discord.Message, err error)) (int, error)
}
