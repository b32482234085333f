package telegram

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/sanitize"
)

func TestRenderHTMLEmbed(t *testing.T) {
	out := renderHTML(sanitize.NewPolicy(), &chat.Reply{
		Text: "<@42>",
		Embed: &chat.Embed{
			Title:       "daily",
			URL:         "https://example.com/post",
			Description: "stand-up <script>alert(1)</script>",
			Fields:      []chat.EmbedField{{Name: "when", Value: "18:30"}},
			Footer:      "from the bot",
		},
	})

	assert.Contains(t, out, `<a href="tg://user?id=42"`)
	assert.Contains(t, out, `<a href="https://example.com/post"`)
	assert.Contains(t, out, "daily")
	assert.Contains(t, out, "<strong>when</strong>")
	assert.Contains(t, out, "18:30")
	assert.Contains(t, out, "<em>from the bot</em>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderHTMLText(t *testing.T) {
	out := renderHTML(sanitize.NewPolicy(), chat.TextReply("랜덤 뽑기 결과는 [**a**]입니다."))
	assert.Equal(t, "랜덤 뽑기 결과는 [<strong>a</strong>]입니다.", out)
}

func TestFromUpdate(t *testing.T) {
	_, ok := fromUpdate(&models.Update{})
	assert.False(t, ok)

	msg, ok := fromUpdate(&models.Update{Message: &models.Message{
		ID:   7,
		Text: "!random a b",
		From: &models.User{ID: 42},
		Chat: models.Chat{ID: -100123, Type: models.ChatTypeSupergroup},
	}})
	require.True(t, ok)
	assert.Equal(t, chat.Message{ID: "7", Content: "!random a b", AuthorID: "42", ChannelID: "-100123", GuildID: "-100123"}, msg)

	msg, ok = fromUpdate(&models.Update{Message: &models.Message{
		ID:      8,
		Caption: "~party",
		From:    &models.User{ID: 42},
		Chat:    models.Chat{ID: 42, Type: models.ChatTypePrivate},
	}})
	require.True(t, ok)
	assert.Equal(t, "~party", msg.Content)
	assert.Empty(t, msg.GuildID)
}

func TestIsPhoto(t *testing.T) {
	assert.True(t, isPhoto([]byte("\x89PNG\r\n\x1a\n0000")))
	assert.False(t, isPhoto([]byte("GIF89a....")))
	assert.False(t, isPhoto([]byte("plain text")))
}
