package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hazealign/black-angus-main/internal/bot/handlers"
	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/database"
	"github.com/Hazealign/black-angus-main/internal/emoticon"
	"github.com/Hazealign/black-angus-main/internal/feed"
	"github.com/Hazealign/black-angus-main/internal/httpclient"
	"github.com/Hazealign/black-angus-main/internal/logger"
	"github.com/Hazealign/black-angus-main/internal/objectstore"
	"github.com/Hazealign/black-angus-main/internal/scraper"
	"github.com/Hazealign/black-angus-main/internal/translate"
)

func newEmoticonService(t *testing.T, store database.Store) *emoticon.Service {
	t.Helper()
	log := logger.Discard()
	return emoticon.NewService(store, objectstore.NewMemory(), httpclient.New(time.Second, 1, log), log)
}

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png:" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmoticonCommands(t *testing.T) {
	t.Parallel()
	deps := baseDeps(t)
	deps.Emoticons = newEmoticonService(t, deps.Store)
	srv := imageServer(t)

	h := handlers.NewEmoticonHandler(deps)
	fetcher := handlers.NewEmoticonFetcher(deps)

	_, reply := dispatch(t, h, "!emoticon add 고양이 "+srv.URL+"/cat.png")
	assert.Equal(t, chat.ColorGreen, reply.Embed.Color, reply.Embed.Description)

	_, reply = dispatch(t, h, "!이모티콘 복제 고양이 냥")
	assert.Equal(t, chat.ColorGreen, reply.Embed.Color, reply.Embed.Description)

	_, reply = dispatch(t, h, "!emoticon search 고양")
	require.Len(t, reply.Embed.Fields, 1)
	assert.Contains(t, reply.Embed.Fields[0].Value, "`고양이`")

	_, reply = dispatch(t, h, "!emoticon list")
	require.NotNil(t, reply.File)
	assert.Equal(t, "emoticons.txt", reply.File.Name)
	assert.Equal(t, "고양이\n냥", string(reply.File.Data))

	_, reply = dispatch(t, fetcher, "~냥 안녕")
	require.NotNil(t, reply.File)
	assert.Equal(t, "png:/cat.png", string(reply.File.Data))
	assert.True(t, strings.HasSuffix(reply.File.Name, ".png"))

	_, reply = dispatch(t, h, "!emoticon edit -e url 고양이 "+srv.URL+"/dog.png")
	assert.Contains(t, reply.Embed.Description, "2건")

	_, reply = dispatch(t, fetcher, "~냥")
	assert.Equal(t, "png:/dog.png", string(reply.File.Data))

	_, reply = dispatch(t, h, "!emoticon edit name 냥 멍")
	assert.Equal(t, chat.ColorGreen, reply.Embed.Color, reply.Embed.Description)

	_, reply = dispatch(t, h, "!emoticon delete 멍")
	assert.Equal(t, chat.ColorGreen, reply.Embed.Color)

	_, reply = dispatch(t, fetcher, "~멍")
	require.NotNil(t, reply.Embed)
	assert.Equal(t, chat.ColorRed, reply.Embed.Color)
	assert.Contains(t, reply.Embed.Description, "멍")
}

func TestEmoticonBusinessErrors(t *testing.T) {
	t.Parallel()
	deps := baseDeps(t)
	deps.Emoticons = newEmoticonService(t, deps.Store)
	h := handlers.NewEmoticonHandler(deps)

	_, reply := dispatch(t, h, "!emoticon add 아주아주아주아주긴이름 https://example.com/a.png")
	assert.Equal(t, chat.ColorRed, reply.Embed.Color)

	_, reply = dispatch(t, h, "!emoticon delete 없음")
	assert.Equal(t, chat.ColorRed, reply.Embed.Color)

	cmd, reply := dispatch(t, h, "!emoticon add onlyname")
	assert.True(t, cmd.Invalid)
	assert.Equal(t, chat.ColorRed, reply.Embed.Color)
}

func TestEmoticonFetcherMatch(t *testing.T) {
	t.Parallel()
	deps := baseDeps(t)
	deps.Emoticons = newEmoticonService(t, deps.Store)
	fetcher := handlers.NewEmoticonFetcher(deps)

	assert.True(t, fetcher.Match(message("~cat")))
	assert.True(t, fetcher.Match(message("~cat with words")))
	assert.False(t, fetcher.Match(message("~")))
	assert.False(t, fetcher.Match(message("~ cat")))
	assert.False(t, fetcher.Match(message("cat~")))
}

func TestRSSRegister(t *testing.T) {
	t.Parallel()
	deps := baseDeps(t)
	published := time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC)
	deps.Feeds = fakeFeeds{entries: []feed.Entry{
		{Title: "old", Link: "https://example.com/1", PublishedAt: published.Add(-time.Hour)},
		{Title: "new", Link: "https://example.com/2", PublishedAt: published},
	}}
	h := handlers.NewRSSHandler(deps)

	_, reply := dispatch(t, h, "!rss blog https://example.com/feed.xml #news")
	require.NotNil(t, reply.Embed)
	assert.Equal(t, chat.ColorGreen, reply.Embed.Color, reply.Embed.Description)

	sub, err := deps.Store.FindSubscription(context.Background(), "g1", "blog")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "c-news", sub.ChannelID)
	require.True(t, sub.LatestPublishedAt.Valid)
	assert.True(t, sub.LatestPublishedAt.Time.Equal(published))

	_, reply = dispatch(t, h, "!구독 blog https://example.com/other.xml #general")
	assert.Equal(t, chat.ColorRed, reply.Embed.Color, "duplicate name")
}

func TestRSSRegisterFailures(t *testing.T) {
	t.Parallel()
	deps := baseDeps(t)
	deps.Feeds = fakeFeeds{err: errors.New("connection refused")}
	h := handlers.NewRSSHandler(deps)

	cmd, reply := dispatch(t, h, "!rss")
	assert.True(t, cmd.Help)
	assert.NotEmpty(t, reply.Embed.Description)

	cmd, _ = dispatch(t, h, "!rss blog https://example.com/feed.xml #nowhere")
	assert.True(t, cmd.Invalid)

	cmd, _ = dispatch(t, h, "!rss blog ftp://example.com/feed.xml #news")
	assert.True(t, cmd.Invalid)

	_, reply = dispatch(t, h, "!rss blog https://example.com/feed.xml #news")
	assert.Equal(t, chat.ColorRed, reply.Embed.Color)
	assert.Contains(t, reply.Embed.Description, "connection refused")

	sub, err := deps.Store.FindSubscription(context.Background(), "g1", "blog")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestRandom(t *testing.T) {
	t.Parallel()
	h := handlers.NewRandomHandler(baseDeps(t))

	_, reply := dispatch(t, h, "!random 짜장면")
	assert.Equal(t, "랜덤 뽑기 결과는 [**짜장면**]입니다.", reply.Text)

	_, reply = dispatch(t, h, "!랜덤 짜장면 짬뽕")
	assert.True(t, strings.Contains(reply.Text, "짜장면") || strings.Contains(reply.Text, "짬뽕"))

	_, reply = dispatch(t, h, "!random")
	assert.Equal(t, "선택지를 한 개 이상 입력해주세요.", reply.Text)
}

func TestYouTube(t *testing.T) {
	t.Parallel()
	deps := baseDeps(t)
	rec := &chat.Recorder{}
	deps.Sender = chat.NewSerialSender(rec)
	deps.Searcher = fakeSearcher{videos: []scraper.Video{
		{Title: "one", Link: "https://youtu.be/1", Duration: "3:00", Uploader: "a"},
		{Title: "two", Link: "https://youtu.be/2"},
		{Title: "three", Link: "https://youtu.be/3"},
	}}
	h := handlers.NewYouTubeHandler(deps)

	cmd, reply := dispatch(t, h, "!youtube 2 lofi hip hop")
	assert.Nil(t, reply)
	assert.False(t, cmd.Invalid)

	sent := rec.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, "유튜브 검색 결과입니다.", sent[0].Reply.Text)
	assert.Equal(t, "one", sent[1].Reply.Embed.Title)
	assert.Len(t, sent[1].Reply.Embed.Fields, 2)
	assert.Equal(t, "two", sent[2].Reply.Embed.Title)
	for _, s := range sent {
		assert.Equal(t, "c1", s.ChannelID)
	}

	cmd, _ = dispatch(t, h, "!유튜브 9 too many")
	assert.True(t, cmd.Invalid, "above youtube.max_results")

	cmd, _ = dispatch(t, h, "!youtube")
	assert.True(t, cmd.Help)
}

func TestYouTubeSearchFailure(t *testing.T) {
	t.Parallel()
	deps := baseDeps(t)
	deps.Searcher = fakeSearcher{err: errors.New("chrome not found")}
	h := handlers.NewYouTubeHandler(deps)

	_, reply := dispatch(t, h, "!youtube cats")
	require.NotNil(t, reply.Embed)
	assert.Equal(t, chat.ColorRed, reply.Embed.Color)
}

func TestTranslate(t *testing.T) {
	t.Parallel()
	deps := baseDeps(t)
	tr := &fakeTranslator{}
	deps.Translator = tr
	h := handlers.NewTranslateHandler(deps)

	_, reply := dispatch(t, h, "!번역 한국어 영어 안녕  하세요")
	require.NotNil(t, reply.Embed)
	assert.Equal(t, "[영어] 안녕  하세요", reply.Embed.Description)
	assert.Equal(t, []string{"한국어>영어:안녕  하세요"}, tr.calls)

	cmd, reply := dispatch(t, h, "!translate klingon ko hello")
	assert.True(t, cmd.Invalid)
	require.Len(t, reply.Embed.Fields, 1)
	assert.Contains(t, reply.Embed.Fields[0].Value, "klingon")

	cmd, _ = dispatch(t, h, "!translate en ko")
	assert.True(t, cmd.Invalid)

	tr.err = translate.ErrUnsupportedLanguage
	_, reply = dispatch(t, h, "!translate en ko hello")
	assert.Equal(t, chat.ColorRed, reply.Embed.Color)
}

func TestTranslateDisabledWithoutBackend(t *testing.T) {
	t.Parallel()
	h := handlers.NewTranslateHandler(baseDeps(t))
	assert.True(t, h.Disabled())
	assert.False(t, h.Match(message("!translate en ko hello")))
}
