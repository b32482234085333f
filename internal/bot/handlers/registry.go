package handlers

// RegisterAll builds every handler in dispatch order. Handlers whose app is
// not allowed by bot.apps, or whose services are missing, are included but
// disabled.
func RegisterAll(deps HandlerDeps) []Handler {
	return []Handler{
		NewAlarmHandler(deps),
		NewRSSHandler(deps),
		NewEmoticonHandler(deps),
		NewEmoticonFetcher(deps),
		NewRandomHandler(deps),
		NewYouTubeHandler(deps),
		NewTranslateHandler(deps),
	}
}
