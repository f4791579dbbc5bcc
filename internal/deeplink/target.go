package deeplink

import (
	"net/url"
	"strings"
)

// BounceRoute - same-origin endpoint, который перенаправляет на custom scheme.
const BounceRoute = "/dl"

// AppBase возвращает "<scheme>://<path>" без query.
func AppBase(scheme, path string) string {
	return scheme + "://" + path
}

// Target строит deeplink "<scheme>://<path>?id=<id>".
// Схема и путь подставляются без изменений, кодируется только id.
func Target(scheme, path, id string) string {
	return AppBase(scheme, path) + "?id=" + EncodeComponent(id)
}

// BounceURL строит относительный URL bounce-эндпоинта для id.
func BounceURL(id string) string {
	return BounceRoute + "?id=" + EncodeComponent(id)
}

// unreservedMarks - символы, которые encodeURIComponent оставляет как есть,
// а url.QueryEscape кодирует.
var unreservedMarks = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent кодирует значение так же, как encodeURIComponent на странице:
// пробел превращается в %20, а не в "+", символы ! ' ( ) * не кодируются.
func EncodeComponent(value string) string {
	return unreservedMarks.Replace(url.QueryEscape(value))
}
