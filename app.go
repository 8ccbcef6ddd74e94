package configbot

import "strings"

// App identifies one of the configurable applications. The zero value is
// never a valid store key.
type App int

const (
	AppUnknown App = iota
	AppChat
	AppMatchmaking
	AppTournament
)

// matchOrder is the keyword priority: a request mentioning several
// applications resolves to the first one listed here.
var matchOrder = []App{AppTournament, AppMatchmaking, AppChat}

func (a App) String() string {
	switch a {
	case AppChat:
		return "chat"
	case AppMatchmaking:
		return "matchmaking"
	case AppTournament:
		return "tournament"
	default:
		return "unknown"
	}
}

// Apps returns every valid application in declaration order.
func Apps() []App {
	return []App{AppChat, AppMatchmaking, AppTournament}
}

// ParseApp maps an exact application name to its App.
func ParseApp(name string) (App, bool) {
	for _, a := range Apps() {
		if a.String() == name {
			return a, true
		}
	}
	return AppUnknown, false
}

// MatchApp reports the highest priority application whose name occurs as a
// case-insensitive substring of text.
func MatchApp(text string) (App, bool) {
	lower := strings.ToLower(text)
	for _, a := range matchOrder {
		if strings.Contains(lower, a.String()) {
			return a, true
		}
	}
	return AppUnknown, false
}
