package fetcher

import (
	"math/rand/v2"
	"slices"
	"strings"
)

type UserAgentType string

const (
	UserAgentAuto    UserAgentType = "auto"
	UserAgentChrome  UserAgentType = "chrome"
	UserAgentFirefox UserAgentType = "firefox"
	UserAgentSafari  UserAgentType = "safari"
	UserAgentEdge    UserAgentType = "edge"
)

const defaultUserAgent = "strle/1.0 (+https://github.com/byteowlz/strle)"

var userAgents = map[UserAgentType][]string{
	UserAgentChrome: {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	},
	UserAgentFirefox: {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.7; rv:133.0) Gecko/20100101 Firefox/133.0",
		"Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
	},
	UserAgentSafari: {
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 18_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Mobile/15E148 Safari/604.1",
	},
	UserAgentEdge: {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
	},
}

// UserAgentSelector picks the User-Agent sent with remote sources. It is
// safe for concurrent use.
type UserAgentSelector struct {
	all []string
}

func NewUserAgentSelector() *UserAgentSelector {
	var all []string
	for _, agents := range userAgents {
		all = append(all, agents...)
	}
	slices.Sort(all)
	return &UserAgentSelector{all: all}
}

// GetUserAgent resolves uaType:
//   - "" selects the plain strle agent
//   - "auto" picks a random browser agent
//   - a browser name picks one of that browser's agents
//   - anything else is sent verbatim
func (uas *UserAgentSelector) GetUserAgent(uaType string) string {
	trimmed := strings.TrimSpace(uaType)
	switch t := UserAgentType(strings.ToLower(trimmed)); t {
	case "":
		return defaultUserAgent
	case UserAgentAuto:
		return pick(uas.all)
	case UserAgentChrome, UserAgentFirefox, UserAgentSafari, UserAgentEdge:
		return pick(userAgents[t])
	default:
		return trimmed
	}
}

func pick(agents []string) string {
	if len(agents) == 0 {
		return defaultUserAgent
	}
	return agents[rand.IntN(len(agents))]
}
