package slackbot

import "github.com/slack-go/slack"

func slackAPIURL(base string) slack.Option {
	return slack.OptionAPIURL(base + "/api/")
}
