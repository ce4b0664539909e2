package telegram

import (
	"fmt"
	"strings"
)

const (
	msgWelcome = "Hi! I watch RSS and Atom feeds and send you new entries as they appear.\n\n" +
		"/add <feed url> subscribes you to a feed, /rm <feed url> unsubscribes, /ls lists your feeds."
	msgNoURL   = "You need to include a (valid) URL after the command."
	msgNoFeeds = "You're not subscribed to any feeds yet. Use /add <feed url> to add one."
	msgFailure = "Something went wrong, please try again later."
)

func msgTryAdd(url string) string { return fmt.Sprintf("Trying to add %s...", url) }

func msgAddOK(url string) string { return fmt.Sprintf("Added %s to your list of feeds.", url) }

func msgAddFailed(url string, err error) string {
	return fmt.Sprintf("Failed to add %s to your list of feeds: %v.", url, err)
}

func msgRemoveOK(url string) string { return fmt.Sprintf("You will no longer receive updates from %s.", url) }

func msgNotSubscribed(url string) string { return fmt.Sprintf("You were not subscribed to %s!", url) }

func msgFeedList(urls []string) string {
	if len(urls) == 0 {
		return msgNoFeeds
	}
	var sb strings.Builder
	sb.WriteString("These are your feeds:")
	for _, url := range urls {
		sb.WriteString("\n• ")
		sb.WriteString(url)
	}
	return sb.String()
}
