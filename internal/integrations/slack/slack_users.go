package slackbot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"
)

const userCacheTTL = 5 * time.Minute

// userCache maps lowercased profile emails to Slack user ids.
type userCache struct {
	sync.Mutex
	byEmail   map[string]string
	fetchedAt time.Time
}

func (n *Notifier) cachedUsers(ctx context.Context) (map[string]string, error) {
	n.users.Lock()
	defer n.users.Unlock()

	if n.users.byEmail != nil && time.Since(n.users.fetchedAt) < userCacheTTL {
		return n.users.byEmail, nil
	}

	users, err := n.api.GetUsersContext(ctx)
	if err != nil {
		return nil, err
	}
	n.users.byEmail = indexUsersByEmail(users)
	n.users.fetchedAt = time.Now()
	return n.users.byEmail, nil
}

func indexUsersByEmail(users []slack.User) map[string]string {
	byEmail := make(map[string]string, len(users))
	for _, u := range users {
		if u.Deleted || u.IsBot {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(u.Profile.Email))
		if email == "" {
			continue
		}
		if _, exists := byEmail[email]; !exists {
			byEmail[email] = u.ID
		}
	}
	return byEmail
}

// Mention returns "<@USERID>" for the workspace member with this email, or
// "" when there is none.
func (n *Notifier) Mention(ctx context.Context, email string) (string, error) {
	byEmail, err := n.cachedUsers(ctx)
	if err != nil {
		return "", err
	}
	id, ok := byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return "", nil
	}
	return "<@" + id + ">", nil
}
