package domain

import (
	"strconv"
	"strings"
)

// Source kinds supported by the fetch registry.
const (
	SourceKindFeed     = "feed"
	SourceKindSelector = "selector"
)

// Webhook service kinds supported by the notification builders.
const (
	ServiceKindDiscord = "discord"
	ServiceKindSlack   = "slack"
	ServiceKindTeams   = "teams"
)

// Source is a configured article origin: either a feed document or an
// HTML page scraped with a CSS selector.
type Source struct {
	ID               int64
	Name             string
	Kind             string
	BaseURL          string
	Avatar           string
	Selector         string
	Active           bool
	NeedsTranslation bool
	TargetWebhookIDs string
	CreatedAt        string
}

// TargetIDs parses the comma-separated webhook id list. An empty list
// means the source broadcasts to every active webhook.
func (s Source) TargetIDs() []string {
	if strings.TrimSpace(s.TargetWebhookIDs) == "" {
		return nil
	}
	var ids []string
	for _, raw := range strings.Split(s.TargetWebhookIDs, ",") {
		if id := strings.TrimSpace(raw); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ResolveTargets narrows the active webhook set down to the ones this
// source posts to. Unknown ids are ignored; an empty configured list
// selects every candidate.
func (s Source) ResolveTargets(targets []Webhook) []Webhook {
	ids := s.TargetIDs()
	if len(ids) == 0 {
		return targets
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var resolved []Webhook
	for _, target := range targets {
		if _, ok := wanted[strconv.FormatInt(target.ID, 10)]; ok {
			resolved = append(resolved, target)
		}
	}
	return resolved
}

// Webhook is an outbound notification target: a pre-authorized incoming
// webhook URL plus the service kind that dictates the payload shape.
type Webhook struct {
	ID          int64
	Name        string
	Endpoint    string
	ServiceKind string
	Active      bool
	CreatedAt   string
}
