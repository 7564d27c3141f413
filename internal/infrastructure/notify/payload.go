package notify

import (
	"fmt"
	"strings"

	"NewsNotify/internal/domain"
)

// Builder produces the provider-specific webhook payload for a batch of
// articles attributed to one source.
type Builder interface {
	Payload(src domain.Source, articles []domain.Article) map[string]any
}

// builderFor selects the payload builder for a webhook service kind.
// Unknown kinds are rejected so a misconfigured target is skipped, not
// posted to with a wrong body.
func builderFor(serviceKind string) (Builder, error) {
	switch strings.ToLower(serviceKind) {
	case domain.ServiceKindDiscord:
		return discordBuilder{}, nil
	case domain.ServiceKindSlack:
		return slackBuilder{}, nil
	case domain.ServiceKindTeams:
		return teamsBuilder{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownServiceKind, serviceKind)
	}
}

// discordBuilder shapes the body for Discord incoming webhooks: one
// embed per article under the source's display name and avatar.
type discordBuilder struct{}

func (discordBuilder) Payload(src domain.Source, articles []domain.Article) map[string]any {
	embeds := make([]map[string]string, 0, len(articles))
	for _, article := range articles {
		embeds = append(embeds, map[string]string{
			"title": article.Title,
			"url":   article.URL,
		})
	}

	return map[string]any{
		"username":   src.Name,
		"avatar_url": src.Avatar,
		"content":    fmt.Sprintf("*新着ニュース* (%d件)", len(articles)),
		"embeds":     embeds,
	}
}

// slackBuilder shapes a Block Kit body: a header block followed by one
// section per article.
type slackBuilder struct{}

func (slackBuilder) Payload(src domain.Source, articles []domain.Article) map[string]any {
	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{
				"type": "plain_text",
				"text": fmt.Sprintf("📰 %s - 新着ニュース (%d件)", src.Name, len(articles)),
			},
		},
	}

	for _, article := range articles {
		blocks = append(blocks, map[string]any{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("• <%s|%s>", article.URL, article.Title),
			},
		})
	}

	return map[string]any{
		"username": src.Name,
		"icon_url": src.Avatar,
		"blocks":   blocks,
	}
}

// teamsBuilder shapes an Adaptive Card attachment with one text block
// per article.
type teamsBuilder struct{}

func (teamsBuilder) Payload(src domain.Source, articles []domain.Article) map[string]any {
	body := []map[string]any{
		{
			"type":   "TextBlock",
			"text":   fmt.Sprintf("%s - 新着ニュース", src.Name),
			"weight": "Bolder",
			"size":   "Medium",
			"wrap":   true,
		},
	}

	for _, article := range articles {
		body = append(body, map[string]any{
			"type":     "TextBlock",
			"text":     fmt.Sprintf("- [%s](%s)", article.Title, article.URL),
			"wrap":     true,
			"markdown": true,
		})
	}

	return map[string]any{
		"attachments": []map[string]any{
			{
				"contentType": "application/vnd.microsoft.card.adaptive",
				"content": map[string]any{
					"$schema": "http://adaptivecards.io/schemas/adaptive-card.json",
					"type":    "AdaptiveCard",
					"version": "1.2",
					"body":    body,
				},
			},
		},
	}
}
