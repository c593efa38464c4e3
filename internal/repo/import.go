package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"tubarchive/internal/domain/logger"
	"tubarchive/internal/models"
	"tubarchive/internal/validation"
)

// categorySep joins nested category names.
const categorySep = "/"

// ChannelsFromTree parses a channel tree file into channel models.
//
// The tree maps display names to channel IDs. A value may itself be an object,
// in which case its key becomes the category of everything beneath it, e.g.
//
//	{"News": {"Example News": "UCxxxxxxxxxxxxxxxxxxxxxx"}, "Solo": "@solo"}
func ChannelsFromTree(data []byte, template models.Channel) ([]*models.Channel, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse channel tree: %w", err)
	}

	var (
		out  []*models.Channel
		errs []error
	)
	var walk func(category string, node map[string]any)
	walk = func(category string, node map[string]any) {
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		for _, name := range keys {
			switch v := node[name].(type) {
			case string:
				id, err := validation.ValidateChannelID(v)
				if err != nil {
					errs = append(errs, fmt.Errorf("entry %q: %w", name, err))
					continue
				}
				c := template
				c.ChannelID = id
				c.Name = name
				c.Category = category
				out = append(out, &c)
			case map[string]any:
				sub := name
				if category != "" {
					sub = category + categorySep + name
				}
				walk(sub, v)
			default:
				errs = append(errs, fmt.Errorf("entry %q: expected channel ID or category object, got %T", name, v))
			}
		}
	}
	walk(template.Category, tree)

	return out, errors.Join(errs...)
}

// ImportChannels registers each channel not already present, returning how many were added.
func (cs *ChannelStore) ImportChannels(channels []*models.Channel) (added int, err error) {
	var errs []error
	for _, c := range channels {
		if _, err := cs.AddChannel(c); err != nil {
			if errors.Is(err, ErrChannelExists) {
				logger.Pl.D(1, "Channel %q already registered, skipping", c.ChannelID)
				continue
			}
			errs = append(errs, err)
			continue
		}
		added++
	}
	return added, errors.Join(errs...)
}
