package rickmorty

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/s0up4200/crossover/httpclient"
)

// Getter is the subset of httpclient.Client the fetchers depend on
type Getter interface {
	Get(ctx context.Context, path string, out any, opts ...httpclient.RequestOption) error
}

// Client fetches characters and episodes from the upstream API
type Client struct {
	http   Getter
	logger zerolog.Logger
}

// NewClient creates a new upstream API client on top of an HTTP getter
func NewClient(getter Getter, logger zerolog.Logger) *Client {
	return &Client{
		http:   getter,
		logger: logger,
	}
}

// GetCharacters retrieves one upstream page of characters
func (c *Client) GetCharacters(ctx context.Context, page int, filter CharacterFilter) (*CharacterPage, error) {
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if filter.Name != "" {
		params.Set("name", filter.Name)
	}
	if filter.Status != "" {
		params.Set("status", filter.Status.QueryValue())
	}

	var resp CharacterPage
	if err := c.http.Get(ctx, "/character?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("failed to get characters page %d: %w", page, err)
	}

	c.logger.Debug().
		Int("page", page).
		Int("count", len(resp.Results)).
		Int("total", resp.Info.Count).
		Int("pages", resp.Info.Pages).
		Msg("Retrieved characters page")

	return &resp, nil
}

// GetCharacter retrieves a single character by id
func (c *Client) GetCharacter(ctx context.Context, id int) (*Character, error) {
	var ch Character
	if err := c.http.Get(ctx, "/character/"+strconv.Itoa(id), &ch); err != nil {
		return nil, fmt.Errorf("failed to get character %d: %w", id, err)
	}
	return &ch, nil
}

// GetCharactersByIDs retrieves several characters, batching them into one call
func (c *Client) GetCharactersByIDs(ctx context.Context, ids []int) ([]Character, error) {
	switch len(ids) {
	case 0:
		return []Character{}, nil
	case 1:
		ch, err := c.GetCharacter(ctx, ids[0])
		if err != nil {
			return nil, err
		}
		return []Character{*ch}, nil
	}

	var chars []Character
	if err := c.http.Get(ctx, "/character/"+joinIDs(ids), &chars); err != nil {
		return nil, fmt.Errorf("failed to get %d characters: %w", len(ids), err)
	}

	c.logger.Debug().Int("requested", len(ids)).Int("count", len(chars)).Msg("Retrieved characters")
	return chars, nil
}

// GetEpisode retrieves a single episode by id
func (c *Client) GetEpisode(ctx context.Context, id int) (*Episode, error) {
	var ep Episode
	if err := c.http.Get(ctx, "/episode/"+strconv.Itoa(id), &ep); err != nil {
		return nil, fmt.Errorf("failed to get episode %d: %w", id, err)
	}
	return &ep, nil
}

// GetEpisodes retrieves several episodes. No ids means no call; one id is
// fetched on its own; more are fetched in one batched call.
func (c *Client) GetEpisodes(ctx context.Context, ids []int) ([]Episode, error) {
	switch len(ids) {
	case 0:
		return []Episode{}, nil
	case 1:
		ep, err := c.GetEpisode(ctx, ids[0])
		if err != nil {
			return nil, err
		}
		return []Episode{*ep}, nil
	}

	var eps []Episode
	if err := c.http.Get(ctx, "/episode/"+joinIDs(ids), &eps); err != nil {
		return nil, fmt.Errorf("failed to get %d episodes: %w", len(ids), err)
	}

	c.logger.Debug().Int("requested", len(ids)).Int("count", len(eps)).Msg("Retrieved episodes")
	return eps, nil
}

// GetEpisodesForCharacter retrieves every episode the character appears in
func (c *Client) GetEpisodesForCharacter(ctx context.Context, ch Character) ([]Episode, error) {
	if len(ch.Episode) == 0 {
		return []Episode{}, nil
	}
	return c.GetEpisodes(ctx, ch.EpisodeIDs())
}
