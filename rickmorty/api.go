package rickmorty

import (
	"context"
)

// API defines the upstream operations used by the rest of the application
type API interface {
	// GetCharacters retrieves one upstream page of characters
	GetCharacters(ctx context.Context, page int, filter CharacterFilter) (*CharacterPage, error)

	// GetCharacter retrieves a single character
	GetCharacter(ctx context.Context, id int) (*Character, error)

	// GetCharactersByIDs retrieves several characters in one call
	GetCharactersByIDs(ctx context.Context, ids []int) ([]Character, error)

	// GetEpisode retrieves a single episode
	GetEpisode(ctx context.Context, id int) (*Episode, error)

	// GetEpisodes retrieves several episodes in one call
	GetEpisodes(ctx context.Context, ids []int) ([]Episode, error)

	// GetEpisodesForCharacter retrieves all episodes a character appears in
	GetEpisodesForCharacter(ctx context.Context, ch Character) ([]Episode, error)
}

var _ API = (*Client)(nil)
