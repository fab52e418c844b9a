package rickmorty

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the life status of a character
type Status string

const (
	// StatusAlive indicates a living character
	StatusAlive Status = "Alive"
	// StatusDead indicates a dead character
	StatusDead Status = "Dead"
	// StatusUnknown indicates the status is not known
	StatusUnknown Status = "unknown"
)

// ParseStatus parses a case-insensitive status filter value
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "alive":
		return StatusAlive, nil
	case "dead":
		return StatusDead, nil
	case "unknown":
		return StatusUnknown, nil
	default:
		return "", fmt.Errorf("invalid status %q (must be alive, dead or unknown)", s)
	}
}

// QueryValue returns the value used for the status query parameter
func (s Status) QueryValue() string {
	return strings.ToLower(string(s))
}

// Location is a named, resolvable place reference
type Location struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Character represents a character record
type Character struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Status   Status    `json:"status"`
	Species  string    `json:"species"`
	Type     string    `json:"type"`
	Gender   string    `json:"gender"`
	Origin   Location  `json:"origin"`
	Location Location  `json:"location"`
	Image    string    `json:"image"`
	Episode  []string  `json:"episode"`
	URL      string    `json:"url"`
	Created  time.Time `json:"created"`
}

// EpisodeIDs returns the ids of the episodes the character appears in
func (c *Character) EpisodeIDs() []int {
	return IDsFromURLs(c.Episode)
}

// Episode represents an episode record
type Episode struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	AirDate    string    `json:"air_date"`
	Code       string    `json:"episode"`
	Characters []string  `json:"characters"`
	URL        string    `json:"url"`
	Created    time.Time `json:"created"`
}

// CharacterIDs returns the ids of the characters appearing in the episode
func (e *Episode) CharacterIDs() []int {
	return IDsFromURLs(e.Characters)
}

// PageInfo contains pagination information
type PageInfo struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// CharacterPage represents one upstream page of characters
type CharacterPage struct {
	Info    PageInfo    `json:"info"`
	Results []Character `json:"results"`
}

// HasMorePages checks if there is a page after this one
func (p *CharacterPage) HasMorePages() bool {
	return p.Info.Next != nil && *p.Info.Next != ""
}

// CharacterFilter narrows a character listing. Zero values are omitted from the query.
type CharacterFilter struct {
	Name   string
	Status Status
}

// IsZero reports whether no filter is set
func (f CharacterFilter) IsZero() bool {
	return f.Name == "" && f.Status == ""
}
