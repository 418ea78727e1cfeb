package models

// Author tags who wrote a chat message in the song-letter game.
type Author string

const (
	AuthorUser   Author = "user"
	AuthorSystem Author = "system"
	AuthorBot1   Author = "bot1"
	AuthorBot2   Author = "bot2"
	AuthorBot3   Author = "bot3"
)

// ChatMessage is one entry of the append-only song-letter log.
type ChatMessage struct {
	ID         int64  `json:"id"`
	Author     Author `json:"author"`
	Text       string `json:"text"`
	AuthorName string `json:"author_name,omitempty"`
}

// Bot is a simulated opponent identity.
type Bot struct {
	ID   Author `json:"id"`
	Name string `json:"name"`
}
