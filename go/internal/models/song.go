package models

// LyricLine is one timed line of a karaoke song. Time is in seconds.
type LyricLine struct {
	Time float64 `json:"time" yaml:"time"`
	Text string  `json:"text" yaml:"text"`
}

// Song is a karaoke track. Lyrics are sorted ascending by Time.
type Song struct {
	ID       string      `json:"id" yaml:"id"`
	Title    string      `json:"title" yaml:"title"`
	Artist   string      `json:"artist" yaml:"artist"`
	MediaRef string      `json:"media_ref" yaml:"media_ref"`
	Lyrics   []LyricLine `json:"lyrics" yaml:"lyrics"`
}

// BotSong is an entry in the song list the song-letter bots answer from.
type BotSong struct {
	Title  string `json:"title" yaml:"title"`
	Artist string `json:"artist" yaml:"artist"`
}
