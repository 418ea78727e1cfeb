package models

// GameID identifies one of the mini-games on the home screen.
type GameID string

const (
	GameGuessSong       GameID = "guess-song"
	GameMusicalPictures GameID = "musical-pictures"
	GameKaraoke         GameID = "karaoke"
	GameSongLetter      GameID = "song-letter"
)

// Phase is the lifecycle state of a quiz session.
type Phase string

const (
	PhaseLoading  Phase = "loading"
	PhasePlaying  Phase = "playing"
	PhaseAnswered Phase = "answered"
	PhaseFinished Phase = "finished"
)
