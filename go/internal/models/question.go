package models

// Question is a multiple-choice round for the guess-song and musical-pictures games.
// ClipRef and StartTime are set for audio questions, Images for picture questions.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	ClipRef       string   `json:"clip_ref,omitempty" yaml:"clip_ref"`
	StartTime     int      `json:"start_time,omitempty" yaml:"start_time"` // seconds into the clip
	Images        []string `json:"images,omitempty" yaml:"images"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correct_answer" yaml:"correct_answer"`
}

// QuestionView is what a player sees while a round is open.
type QuestionView struct {
	ID        string   `json:"id"`
	ClipRef   string   `json:"clip_ref,omitempty"`
	StartTime int      `json:"start_time,omitempty"`
	Images    []string `json:"images,omitempty"`
	Options   []string `json:"options"`
}

// View strips the correct answer.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:        q.ID,
		ClipRef:   q.ClipRef,
		StartTime: q.StartTime,
		Images:    q.Images,
		Options:   q.Options,
	}
}
