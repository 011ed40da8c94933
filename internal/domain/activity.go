package domain

// Activity представляет школьное мероприятие со списком записавшихся участников
type Activity struct {
	Name            string   `json:"-" yaml:"name"`
	Description     string   `json:"description" yaml:"description"`
	Schedule        string   `json:"schedule" yaml:"schedule"`
	MaxParticipants int      `json:"max_participants" yaml:"max_participants"` // Только для информации, не проверяется
	Participants    []string `json:"participants" yaml:"participants"`         // В порядке записи, без повторов
}

// HasParticipant проверяет, записан ли участник с указанным email
func (a *Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// Clone возвращает независимую копию мероприятия
func (a *Activity) Clone() *Activity {
	participants := make([]string, len(a.Participants))
	copy(participants, a.Participants)

	clone := *a
	clone.Participants = participants
	return &clone
}
