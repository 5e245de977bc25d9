package catalog

// TrackFields - поля трека
type TrackFields struct {
	Title    string `json:"title" yaml:"title"`
	Duration string `json:"duration" yaml:"duration"` // Длительность в виде "M:SS", не проверяется
	Plays    string `json:"plays" yaml:"plays"`       // Количество прослушиваний для отображения, например "1.2M"
}

// Label возвращает название трека
func (t TrackFields) Label() string {
	return t.Title
}

// Track - сохраненный трек
type Track = Persisted[TrackFields]

// NewTrackDraft возвращает черновик трека со значениями по умолчанию
func NewTrackDraft() TrackFields {
	return TrackFields{Title: "", Duration: "", Plays: "0"}
}

// TrackPatch изменяет только заданные (не nil) поля трека
type TrackPatch struct {
	Title    *string
	Duration *string
	Plays    *string
}

// Apply применяет изменения к треку
func (p TrackPatch) Apply(t *TrackFields) error {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.Plays != nil {
		t.Plays = *p.Plays
	}
	return nil
}

// TrackSchema описывает редактируемые поля трека
var TrackSchema = NewSchema(
	Field[TrackFields]{
		Name:        "title",
		Label:       "Название",
		Placeholder: "Neon Dreams",
		Get:         func(t TrackFields) string { return t.Title },
		Set:         func(t *TrackFields, v string) error { t.Title = v; return nil },
	},
	Field[TrackFields]{
		Name:        "duration",
		Label:       "Длительность",
		Placeholder: "3:45",
		Get:         func(t TrackFields) string { return t.Duration },
		Set:         func(t *TrackFields, v string) error { t.Duration = v; return nil },
	},
	Field[TrackFields]{
		Name:        "plays",
		Label:       "Прослушиваний",
		Placeholder: "1.2M",
		Get:         func(t TrackFields) string { return t.Plays },
		Set:         func(t *TrackFields, v string) error { t.Plays = v; return nil },
	},
)
