package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistedMarshalFlatObject(t *testing.T) {
	track := Track{ID: 7, Fields: TrackFields{Title: "Neon Dreams", Duration: "3:45", Plays: "0"}}

	data, err := json.Marshal(track)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"title":"Neon Dreams","duration":"3:45","plays":"0"}`, string(data))

	var decoded Track
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, track, decoded)
}

func TestPersistedUnmarshalRequiresID(t *testing.T) {
	var track Track
	err := json.Unmarshal([]byte(`{"title":"Без id","duration":"1:00","plays":"0"}`), &track)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "отсутствует id")
}

func TestReleaseDecodeKeepsUnknownType(t *testing.T) {
	var releases []Release
	payload := `[
		{"id":2,"title":"Emerald Horizons","year":"2024","cover_url":"https://cdn/e.jpg","tracks_count":8,"type":"album"},
		{"id":1,"title":"Mixtape","year":"2023","cover_url":"","tracks_count":12,"type":"Compilation"}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &releases))
	require.Len(t, releases, 2)

	assert.Equal(t, ReleaseAlbum, releases[0].Fields.Type)
	assert.True(t, releases[0].Fields.Type.Valid())
	assert.Equal(t, ReleaseType("Compilation"), releases[1].Fields.Type)
	assert.False(t, releases[1].Fields.Type.Valid())
}

func TestEntityVariants(t *testing.T) {
	var e Entity[TrackFields] = Draft[TrackFields]{Fields: NewTrackDraft()}
	_, ok := IDOf(e)
	assert.False(t, ok, "черновик не должен иметь id")

	e = Persisted[TrackFields]{ID: 3, Fields: TrackFields{Title: "A"}}
	updated := e.WithFields(TrackFields{Title: "B"})
	id, ok := IDOf(updated)
	require.True(t, ok)
	assert.Equal(t, 3, id)
	assert.Equal(t, "B", updated.Body().Title)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, TrackFields{Plays: "0"}, NewTrackDraft())
	assert.Equal(t, ReleaseFields{Year: "2024", TracksCount: 1, Type: ReleaseSingle}, NewReleaseDraft("2024"))
}

func TestSchemaPatchIsAtomic(t *testing.T) {
	release := NewReleaseDraft("2024")
	release.Title = "Old"

	patch := ReleaseSchema.Patch(map[string]string{
		"title":        "New",
		"tracks_count": "много",
	})
	err := patch.Apply(&release)
	require.Error(t, err)
	assert.Equal(t, "Old", release.Title, "при ошибке поля не должны меняться")

	patch = ReleaseSchema.Patch(map[string]string{"title": "New", "tracks_count": " 5 ", "type": "ep"})
	require.NoError(t, patch.Apply(&release))
	assert.Equal(t, "New", release.Title)
	assert.Equal(t, 5, release.TracksCount)
	assert.Equal(t, ReleaseEP, release.Type)
}

func TestParseAssignments(t *testing.T) {
	patch, err := TrackSchema.ParseAssignments([]string{"plays=1.2M", "title=Neon = Dreams"})
	require.NoError(t, err)

	track := NewTrackDraft()
	require.NoError(t, patch.Apply(&track))
	assert.Equal(t, "1.2M", track.Plays)
	assert.Equal(t, "Neon = Dreams", track.Title)

	_, err = TrackSchema.ParseAssignments([]string{"bpm=120"})
	assert.ErrorContains(t, err, "неизвестное поле")

	_, err = TrackSchema.ParseAssignments([]string{"plays"})
	assert.ErrorContains(t, err, "name=value")
}

func TestReleasePatchValidation(t *testing.T) {
	release := NewReleaseDraft("2024")

	negative := -1
	assert.Error(t, ReleasePatch{TracksCount: &negative}.Apply(&release))

	bad := ReleaseType("Mixtape")
	assert.Error(t, ReleasePatch{Type: &bad}.Apply(&release))
	assert.Equal(t, ReleaseSingle, release.Type)

	album := ReleaseAlbum
	cover := "https://cdn.example.com/cover.jpg"
	require.NoError(t, ReleasePatch{Type: &album, CoverURL: &cover}.Apply(&release))
	assert.Equal(t, ReleaseAlbum, release.Type)
	assert.Equal(t, cover, release.CoverURL)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("releases")
	require.NoError(t, err)
	assert.Equal(t, KindReleases, k)
	assert.Equal(t, "Релиз", k.Noun())

	_, err = ParseKind("albums")
	assert.Error(t, err)
}
