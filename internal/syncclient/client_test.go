package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/storetest"
)

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *Client {
	t.Helper()
	c, err := New(&Config{
		BaseURL: baseURL,
		Timeout: timeout,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return c
}

func TestNewValidatesURL(t *testing.T) {
	_, err := New(&Config{})
	assert.Error(t, err)

	_, err = New(&Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	c, err := New(&Config{BaseURL: "https://functions.example.com/api?token=x"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.Timeout())
	assert.Equal(t, "https://functions.example.com/api?resource=tracks&token=x", c.endpoint(catalog.KindTracks))
}

func TestListTracks(t *testing.T) {
	store := storetest.NewWithData(storetest.Data{Tracks: []catalog.Track{
		{ID: 2, Fields: catalog.TrackFields{Title: "B", Duration: "2:10", Plays: "10"}},
		{ID: 1, Fields: catalog.TrackFields{Title: "A", Duration: "3:45", Plays: "1.2M"}},
	}})
	srv := store.Start(t)

	tracks, err := Tracks(newTestClient(t, srv.URL, time.Second)).List(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, 1, tracks[0].ID)
	assert.Equal(t, "1.2M", tracks[0].Fields.Plays)

	reqs := store.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "tracks", reqs[0].Resource)
	assert.NotEmpty(t, reqs[0].RequestID)
}

func TestListEmptyCollection(t *testing.T) {
	srv := storetest.New().Start(t)

	releases, err := Releases(newTestClient(t, srv.URL, time.Second)).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, releases)
	assert.Empty(t, releases)
}

func TestSaveChoosesMethodByVariant(t *testing.T) {
	store := storetest.New()
	srv := store.Start(t)
	tracks := Tracks(newTestClient(t, srv.URL, time.Second))
	ctx := context.Background()

	draft := catalog.Draft[catalog.TrackFields]{Fields: catalog.TrackFields{Title: "Neon Dreams", Duration: "3:45", Plays: "0"}}
	require.NoError(t, tracks.Save(ctx, draft))

	persisted := catalog.Track{ID: 1, Fields: catalog.TrackFields{Title: "Neon Dreams", Duration: "3:45", Plays: "1.2M"}}
	require.NoError(t, tracks.Save(ctx, persisted))

	reqs := store.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.NotContains(t, reqs[0].Body, `"id"`, "тело создания не должно содержать id")
	assert.Equal(t, http.MethodPut, reqs[1].Method)
	assert.Contains(t, reqs[1].Body, `"id":1`)

	assert.Equal(t, []catalog.Track{persisted}, store.Tracks())
}

func TestDeleteSendsID(t *testing.T) {
	store := storetest.NewWithData(storetest.Data{Releases: []catalog.Release{{ID: 4, Fields: catalog.ReleaseFields{Title: "X"}}}})
	srv := store.Start(t)

	require.NoError(t, Releases(newTestClient(t, srv.URL, time.Second)).Delete(context.Background(), 4))

	reqs := store.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	assert.JSONEq(t, `{"id":4}`, reqs[0].Body)
	assert.Empty(t, store.Releases())
}

func TestStoreRejection(t *testing.T) {
	store := storetest.New()
	store.InjectFault(storetest.Fault{Method: http.MethodPost, Status: http.StatusBadRequest, Message: "title is required"})
	srv := store.Start(t)

	fields := catalog.TrackFields{Title: ""}
	err := Tracks(newTestClient(t, srv.URL, time.Second)).Create(context.Background(), fields)
	require.Error(t, err)

	var failure *SyncFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, OpCreate, failure.Op)
	assert.Equal(t, catalog.KindTracks, failure.Kind)
	assert.Equal(t, fields, failure.Payload)
	assert.Equal(t, http.StatusBadRequest, failure.Status)
	assert.Equal(t, "title is required", failure.Message)
	assert.ErrorIs(t, err, ErrStoreRejection)
	assert.NotErrorIs(t, err, ErrTransportFailure)
}

func TestTransportFailure(t *testing.T) {
	store := storetest.New()
	store.InjectFault(storetest.Fault{Drop: true})
	srv := store.Start(t)

	_, err := Tracks(newTestClient(t, srv.URL, time.Second)).List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransportFailure)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrStoreRejection)
}

func TestTimeout(t *testing.T) {
	store := storetest.New()
	store.InjectFault(storetest.Fault{Delay: time.Second})
	srv := store.Start(t)

	err := Tracks(newTestClient(t, srv.URL, 50*time.Millisecond)).Delete(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, ErrTransportFailure)

	var failure *SyncFailure
	require.True(t, errors.As(err, &failure))
	assert.True(t, failure.Timeout())
	assert.Equal(t, OpDelete, failure.Op)
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	t.Cleanup(srv.Close)

	_, err := Tracks(newTestClient(t, srv.URL, time.Second)).List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreRejection)

	var failure *SyncFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, ReasonMalformed, failure.Reason)
}

func TestSaveNilEntity(t *testing.T) {
	srv := storetest.New().Start(t)
	err := Tracks(newTestClient(t, srv.URL, time.Second)).Save(context.Background(), nil)
	assert.Error(t, err)
}
