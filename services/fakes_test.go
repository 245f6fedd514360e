package services

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Dosada05/swisscut/catalog"
	"github.com/Dosada05/swisscut/models"
	"github.com/Dosada05/swisscut/repositories"
	"github.com/Dosada05/swisscut/storage"
)

func intPtr(v int) *int { return &v }

type fakeTournamentRepo struct {
	mu        sync.Mutex
	snapshots map[int]*models.Tournament
	loads     int
}

func newFakeTournamentRepo(ts ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{snapshots: make(map[int]*models.Tournament)}
	for _, t := range ts {
		r.snapshots[t.ID] = t
	}
	return r
}

func (r *fakeTournamentRepo) LoadSnapshot(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	t, ok := r.snapshots[tournamentID]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*models.Tournament, error) {
	return r.LoadSnapshot(ctx, tournamentID)
}

func (r *fakeTournamentRepo) ListIDs(ctx context.Context) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.snapshots))
	for id := range r.snapshots {
		ids = append(ids, id)
	}
	return ids, nil
}

// fakeCutRepo writes straight into the tournament snapshot it was given.
type fakeCutRepo struct {
	tournaments *fakeTournamentRepo
	createErr   error
	nextID      int
	// beforeLock runs before the stored round is read, standing in for a
	// request that got there first.
	beforeLock func(cut *models.Cut)
}

func (r *fakeCutRepo) Create(ctx context.Context, exec repositories.SQLExecutor, cut *models.Cut) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	cut.ID = r.nextID
	stored := *cut
	stored.Players = append([]models.CutPlayer(nil), cut.Players...)
	r.tournaments.mu.Lock()
	r.tournaments.snapshots[cut.TournamentID].Cut = &stored
	r.tournaments.mu.Unlock()
	return nil
}

func (r *fakeCutRepo) cut(cutID int) *models.Cut {
	for _, t := range r.tournaments.snapshots {
		if t.Cut != nil && t.Cut.ID == cutID {
			return t.Cut
		}
	}
	return nil
}

func (r *fakeCutRepo) AddMatches(ctx context.Context, exec repositories.SQLExecutor, cutID int, matches []models.Match) error {
	r.tournaments.mu.Lock()
	defer r.tournaments.mu.Unlock()
	cut := r.cut(cutID)
	if cut == nil {
		return repositories.ErrCutNotFound
	}
	for _, m := range matches {
		m.ID = len(cut.Matches) + 1
		cut.Matches = append(cut.Matches, m)
	}
	return nil
}

func (r *fakeCutRepo) SetRound(ctx context.Context, exec repositories.SQLExecutor, cutID, round int) error {
	r.tournaments.mu.Lock()
	defer r.tournaments.mu.Unlock()
	cut := r.cut(cutID)
	if cut == nil {
		return repositories.ErrCutNotFound
	}
	cut.Round = round
	return nil
}

func (r *fakeCutRepo) LockRound(ctx context.Context, exec repositories.SQLExecutor, cutID int) (int, error) {
	r.tournaments.mu.Lock()
	defer r.tournaments.mu.Unlock()
	cut := r.cut(cutID)
	if cut == nil {
		return 0, repositories.ErrCutNotFound
	}
	if r.beforeLock != nil {
		r.beforeLock(cut)
	}
	return cut.Round, nil
}

type notification struct {
	TournamentID int
	Type         string
	Payload      interface{}
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) Notify(tournamentID int, messageType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{TournamentID: tournamentID, Type: messageType, Payload: payload})
}

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.Type
	}
	return out
}

type fakeUploader struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	u.key, u.contentType, u.body = key, contentType, buf.Bytes()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error { return nil }

func (u *fakeUploader) GetPublicURL(key string) string { return "https://cdn.example.test/" + key }

type fakeCatalog struct {
	factions map[string]string
	err      error
}

func (c *fakeCatalog) Identities(ctx context.Context) ([]catalog.Identity, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make([]catalog.Identity, 0, len(c.factions))
	for name, faction := range c.factions {
		out = append(out, catalog.Identity{Name: name, Faction: faction})
	}
	return out, nil
}

func (c *fakeCatalog) Faction(ctx context.Context, identity string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.factions[identity], nil
}

// memoryDB gives the cut service a real transaction to commit or roll back.
func memoryDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// swissTournament: after two rounds Dee leads on 6, Ann and Bob share 3 with
// Ann ahead on SOS, Cal has 0.
func swissTournament() *models.Tournament {
	return &models.Tournament{
		ID:           7,
		Name:         "Store Championship",
		Date:         time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		CurrentRound: 2,
		Players: []models.Player{
			{ID: 1, TournamentID: 7, Name: "Ann", CorpIdentity: "Jinteki: Restoring Humanity", RunnerIdentity: "Zahya Sadeghi: Versatile Smuggler"},
			{ID: 2, TournamentID: 7, Name: "Bob", CorpIdentity: "Haas-Bioroid: Precision Design", RunnerIdentity: "Sable Mora"},
			{ID: 3, TournamentID: 7, Name: "Cal", CorpIdentity: "NBN: Reality Plus", RunnerIdentity: "Esâ Afontov"},
			{ID: 4, TournamentID: 7, Name: "Dee", CorpIdentity: "Unknown Corp", RunnerIdentity: "Unknown Runner"},
		},
		Matches: []models.Match{
			{ID: 1, TournamentID: 7, Round: 1, TableNumber: intPtr(1), CorpPlayerID: 1, RunnerPlayerID: intPtr(2), Result: models.ResultCorpWin, Concluded: true},
			{ID: 2, TournamentID: 7, Round: 1, TableNumber: intPtr(2), CorpPlayerID: 3, RunnerPlayerID: intPtr(4), Result: models.ResultRunnerWin, Concluded: true},
			{ID: 3, TournamentID: 7, Round: 2, TableNumber: intPtr(1), CorpPlayerID: 1, RunnerPlayerID: intPtr(4), Result: models.ResultRunnerWin, Concluded: true},
			{ID: 4, TournamentID: 7, Round: 2, TableNumber: intPtr(2), CorpPlayerID: 2, RunnerPlayerID: intPtr(3), Result: models.ResultCorpWin, Concluded: true},
		},
	}
}
