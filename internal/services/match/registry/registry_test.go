package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
	"github.com/louisbranch/seabattle/internal/platform/random"
	"github.com/louisbranch/seabattle/internal/services/match/domain/board"
	"github.com/louisbranch/seabattle/internal/services/match/domain/board/boardtest"
	"github.com/louisbranch/seabattle/internal/services/match/domain/match"
	"github.com/louisbranch/seabattle/internal/services/match/notify"
)

var (
	alice = match.Player{ID: "alice-id", Username: "alice"}
	bob   = match.Player{ID: "bob-id", Username: "bob"}
	carol = match.Player{ID: "carol-id", Username: "carol"}
)

type sent struct {
	playerID string
	n        notify.Notification
}

type closed struct {
	playerID string
	status   CloseStatus
}

type fakeGateway struct {
	mu           sync.Mutex
	fail         map[string]error
	disconnected map[string]bool
	sent         []sent
	closed       []closed
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{fail: map[string]error{}, disconnected: map[string]bool{}}
}

func (g *fakeGateway) SendMessage(_ context.Context, playerID string, n notify.Notification) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail[playerID]; err != nil {
		return err
	}
	g.sent = append(g.sent, sent{playerID: playerID, n: n})
	return nil
}

func (g *fakeGateway) IsConnected(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.disconnected[playerID]
}

func (g *fakeGateway) CloseSession(playerID string, status CloseStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = append(g.closed, closed{playerID: playerID, status: status})
}

func (g *fakeGateway) sentTo(playerID string) []notify.Notification {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []notify.Notification
	for _, s := range g.sent {
		if s.playerID == playerID {
			out = append(out, s.n)
		}
	}
	return out
}

type report struct {
	matchID   string
	playerID  string
	operation string
	err       error
}

type fakeReporter struct {
	mu      sync.Mutex
	reports []report
}

func (r *fakeReporter) Report(_ context.Context, matchID, playerID, operation string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report{matchID, playerID, operation, err})
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *fakeRecorder) Record(_ context.Context, eventName, _ string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventName)
}

func newTestRegistry(t *testing.T, gw Gateway, opts ...Option) *Registry {
	t.Helper()
	seq := 0
	base := []Option{
		WithRand(random.NewSeeded(99)),
		WithIDGenerator(func() (string, error) {
			seq++
			return fmt.Sprintf("match-%d", seq), nil
		}),
	}
	r, err := New(gw, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return r
}

func TestNewRequiresGateway(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil gateway")
	}
}

func TestCreateSessionRegistersBothPlayers(t *testing.T) {
	gw := newFakeGateway()
	recorder := &fakeRecorder{}
	r := newTestRegistry(t, gw, WithRecorder(recorder))

	m, err := r.CreateSession(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if !r.IsPlaying(alice.ID) || !r.IsPlaying(bob.ID) {
		t.Fatal("expected both players to be playing")
	}
	m1, _ := r.GameSession(alice.ID)
	m2, _ := r.GameSession(bob.ID)
	if m1 != m2 || m1 != m {
		t.Fatal("expected both players to map to the same match")
	}
	if r.IsPlaying(carol.ID) {
		t.Fatal("carol should not be playing")
	}
	if m.Phase() != match.PhaseLobby {
		t.Fatalf("phase = %s, want LOBBY", m.Phase())
	}

	if got := gw.sentTo(alice.ID); len(got) != 1 || got[0] != (notify.LobbyCreated{OpponentUsername: "bob"}) {
		t.Fatalf("alice notifications = %v", got)
	}
	if got := gw.sentTo(bob.ID); len(got) != 1 || got[0] != (notify.LobbyCreated{OpponentUsername: "alice"}) {
		t.Fatalf("bob notifications = %v", got)
	}
	if len(gw.closed) != 0 {
		t.Fatalf("unexpected closes: %v", gw.closed)
	}
	if len(recorder.events) != 1 || recorder.events[0] != "match.session_created" {
		t.Fatalf("recorded events = %v", recorder.events)
	}
}

func TestCreateSessionRejectsBusyOrSamePlayer(t *testing.T) {
	r := newTestRegistry(t, newFakeGateway())
	if _, err := r.CreateSession(context.Background(), alice, bob); err != nil {
		t.Fatalf("create session: %v", err)
	}

	_, err := r.CreateSession(context.Background(), carol, bob)
	if !apperrors.IsCode(err, apperrors.CodePlayerAlreadyPlaying) {
		t.Fatalf("busy player err = %v", err)
	}
	if r.IsPlaying(carol.ID) {
		t.Fatal("rejected session must not register carol")
	}

	_, err = r.CreateSession(context.Background(), carol, carol)
	if !apperrors.IsCode(err, apperrors.CodeMatchSamePlayerTwice) {
		t.Fatalf("same player err = %v", err)
	}
	if len(r.Sessions()) != 1 {
		t.Fatalf("sessions = %d, want 1", len(r.Sessions()))
	}
}

func TestCreateSessionDeliveryFailureClosesBoth(t *testing.T) {
	gw := newFakeGateway()
	gw.fail[bob.ID] = errors.New("broken pipe")
	reporter := &fakeReporter{}
	r := newTestRegistry(t, gw, WithReporter(reporter))

	m, err := r.CreateSession(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if m == nil || !r.IsPlaying(alice.ID) || !r.IsPlaying(bob.ID) {
		t.Fatal("session must stay registered after delivery failure")
	}

	if len(gw.closed) != 2 {
		t.Fatalf("closed = %v, want both players", gw.closed)
	}
	for _, c := range gw.closed {
		if c.status != CloseServerError {
			t.Fatalf("close status = %s, want server_error", c.status)
		}
	}
	if len(reporter.reports) != 1 {
		t.Fatalf("reports = %v, want 1", reporter.reports)
	}
	rep := reporter.reports[0]
	if rep.playerID != bob.ID || rep.matchID != m.ID() || rep.operation != "lobby_created" {
		t.Fatalf("report = %+v", rep)
	}
	if !apperrors.IsCode(rep.err, apperrors.CodeDeliveryFailed) {
		t.Fatalf("reported err = %v, want DELIVERY_FAILED", rep.err)
	}
}

func TestTryStartGameNoopUntilBothPlaced(t *testing.T) {
	gw := newFakeGateway()
	r := newTestRegistry(t, gw)
	m, err := r.CreateSession(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	before := len(gw.sent)

	started, err := r.TryStartGame(context.Background(), m)
	if err != nil || started {
		t.Fatalf("try start in lobby = %v, %v", started, err)
	}
	if err := m.AcceptPlacement(alice.ID, boardtest.ClassicBoard(t)); err != nil {
		t.Fatalf("accept: %v", err)
	}
	started, err = r.TryStartGame(context.Background(), m)
	if err != nil || started {
		t.Fatalf("try start with one placement = %v, %v", started, err)
	}
	if len(gw.sent) != before {
		t.Fatalf("notifications sent before start: %v", gw.sent[before:])
	}
	if m.Phase() != match.PhaseAwaitingStart {
		t.Fatalf("phase = %s, want AWAITING_START", m.Phase())
	}
	if _, ok := m.Damaged(); ok {
		t.Fatal("damaged side assigned before both placements")
	}
}

func TestTryStartGameNotifiesEachSide(t *testing.T) {
	gw := newFakeGateway()
	r := newTestRegistry(t, gw)
	m := placedMatch(t, r)

	started, err := r.TryStartGame(context.Background(), m)
	if err != nil || !started {
		t.Fatalf("try start = %v, %v", started, err)
	}
	damaged, ok := m.Damaged()
	if !ok {
		t.Fatal("expected a damaged side")
	}

	attackers := 0
	for _, p := range m.Players() {
		got := gw.sentTo(p.ID)
		last, ok := got[len(got)-1].(notify.GameStarted)
		if !ok {
			t.Fatalf("last notification to %s = %T, want GameStarted", p.ID, got[len(got)-1])
		}
		if last.IsAttacker == p.Is(damaged.ID) {
			t.Fatalf("player %s isAttacker = %v, damaged = %s", p.ID, last.IsAttacker, damaged.ID)
		}
		if last.IsAttacker {
			attackers++
		}
	}
	if attackers != 1 {
		t.Fatalf("attackers = %d, want 1", attackers)
	}

	again, err := r.TryStartGame(context.Background(), m)
	if err != nil || again {
		t.Fatalf("second try start = %v, %v", again, err)
	}
}

func TestTryStartGameDeliveryFailureKeepsState(t *testing.T) {
	gw := newFakeGateway()
	reporter := &fakeReporter{}
	r := newTestRegistry(t, gw, WithReporter(reporter))
	m := placedMatch(t, r)
	gw.mu.Lock()
	gw.fail[alice.ID] = errors.New("gone")
	gw.mu.Unlock()

	started, err := r.TryStartGame(context.Background(), m)
	if !started {
		t.Fatal("expected match to start despite delivery failure")
	}
	if !apperrors.IsCode(err, apperrors.CodeDeliveryFailed) {
		t.Fatalf("err = %v, want DELIVERY_FAILED", err)
	}
	if m.Phase() != match.PhaseActive {
		t.Fatalf("phase = %s, want ACTIVE", m.Phase())
	}
	if len(gw.closed) != 0 {
		t.Fatalf("start failures must not close connections: %v", gw.closed)
	}
	if len(reporter.reports) != 1 || reporter.reports[0].operation != "game_started" {
		t.Fatalf("reports = %+v", reporter.reports)
	}
	if got := gw.sentTo(bob.ID); len(got) != 2 {
		t.Fatalf("bob notifications = %v, want lobby + start", got)
	}
}

func TestConcurrentTryStartGameStartsOnce(t *testing.T) {
	gw := newFakeGateway()
	r := newTestRegistry(t, gw)
	m := placedMatch(t, r)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := r.TryStartGame(context.Background(), m)
			if err != nil {
				t.Errorf("try start: %v", err)
			}
			if ok {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if started != 1 {
		t.Fatalf("started %d times, want 1", started)
	}
	if got := gw.sentTo(alice.ID); len(got) != 2 {
		t.Fatalf("alice notifications = %d, want 2", len(got))
	}
}

func TestEndToEndAttackerWins(t *testing.T) {
	gw := newFakeGateway()
	r := newTestRegistry(t, gw)
	m := placedMatch(t, r)
	if started, err := r.TryStartGame(context.Background(), m); err != nil || !started {
		t.Fatalf("try start = %v, %v", started, err)
	}
	damaged, _ := m.Damaged()
	attacker, _ := m.Opponent(damaged.ID)

	res, err := m.Fire(attacker.ID, board.At(0, 0))
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if res.Status != board.OnFire || !res.ShipDestroyed {
		t.Fatalf("shot at (0,0) = %+v", res)
	}
	grid, _ := m.Grid(damaged.ID)
	if grid[0][0] != board.Destructed || grid[0][1] != board.Blocked || grid[1][0] != board.Blocked || grid[1][1] != board.Blocked {
		t.Fatalf("corner after kill = %s %s / %s %s", grid[0][0], grid[0][1], grid[1][0], grid[1][1])
	}

	for _, ship := range boardtest.ClassicFleet(t)[1:] {
		for _, cell := range ship.Cells {
			if res, err = m.Fire(attacker.ID, cell); err != nil {
				t.Fatalf("fire %s: %v", cell, err)
			}
		}
	}
	if !res.MatchOver || m.Phase() != match.PhaseFinished {
		t.Fatalf("match not finished: %+v, %s", res, m.Phase())
	}

	if err := r.EndSession(context.Background(), m); err != nil {
		t.Fatalf("end session: %v", err)
	}
	attackerLast := gw.sentTo(attacker.ID)
	damagedLast := gw.sentTo(damaged.ID)
	if attackerLast[len(attackerLast)-1] != (notify.EndGame{Won: true}) {
		t.Fatalf("attacker end = %v", attackerLast[len(attackerLast)-1])
	}
	if damagedLast[len(damagedLast)-1] != (notify.EndGame{Won: false}) {
		t.Fatalf("damaged end = %v", damagedLast[len(damagedLast)-1])
	}
	if !r.IsPlaying(attacker.ID) {
		t.Fatal("EndSession must not remove the match")
	}

	r.RemoveSession(m)
	if r.IsPlaying(alice.ID) || r.IsPlaying(bob.ID) {
		t.Fatal("RemoveSession left players registered")
	}
}

func TestEndSessionContinuesAfterFailure(t *testing.T) {
	gw := newFakeGateway()
	reporter := &fakeReporter{}
	r := newTestRegistry(t, gw, WithReporter(reporter))
	m, err := r.CreateSession(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := m.Forfeit(bob.ID); err != nil {
		t.Fatalf("forfeit: %v", err)
	}
	gw.mu.Lock()
	gw.fail[alice.ID] = errors.New("gone")
	gw.mu.Unlock()

	err = r.EndSession(context.Background(), m)
	if !apperrors.IsCode(err, apperrors.CodeDeliveryFailed) {
		t.Fatalf("err = %v, want DELIVERY_FAILED", err)
	}
	got := gw.sentTo(bob.ID)
	if got[len(got)-1] != (notify.EndGame{Won: false}) {
		t.Fatalf("bob end = %v", got[len(got)-1])
	}
	if len(reporter.reports) != 1 || reporter.reports[0].playerID != alice.ID {
		t.Fatalf("reports = %+v", reporter.reports)
	}
}

func TestRemoveSessionKeepsNewerMatch(t *testing.T) {
	r := newTestRegistry(t, newFakeGateway())
	old, err := r.CreateSession(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	r.RemoveSession(old)

	fresh, err := r.CreateSession(context.Background(), alice, carol)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	r.RemoveSession(old)
	if got, ok := r.GameSession(alice.ID); !ok || got != fresh {
		t.Fatal("removing a stale match dropped the newer one")
	}
	r.RemoveSession(nil)
}

func TestSessionAlive(t *testing.T) {
	gw := newFakeGateway()
	r := newTestRegistry(t, gw)
	m, err := r.CreateSession(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if !r.SessionAlive(m) {
		t.Fatal("expected session alive")
	}
	gw.mu.Lock()
	gw.disconnected[bob.ID] = true
	gw.mu.Unlock()
	if r.SessionAlive(m) {
		t.Fatal("expected session dead after disconnect")
	}
	if r.SessionAlive(nil) {
		t.Fatal("nil match cannot be alive")
	}
}

func TestSessionsDeduplicates(t *testing.T) {
	r := newTestRegistry(t, newFakeGateway())
	if _, err := r.CreateSession(context.Background(), alice, bob); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := r.CreateSession(context.Background(), carol, match.Player{ID: "dave-id", Username: "dave"}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if got := len(r.Sessions()); got != 2 {
		t.Fatalf("sessions = %d, want 2", got)
	}
}

func TestConcurrentCreateSessionsStayConsistent(t *testing.T) {
	r := newTestRegistry(t, newFakeGateway(), WithIDGenerator(func() (string, error) {
		return "m", nil
	}))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p1 := match.Player{ID: fmt.Sprintf("p%d-a", i), Username: "a"}
			p2 := match.Player{ID: fmt.Sprintf("p%d-b", i), Username: "b"}
			m, err := r.CreateSession(context.Background(), p1, p2)
			if err != nil {
				t.Errorf("create session %d: %v", i, err)
				return
			}
			if got, _ := r.GameSession(p2.ID); got != m {
				t.Errorf("session %d: players map to different matches", i)
			}
			r.RemoveSession(m)
		}(i)
	}
	wg.Wait()
	if got := len(r.Sessions()); got != 0 {
		t.Fatalf("sessions = %d, want 0", got)
	}
}

func placedMatch(t *testing.T, r *Registry) *match.Match {
	t.Helper()
	m, err := r.CreateSession(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	for _, p := range m.Players() {
		if err := m.AcceptPlacement(p.ID, boardtest.ClassicBoard(t)); err != nil {
			t.Fatalf("accept %s: %v", p.ID, err)
		}
	}
	return m
}
