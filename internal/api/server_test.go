package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"github.com/energizer-project/showtrack/internal/config"
	"github.com/energizer-project/showtrack/internal/events"
	"github.com/energizer-project/showtrack/internal/session"
	"github.com/energizer-project/showtrack/internal/store"
)

const battleFrame = `>battle-gen9ou-7
|init|battle
|player|p1|Alice|1|
|player|p2|Bob|2|
|gametype|singles
|gen|9
|tier|[Gen 9] OU
|start
|switch|p1a: Pikachu|Pikachu, L50|100/100
|switch|p2a: Gengar|Gengar, L50|100/100
|-start|p2a: Gengar|typechange|Ghost/Poison
|-sidestart|p2: Bob|move: Stealth Rock
|turn|1`

type fixture struct {
	srv      *Server
	cfg      *config.Config
	bus      *events.EventBus
	sessions *session.Manager
}

func newFixture(t *testing.T, results ResultStore) *fixture {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	api := cfg.GetAPI()
	api.RateLimitRPS = 0
	cfg.SetAPI(api)

	bus := events.NewEventBus()
	t.Cleanup(bus.Stop)
	sessions := session.NewManager(bus)
	sessions.HandleFrame(context.Background(), battleFrame)

	return &fixture{
		srv:      NewServer(cfg, bus, sessions, results),
		cfg:      cfg,
		bus:      bus,
		sessions: sessions,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestPing(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodGet, "/api/public/ping", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	var body map[string]string
	decode(t, w, &body)
	if body["service"] != "showtrack" {
		t.Errorf("body = %v", body)
	}
}

func TestListAndGetBattle(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/battles", "")
	var list struct {
		Battles []session.RoomSummary `json:"battles"`
		Total   int                   `json:"total"`
	}
	decode(t, w, &list)
	if list.Total != 1 || list.Battles[0].Room != "battle-gen9ou-7" || list.Battles[0].Turn != 1 {
		t.Fatalf("list = %+v", list)
	}

	w = f.do(t, http.MethodGet, "/api/battles/battle-gen9ou-7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var battle struct {
		Turn int    `json:"turn"`
		Tier string `json:"tier"`
	}
	decode(t, w, &battle)
	if battle.Turn != 1 || battle.Tier != "[Gen 9] OU" {
		t.Errorf("battle = %+v", battle)
	}

	if w := f.do(t, http.MethodGet, "/api/battles/battle-missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing room status = %d", w.Code)
	}
}

func TestGetSide(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/battles/battle-gen9ou-7/sides/p2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Alive      int  `json:"alive"`
		HasHazards bool `json:"has_hazards"`
	}
	decode(t, w, &body)
	if body.Alive != 1 || !body.HasHazards {
		t.Errorf("side = %+v", body)
	}

	if w := f.do(t, http.MethodGet, "/api/battles/battle-gen9ou-7/sides/p9", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad seat status = %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/api/battles/battle-gen9ou-7/sides/p3", ""); w.Code != http.StatusNotFound {
		t.Errorf("unseen side status = %d", w.Code)
	}
}

func TestMatchupAgainstPosition(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/battles/battle-gen9ou-7/matchup?defender=p2a&attacker=Ghost,Normal", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Defender  string `json:"defender"`
		Attackers []struct {
			Multiplier float64 `json:"multiplier"`
		} `json:"attackers"`
		WeakToAny  bool `json:"weak_to_any"`
		ResistsAll bool `json:"resists_all"`
	}
	decode(t, w, &body)
	if body.Defender != "Gengar" || len(body.Attackers) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.Attackers[0].Multiplier != 2 || body.Attackers[1].Multiplier != 0 {
		t.Errorf("multipliers = %+v", body.Attackers)
	}
	if !body.WeakToAny || body.ResistsAll {
		t.Errorf("weak=%v resists=%v", body.WeakToAny, body.ResistsAll)
	}
}

func TestMatchupErrors(t *testing.T) {
	f := newFixture(t, nil)
	cases := []struct {
		path string
		code int
	}{
		{"/api/battles/battle-gen9ou-7/matchup", http.StatusBadRequest},
		{"/api/battles/battle-gen9ou-7/matchup?defender=Plasma", http.StatusBadRequest},
		{"/api/battles/battle-gen9ou-7/matchup?defender=p2b", http.StatusNotFound},
		// Pikachu has no known types without a dex entry.
		{"/api/battles/battle-gen9ou-7/matchup?defender=p1a", http.StatusUnprocessableEntity},
		{"/api/battles/battle-gen9ou-7/matchup?defender=Water&attacker=Plasma", http.StatusBadRequest},
	}
	for _, tc := range cases {
		if w := f.do(t, http.MethodGet, tc.path, ""); w.Code != tc.code {
			t.Errorf("%s: status = %d, want %d", tc.path, w.Code, tc.code)
		}
	}
}

func TestTypeEffectiveness(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/types/Grass/Water,Ground", "")
	var body struct {
		Multiplier float64 `json:"multiplier"`
	}
	decode(t, w, &body)
	if body.Multiplier != 4 {
		t.Errorf("multiplier = %v", body.Multiplier)
	}

	if w := f.do(t, http.MethodGet, "/api/types/Plasma/Water", ""); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestResultsWithoutStorage(t *testing.T) {
	f := newFixture(t, nil)
	for _, path := range []string{"/api/results", "/api/results/battle-1", "/api/battles/battle-1/log"} {
		if w := f.do(t, http.MethodGet, path, ""); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d", path, w.Code)
		}
	}
}

func TestResultsFromStore(t *testing.T) {
	st, err := store.NewBattleStore(filepath.Join(t.TempDir(), "showtrack.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	f := newFixture(t, st)
	ctx := context.Background()
	f.sessions.HandleFrame(ctx, ">battle-gen9ou-7\n|win|Alice")

	snap, ok := f.sessions.Snapshot("battle-gen9ou-7")
	if !ok {
		t.Fatal("snapshot missing")
	}
	if err := st.RecordResult(ctx, "battle-gen9ou-7", snap, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := st.AppendLog(ctx, "battle-gen9ou-7", []string{"|turn|1", "|win|Alice"}); err != nil {
		t.Fatal(err)
	}

	w := f.do(t, http.MethodGet, "/api/results?limit=5", "")
	var list struct {
		Count   int            `json:"count"`
		Results []store.Result `json:"results"`
	}
	decode(t, w, &list)
	if list.Count != 1 || list.Results[0].Winner != "Alice" {
		t.Errorf("results = %+v", list)
	}

	if w := f.do(t, http.MethodGet, "/api/results/battle-gen9ou-7", ""); w.Code != http.StatusOK {
		t.Errorf("result status = %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/api/results/battle-nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing result status = %d", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/battles/battle-gen9ou-7/log?format=text", "")
	if w.Code != http.StatusOK || w.Body.String() != "|turn|1\n|win|Alice\n" {
		t.Errorf("log = %d %q", w.Code, w.Body.String())
	}
	if w := f.do(t, http.MethodGet, "/api/battles/battle-nope/log", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing log status = %d", w.Code)
	}
}

func TestSetRooms(t *testing.T) {
	f := newFixture(t, nil)
	changed := make(chan string, 1)
	f.bus.Subscribe(events.EventConfigChanged, "test", func(_ context.Context, e events.Event) error {
		changed <- e.Payload.(events.ConfigChangedPayload).Section
		return nil
	})

	w := f.do(t, http.MethodPost, "/api/config/rooms", `{"rooms":["lobby","battle-gen9ou-7"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if rooms := f.cfg.GetServer().Rooms; len(rooms) != 2 || rooms[0] != "lobby" {
		t.Errorf("rooms = %v", rooms)
	}
	select {
	case section := <-changed:
		if section != "server" {
			t.Errorf("section = %q", section)
		}
	case <-time.After(2 * time.Second):
		t.Error("config change not emitted")
	}

	if w := f.do(t, http.MethodPost, "/api/config/rooms", `{"rooms":["bad room"]}`); w.Code != http.StatusBadRequest {
		t.Errorf("invalid room status = %d", w.Code)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	f := newFixture(t, nil)
	if w := f.do(t, http.MethodGet, "/api/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1)
	now := time.Unix(0, 0)
	rl.now = func() time.Time { return now }

	// burst of two, then empty
	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("burst should be allowed")
	}
	if rl.Allow("a") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other clients have their own bucket")
	}
	now = now.Add(time.Second)
	if !rl.Allow("a") {
		t.Error("bucket should refill")
	}
	if !NewRateLimiter(0).Allow("a") {
		t.Error("zero rate disables limiting")
	}

	now = now.Add(idleBucketTTL)
	rl.Allow("c")
	if n := rl.size(); n != 1 {
		t.Errorf("idle buckets should be swept, have %d", n)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		r.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/x", nil))
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", last.Code)
	}
	if got := last.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q", got)
	}
}
