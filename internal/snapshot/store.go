// Package snapshot mirrors the latest state of a session into Redis and
// publishes every accepted update on a pub/sub channel.
package snapshot

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/park285/rusty-chess-go/internal/session"
    "github.com/park285/rusty-chess-go/pkg/chessdto"
)

const (
    defaultPrefix = "chess"
    defaultTTL    = 24 * time.Hour

    maxSaveAttempts = 5
)

// ErrStale is returned by Save when Redis already holds the same or a newer
// state of the session.
var ErrStale = errors.New("snapshot is stale")

type Store struct {
    rdb    *redis.Client
    prefix string
    ttl    time.Duration
    logger *zap.Logger
}

type Option func(*Store)

func WithPrefix(p string) Option {
    return func(s *Store) { if p = strings.TrimSpace(p); p != "" { s.prefix = p } }
}

func WithTTL(d time.Duration) Option {
    return func(s *Store) { if d > 0 { s.ttl = d } }
}

func WithLogger(l *zap.Logger) Option {
    return func(s *Store) { if l != nil { s.logger = l } }
}

func NewStore(rdb *redis.Client, opts ...Option) *Store {
    s := &Store{rdb: rdb, prefix: defaultPrefix, ttl: defaultTTL, logger: zap.NewNop()}
    for _, opt := range opts { opt(s) }
    return s
}

// Open connects to redisURL (redis:// or rediss://) and verifies the
// connection with PING.
func Open(ctx context.Context, redisURL string, opts ...Option) (*Store, error) {
    if strings.TrimSpace(redisURL) == "" {
        return nil, fmt.Errorf("REDIS_URL required for snapshot store")
    }
    ro, err := redis.ParseURL(redisURL)
    if err != nil { return nil, fmt.Errorf("parse redis url: %w", err) }
    rdb := redis.NewClient(ro)
    if err := rdb.Ping(ctx).Err(); err != nil {
        _ = rdb.Close()
        return nil, fmt.Errorf("redis ping: %w", err)
    }
    return NewStore(rdb, opts...), nil
}

func (s *Store) Close() error {
    if s == nil || s.rdb == nil { return nil }
    return s.rdb.Close()
}

func (s *Store) keyState(sessionID string) string   { return s.prefix + ":session:" + strings.TrimSpace(sessionID) }
func (s *Store) keyChannel(sessionID string) string { return s.keyState(sessionID) + ":events" }
func (s *Store) keyCurrent() string                 { return s.prefix + ":current" }

// Save stores st unless Redis already holds a state at least as new. The
// comparison and the write run in one WATCH transaction so concurrent
// writers cannot move the mirror backwards.
func (s *Store) Save(ctx context.Context, st chessdto.SessionState) error {
    if s == nil || s.rdb == nil { return fmt.Errorf("snapshot store not initialized") }
    if strings.TrimSpace(st.SessionID) == "" { return fmt.Errorf("snapshot without session id") }
    key := s.keyState(st.SessionID)
    raw, err := json.Marshal(&st)
    if err != nil { return fmt.Errorf("marshal snapshot: %w", err) }

    txf := func(tx *redis.Tx) error {
        prevRaw, err := tx.Get(ctx, key).Bytes()
        if err != nil && err != redis.Nil { return err }
        if err == nil {
            var prev chessdto.SessionState
            if err := json.Unmarshal(prevRaw, &prev); err == nil && !newer(st, prev) {
                return ErrStale
            }
        }
        pipe := tx.TxPipeline()
        pipe.Set(ctx, key, raw, s.ttl)
        pipe.Set(ctx, s.keyCurrent(), st.SessionID, s.ttl)
        pipe.Publish(ctx, s.keyChannel(st.SessionID), raw)
        _, err = pipe.Exec(ctx)
        return err
    }
    for attempt := 0; attempt < maxSaveAttempts; attempt++ {
        err = s.rdb.Watch(ctx, txf, key)
        if !errors.Is(err, redis.TxFailedErr) { return err }
    }
    return err
}

func newer(a, b chessdto.SessionState) bool {
    if a.Generation != b.Generation { return a.Generation > b.Generation }
    return a.Ply > b.Ply
}

// Load returns the mirrored state of a session, or nil when none is stored.
func (s *Store) Load(ctx context.Context, sessionID string) (*chessdto.SessionState, error) {
    raw, err := s.rdb.Get(ctx, s.keyState(sessionID)).Bytes()
    if err == redis.Nil { return nil, nil }
    if err != nil { return nil, err }
    var st chessdto.SessionState
    if err := json.Unmarshal(raw, &st); err != nil { return nil, err }
    return &st, nil
}

// Current returns the id of the most recently saved session.
func (s *Store) Current(ctx context.Context) (string, error) {
    id, err := s.rdb.Get(ctx, s.keyCurrent()).Result()
    if err == redis.Nil { return "", nil }
    return id, err
}

// Observe implements session.Observer. Stale snapshots are dropped quietly.
func (s *Store) Observe(ctx context.Context, snap session.Snapshot) error {
    err := s.Save(ctx, snap.DTO())
    if errors.Is(err, ErrStale) {
        s.logger.Debug("chess_snapshot_stale",
            zap.String("session_id", snap.SessionID),
            zap.Uint64("generation", snap.Generation),
            zap.Int("ply", snap.Ply),
        )
        return nil
    }
    return err
}

// Subscribe streams the states published for sessionID until ctx is done.
// The returned channel is closed when the subscription ends.
func (s *Store) Subscribe(ctx context.Context, sessionID string) (<-chan chessdto.SessionState, error) {
    sub := s.rdb.Subscribe(ctx, s.keyChannel(sessionID))
    if _, err := sub.Receive(ctx); err != nil {
        _ = sub.Close()
        return nil, fmt.Errorf("subscribe: %w", err)
    }
    out := make(chan chessdto.SessionState, 8)
    go func() {
        defer close(out)
        defer sub.Close()
        msgs := sub.Channel()
        for {
            select {
            case <-ctx.Done():
                return
            case msg, ok := <-msgs:
                if !ok { return }
                var st chessdto.SessionState
                if err := json.Unmarshal([]byte(msg.Payload), &st); err != nil {
                    s.logger.Warn("chess_snapshot_decode", zap.Error(err))
                    continue
                }
                select {
                case out <- st:
                case <-ctx.Done():
                    return
                }
            }
        }
    }()
    return out, nil
}
