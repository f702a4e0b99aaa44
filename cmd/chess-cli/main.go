package main

import (
    "bufio"
    "context"
    "flag"
    "fmt"
    "log"
    "os"
    "os/signal"
    "strings"
    "syscall"
    "time"

    "go.uber.org/zap"

    "github.com/park285/rusty-chess-go/internal/apiclient"
    appcfg "github.com/park285/rusty-chess-go/internal/config"
    "github.com/park285/rusty-chess-go/internal/commands"
    "github.com/park285/rusty-chess-go/internal/msgcat"
    "github.com/park285/rusty-chess-go/internal/obslog"
    "github.com/park285/rusty-chess-go/internal/session"
    "github.com/park285/rusty-chess-go/internal/snapshot"
)

func main() {
    cfg, err := appcfg.Load()
    if err != nil {
        log.Fatalf("config error: %v", err)
    }

    remote := flag.Bool("remote", false, "play against the HTTP server instead of an in-process game")
    server := flag.String("server", cfg.ServerURL, "chess server base URL for -remote")
    fen := flag.String("fen", cfg.StartFEN, "start position for the in-process game")
    watch := flag.Bool("watch", false, "print session states published to REDIS_URL and exit on interrupt")
    flag.Parse()

    // the REPL owns stdout; logs only go to the file sink
    cfg.Log.Console = false
    logger, err := obslog.Init(cfg.Log)
    if err != nil {
        log.Fatalf("logger init error: %v", err)
    }
    defer func() { _ = logger.Sync() }()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    msgs, err := msgcat.New(cfg.MessagesDir)
    if err != nil {
        log.Fatalf("messages error: %v", err)
    }

    if *watch {
        if err := watchSnapshots(ctx, cfg, logger); err != nil {
            log.Fatalf("watch error: %v", err)
        }
        return
    }

    var backend commands.Backend
    if *remote {
        backend = commands.NewRemoteBackend(apiclient.New(*server, apiclient.WithTimeout(5*time.Second)))
    } else {
        coord, err := session.New(session.WithStartFEN(*fen), session.WithLogger(logger))
        if err != nil {
            log.Fatalf("session error: %v", err)
        }
        backend = commands.NewLocalBackend(coord, msgs)
    }

    d := commands.NewDispatcher(backend, msgs, logger)
    fmt.Println(d.Welcome(ctx))
    repl(ctx, d)
}

func repl(ctx context.Context, d *commands.Dispatcher) {
    in := bufio.NewScanner(os.Stdin)
    for {
        fmt.Print("> ")
        if !in.Scan() {
            fmt.Println()
            return
        }
        reply, err := d.Handle(ctx, in.Text())
        if err != nil {
            fmt.Fprintf(os.Stderr, "error: %v\n", err)
            continue
        }
        if reply.Text != "" {
            fmt.Println(reply.Text)
        }
        if reply.Quit || ctx.Err() != nil {
            return
        }
    }
}

func watchSnapshots(ctx context.Context, cfg *appcfg.AppConfig, logger *zap.Logger) error {
    if cfg.RedisURL == "" {
        return fmt.Errorf("REDIS_URL is required for -watch")
    }
    store, err := snapshot.Open(ctx, cfg.RedisURL,
        snapshot.WithPrefix(cfg.SnapshotPrefix),
        snapshot.WithLogger(logger),
    )
    if err != nil {
        return err
    }
    defer store.Close()

    id, err := store.Current(ctx)
    if err != nil {
        return err
    }
    if id == "" {
        return fmt.Errorf("no session published under prefix %q", cfg.SnapshotPrefix)
    }
    if st, err := store.Load(ctx, id); err == nil && st != nil {
        fmt.Println(commands.FormatBoard(st.FEN))
    }
    states, err := store.Subscribe(ctx, id)
    if err != nil {
        return err
    }
    for st := range states {
        line := fmt.Sprintf("[%d.%d] %s", st.Generation, st.Ply, st.Outcome)
        if st.LastMove != "" {
            line += " " + st.LastMove
        }
        fmt.Println(strings.TrimSpace(line))
        fmt.Println(commands.FormatBoard(st.FEN))
    }
    return nil
}
