package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-shop-payments.git/internal/config"
	"github.com/ariefcatur/go-shop-payments.git/internal/events"
	kafkax "github.com/ariefcatur/go-shop-payments.git/internal/kafka"
	"github.com/ariefcatur/go-shop-payments.git/internal/redisx"
)

// stockfeed: consume product.stock.changed dan fan-out ke Redis pub/sub
// buat websocket edge. Delivery ke subscriber best-effort.

type feed struct {
	rdb *redis.Client
}

func (f *feed) handle(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventStockChanged {
		return nil // ignore
	}

	// dedup pakai event_id; redelivery kafka tidak perlu publish dua kali
	dkey := fmt.Sprintf(redisx.KeyDedup, "stockfeed", env.EventID)
	if exists, _ := redisx.Exists(ctx, f.rdb, dkey); exists {
		return nil
	}
	_ = f.rdb.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[events.StockChangedPayload](env.Payload)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, redisx.ChannelStockUpdated,
		kafkax.MustMarshal(p)).Err()
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	group := getenv("STOCKFEED_GROUP", "stockfeed")
	workers := mustAtoi(os.Getenv("STOCKFEED_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicStockChanged, workers)

	f := &feed{rdb: rdb}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("stockfeed consumer started: group=%s topic=%s workers=%d",
			group, events.TopicStockChanged, workers)
		return cons.Start(gctx, f.handle)
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
			log.Println("shutting down stockfeed...")
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("stockfeed exit: %v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
