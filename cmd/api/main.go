package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-shop-payments.git/internal/audit"
	"github.com/ariefcatur/go-shop-payments.git/internal/config"
	"github.com/ariefcatur/go-shop-payments.git/internal/events"
	"github.com/ariefcatur/go-shop-payments.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-shop-payments.git/internal/kafka"
	"github.com/ariefcatur/go-shop-payments.git/internal/mercadopago"
	"github.com/ariefcatur/go-shop-payments.git/internal/orders"
	"github.com/ariefcatur/go-shop-payments.git/internal/postgres"
	"github.com/ariefcatur/go-shop-payments.git/internal/products"
	"github.com/ariefcatur/go-shop-payments.git/internal/realtime"
	"github.com/ariefcatur/go-shop-payments.git/internal/redisx"
	"github.com/ariefcatur/go-shop-payments.git/internal/revert"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	pOrders := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCreated, 1024)
	pOrders.Start(ctx)
	pStock := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicStockChanged, 1024)
	pStock.Start(ctx)
	pFinal := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderFinalized, 1024)
	pFinal.Start(ctx)

	broadcast := &realtime.Broadcaster{Producer: pStock, Name: cfg.ServiceName}

	// Repos & services
	productRepo := &products.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	historyRepo := &audit.Repo{DB: db}
	reverter := &revert.Reverter{Store: &revert.Repo{DB: db}}

	gateway := mercadopago.NewClient(cfg.MPBaseURL, cfg.MPAccessToken, cfg.MPPublicKey, cfg.MPTimeout)
	paySvc := &mercadopago.Service{
		Orders:    orderRepo,
		Gateway:   gateway,
		Finalized: pFinal,
		Name:      cfg.ServiceName,
	}

	// Router & handlers
	router := httpx.NewRouter()
	(&httpx.ProductsHandler{
		Store:     productRepo,
		History:   historyRepo,
		Reverter:  reverter,
		Broadcast: broadcast,
	}).Register(router)
	(&httpx.OrdersHandler{
		Store:     orderRepo,
		Redis:     rdb,
		Producer:  pOrders,
		Broadcast: broadcast,
		Service:   cfg.ServiceName,
	}).Register(router)
	(&httpx.PaymentsHandler{
		Service: paySvc,
		Gateway: gateway,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel() // stop producer loops; flush & close writer
	pOrders.WaitClosed()
	pStock.WaitClosed()
	pFinal.WaitClosed()
}
