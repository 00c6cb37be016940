package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MarcGrol/courseshop/lib/myconfig"
	"github.com/MarcGrol/courseshop/lib/mydb"
	"github.com/MarcGrol/courseshop/lib/myhttpclient"
	"github.com/MarcGrol/courseshop/lib/mypublisher"
	"github.com/MarcGrol/courseshop/lib/mypubsub"
	"github.com/MarcGrol/courseshop/lib/myqueue"
	"github.com/MarcGrol/courseshop/lib/myredis"
	"github.com/MarcGrol/courseshop/lib/mystore"
	"github.com/MarcGrol/courseshop/lib/mytime"
	"github.com/MarcGrol/courseshop/lib/myuuid"
	"github.com/MarcGrol/courseshop/services/accounts"
	"github.com/MarcGrol/courseshop/services/catalog"
	"github.com/MarcGrol/courseshop/services/checkout"
	"github.com/MarcGrol/courseshop/services/fulfillment"
	"github.com/MarcGrol/courseshop/services/identity"
	"github.com/MarcGrol/courseshop/services/ledger"
	"github.com/MarcGrol/courseshop/services/profiles"
	"github.com/MarcGrol/courseshop/services/purchaseevents"
	"github.com/MarcGrol/courseshop/services/reconciliation"
	"github.com/MarcGrol/courseshop/services/warmup"
)

type registerer interface {
	RegisterEndpoints(c context.Context, router *mux.Router) error
}

type persistence struct {
	catalog  catalog.ReadWriter
	ledger   ledger.Ledger
	profiles profiles.Store
}

func main() {
	c := context.Background()

	config, err := myconfig.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %s", err)
	}

	router := mux.NewRouter()
	nower := mytime.RealNower{}

	stores, cleanup, err := openPersistence(c, config)
	if err != nil {
		log.Fatalf("Error opening persistence: %s", err)
	}
	defer cleanup()

	err = seedCourses(c, config, stores.catalog)
	if err != nil {
		log.Fatalf("Error seeding catalog: %s", err)
	}

	processed, cleanup, err := openProcessedEvents(c, config, nower)
	if err != nil {
		log.Fatalf("Error opening processed-events registry: %s", err)
	}
	defer cleanup()

	pubsub, cleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer cleanup()

	queue, cleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating queue: %s", err)
	}
	defer cleanup()

	publisher, cleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating event publisher: %s", err)
	}
	defer cleanup()
	publisher.RegisterEndpoints(c, router)

	err = publisher.CreateTopic(c, purchaseevents.TopicName)
	if err != nil {
		log.Fatalf("Error creating topic %s: %s", purchaseevents.TopicName, err)
	}

	receiptStore, cleanup, err := mystore.New[reconciliation.Receipt](c)
	if err != nil {
		log.Fatalf("Error creating receipt store: %s", err)
	}
	defer cleanup()

	directory := openDirectory(config, nower, stores.profiles)
	resolver := identity.NewResolver(directory, stores.profiles)

	for _, service := range []registerer{
		catalog.NewWebService(stores.catalog),
		ledger.NewWebService(stores.ledger),
		checkout.NewWebService(config, checkout.NewPayer(), stores.catalog, stores.ledger),
		fulfillment.NewWebService(config, nower, resolver, stores.ledger, stores.profiles, publisher, processed),
		reconciliation.NewWebService(nower, pubsub, receiptStore),
		warmup.NewService(stores.catalog),
	} {
		err = service.RegisterEndpoints(c, router)
		if err != nil {
			log.Fatalf("Error registering endpoints: %s", err)
		}
	}

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	startWebServerBlocking(config.Port, router)
}

func openPersistence(c context.Context, config myconfig.Config) (persistence, func(), error) {
	if config.DatabaseURL != "" {
		db, cleanup, err := mydb.Open(c, config.DatabaseURL)
		if err != nil {
			return persistence{}, nil, err
		}
		return postgresPersistence(db), cleanup, nil
	}

	courseStore, courseCleanup, err := mystore.New[catalog.Course](c)
	if err != nil {
		return persistence{}, nil, fmt.Errorf("error creating course store: %s", err)
	}
	purchaseStore, purchaseCleanup, err := mystore.New[ledger.Purchase](c)
	if err != nil {
		courseCleanup()
		return persistence{}, nil, fmt.Errorf("error creating purchase store: %s", err)
	}
	profileStore, profileCleanup, err := mystore.New[profiles.Profile](c)
	if err != nil {
		courseCleanup()
		purchaseCleanup()
		return persistence{}, nil, fmt.Errorf("error creating profile store: %s", err)
	}

	stores := persistence{
		catalog:  catalog.NewStoreCatalog(courseStore),
		ledger:   ledger.NewStoreLedger(purchaseStore),
		profiles: profiles.NewStoreProfiles(profileStore),
	}

	return stores, func() {
		courseCleanup()
		purchaseCleanup()
		profileCleanup()
	}, nil
}

func postgresPersistence(db *sql.DB) persistence {
	return persistence{
		catalog:  catalog.NewPostgresCatalog(db),
		ledger:   ledger.NewPostgresLedger(db),
		profiles: profiles.NewPostgresProfiles(db),
	}
}

// seedCourses imports the configured course file, or fills an empty catalog with demo courses
// so a fresh local instance has something to sell.
func seedCourses(c context.Context, config myconfig.Config, courses catalog.ReadWriter) error {
	if config.CatalogFile != "" {
		file, err := os.Open(config.CatalogFile)
		if err != nil {
			return fmt.Errorf("error opening catalog file: %s", err)
		}
		defer file.Close()

		parsed, err := catalog.ReadCourses(file)
		if err != nil {
			return err
		}
		return catalog.Import(c, courses, parsed)
	}

	existing, err := courses.ListOrderedByTitle(c)
	if err != nil {
		return fmt.Errorf("error listing courses: %s", err)
	}
	if len(existing) > 0 {
		return nil
	}

	discounted := 29.0
	return catalog.Import(c, courses, []catalog.Course{
		{ID: "go-basics", Title: "Go basics", Price: 49, Description: "Types, functions and packages"},
		{ID: "go-concurrency", Title: "Go concurrency", Price: 79, DiscountedPrice: &discounted, Description: "Goroutines, channels and context"},
		{ID: "go-services", Title: "Go services", Price: 99, Description: "HTTP services with persistence and events"},
	})
}

func openProcessedEvents(c context.Context, config myconfig.Config, nower mytime.Nower) (fulfillment.ProcessedEvents, func(), error) {
	client, cleanup, err := myredis.New(c, config.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		return fulfillment.NewInMemoryProcessedEvents(nower, config.ProcessedEventTTL), cleanup, nil
	}
	return fulfillment.NewRedisProcessedEvents(client, config.ProcessedEventTTL), cleanup, nil
}

func openDirectory(config myconfig.Config, nower mytime.Nower, profileStore profiles.Store) accounts.Directory {
	if config.LocalAccounts || config.StoreURL == "" {
		return accounts.NewInMemoryDirectory(myuuid.RealUUIDer{}, nower, profileStore)
	}
	return accounts.NewHTTPDirectory(config.StoreURL, config.StoreServiceKey, myhttpclient.New(10*time.Second))
}

func startWebServerBlocking(port string, router *mux.Router) {
	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
