package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/log"
	"github.com/amarvote/evoting/receipt"
	"github.com/amarvote/evoting/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// requestIDHeader is the header a client can read back to correlate its
// request with this façade's logs.
const requestIDHeader = "X-Request-Id"

// requestID stamps every request with a uuid, storing it under chi's own
// middleware.RequestIDKey (so middleware.GetReqID and chi's own log helpers
// keep working) and echoing it back on the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// APIConfig is the configuration needed to start an API server.
type APIConfig struct {
	Host   string
	Port   int
	Params *group.Params

	// Store and Receipts, if nil, are created fresh. Tests that need to
	// inspect state after a request typically provide their own.
	Store    *store.Store
	Receipts receipt.ReceiptLogger
}

// API is the HTTP façade (A6) over the election engine: a thin
// request/response layer around store.Store, with no cryptographic logic
// of its own beyond unwrapping wire DTOs into domain types.
type API struct {
	router   *chi.Mux
	params   *group.Params
	store    *store.Store
	receipts receipt.ReceiptLogger
}

// New creates an API instance and starts serving in the background.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("api: missing configuration")
	}
	if conf.Params == nil {
		return nil, fmt.Errorf("api: missing group params")
	}
	st := conf.Store
	if st == nil {
		st = store.New()
	}
	rl := conf.Receipts
	if rl == nil {
		rl = receipt.NewMemoryReceiptLogger()
	}

	a := &API{params: conf.Params, store: st, receipts: rl}
	a.initRouter()
	go func() {
		log.Infow("starting api server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("api: server exited: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router, for tests driving the API in-process.
func (a *API) Router() *chi.Mux {
	return a.router
}

// registerHandlers wires every endpoint in routes.go to its handler.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})

	log.Infow("register handler", "endpoint", GuardiansEndpoint, "method", "POST")
	a.router.Post(GuardiansEndpoint, a.setupGuardians)

	log.Infow("register handler", "endpoint", BallotsEndpoint, "method", "POST")
	a.router.Post(BallotsEndpoint, a.encryptBallot)

	log.Infow("register handler", "endpoint", TallyEndpoint, "method", "POST")
	a.router.Post(TallyEndpoint, a.tally)

	log.Infow("register handler", "endpoint", PartialDecryptEndpoint, "method", "POST", "parameters", GuardianIDURLParam)
	a.router.Post(PartialDecryptEndpoint, a.partialDecrypt)

	log.Infow("register handler", "endpoint", CompensateEndpoint, "method", "POST", "parameters", GuardianIDURLParam)
	a.router.Post(CompensateEndpoint, a.compensate)

	log.Infow("register handler", "endpoint", CombineEndpoint, "method", "POST")
	a.router.Post(CombineEndpoint, a.combine)

	log.Infow("register handler", "endpoint", BenalohChallengeEndpoint, "method", "POST")
	a.router.Post(BenalohChallengeEndpoint, a.benalohChallenge)
}

// bufPool reduces allocations in the request-body-logging middleware.
var bufPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// initRouter builds the chi router with middleware matching the engine's
// logging and resilience conventions, then registers every handler.
func (a *API) initRouter() {
	logHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if log.Level() != log.LevelDebug || r.URL.Path == PingEndpoint {
				next.ServeHTTP(w, r)
				return
			}

			buf := bufPool.Get().(*bytes.Buffer)
			buf.Reset()

			bodyBytes, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "unable to read request body", http.StatusInternalServerError)
				bufPool.Put(buf)
				return
			}
			buf.Write(bodyBytes)

			log.Debugw("api request",
				"method", r.Method,
				"url", r.URL.String(),
				"requestId", middleware.GetReqID(r.Context()),
				"body", strings.ReplaceAll(buf.String(), "\"", ""),
			)

			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bufPool.Put(buf)

			next.ServeHTTP(w, r)
		})
	}

	a.router = chi.NewRouter()
	a.router.Use(requestID)
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	a.router.Use(logHandler)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	a.registerHandlers()
}
