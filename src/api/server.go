package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/colabio/crowdfund/src/api/response"
	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/runtime"
	"github.com/colabio/crowdfund/src/utils/config"
	"github.com/colabio/crowdfund/src/utils/model"
	"github.com/colabio/crowdfund/src/utils/monitoring"
	"github.com/colabio/crowdfund/src/utils/task"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Executes transactions and reads accounts
type Bank interface {
	Execute(ctx context.Context, tx *ledger.Transaction) (*ledger.Receipt, error)
	Account(key runtime.Pubkey) (*ledger.Account, error)
	Airdrop(ctx context.Context, key runtime.Pubkey, lamports uint64) (uint64, error)
}

// Read side of the indexer
type Index interface {
	ProjectsByCreator(ctx context.Context, creator string) ([]model.Project, error)
	ContributionsByContributor(ctx context.Context, contributor string) ([]model.Contribution, error)
}

// Rest API server, accepts transactions and serves state
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	monitor  monitoring.Monitor
	registry *prometheus.Registry

	bank      Bank
	index     Index
	programId runtime.Pubkey

	// Decoded projects. Generation grows with every invalidation, a snapshot read
	// before an invalidation is never cached.
	projects    *cache.Cache
	projectsMtx sync.Mutex
	generation  uint64

	// Rate limiters of clients
	limiters *cache.Cache
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "api").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	self.programId = runtime.MustParsePubkey(config.Program.Id)
	self.projects = cache.New(config.Api.CacheTTL, config.Api.CacheCleanupInterval)
	self.limiters = cache.New(config.Api.CacheCleanupInterval, config.Api.CacheCleanupInterval)
	self.registry = prometheus.NewRegistry()

	if config.IsDevelopment {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	self.Router = gin.New()
	self.Router.Use(gin.Recovery())
	self.routes()

	self.httpServer = &http.Server{
		Addr:    self.Config.RESTListenAddress,
		Handler: self.Router,
	}

	return
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	self.registry.MustRegister(monitor.GetPrometheusCollector())
	return self
}

func (self *Server) WithBank(bank Bank) *Server {
	self.bank = bank
	return self
}

func (self *Server) WithIndex(index Index) *Server {
	self.index = index
	return self
}

func (self *Server) WithProgramId(programId runtime.Pubkey) *Server {
	self.programId = programId
	return self
}

func (self *Server) routes() {
	v1 := self.Router.Group("v1")
	{
		v1.POST("transactions", self.onSendTransaction)
		v1.GET("projects/:address", self.onGetProject)
		v1.GET("accounts/:address", self.onGetAccount)
		v1.GET("creators/:address/projects", self.onGetCreatorProjects)
		v1.GET("contributors/:address/contributions", self.onGetContributions)
		v1.GET("health", self.onGetHealth)
		v1.GET("state", self.onGetState)

		if self.Config.IsDevelopment {
			v1.POST("airdrop", self.onAirdrop)
		}
	}

	self.Router.GET("metrics", gin.WrapH(promhttp.HandlerFor(self.registry, promhttp.HandlerOpts{})))

	if self.Config.IsDevelopment {
		pprof.Register(self.Router)
	}
}

// Drops cached state of accounts the transaction could have changed
func (self *Server) OnReceipt(receipt *ledger.Receipt) {
	if receipt.Failed() {
		return
	}

	keys := make([]runtime.Pubkey, 0, len(receipt.Accounts))
	for _, meta := range receipt.Accounts {
		if meta.IsWritable {
			keys = append(keys, meta.Pubkey)
		}
	}
	self.invalidate(keys...)
}

func (self *Server) invalidate(keys ...runtime.Pubkey) {
	self.projectsMtx.Lock()
	defer self.projectsMtx.Unlock()

	self.generation++
	for _, key := range keys {
		self.projects.Delete(key.String())
	}
}

func (self *Server) currentGeneration() uint64 {
	self.projectsMtx.Lock()
	defer self.projectsMtx.Unlock()
	return self.generation
}

// Caches the project unless something was invalidated since it was read
func (self *Server) cacheProject(key runtime.Pubkey, project *response.GetProject, generation uint64) bool {
	self.projectsMtx.Lock()
	defer self.projectsMtx.Unlock()

	if generation != self.generation {
		return false
	}
	self.projects.SetDefault(key.String(), project)
	return true
}

func (self *Server) run() (err error) {
	self.Log.WithField("address", self.httpServer.Addr).Info("Starting REST server")
	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start REST server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}

func (self *Server) report(f func(m monitoring.Monitor)) {
	if self.monitor != nil {
		f(self.monitor)
	}
}
