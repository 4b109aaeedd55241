package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/colabio/crowdfund/src/api/request"
	"github.com/colabio/crowdfund/src/api/response"
	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/program"
	"github.com/colabio/crowdfund/src/runtime"
	. "github.com/colabio/crowdfund/src/utils/logger"
	"github.com/colabio/crowdfund/src/utils/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/teivah/onecontext"
	"golang.org/x/time/rate"
)

func (self *Server) abort(c *gin.Context, err error) {
	status, name := Code(err)
	c.AbortWithStatusJSON(status, response.Error{Code: name, Error: err.Error()})
	LOG(c).WithError(err).WithField("status", status).Debug("Request failed")
}

// Request context that also ends when the server stops
func (self *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx, cancelMerged := onecontext.Merge(c.Request.Context(), self.Ctx)
	if self.Config.Api.RequestTimeout <= 0 {
		return ctx, cancelMerged
	}
	ctx, cancelTimeout := context.WithTimeout(ctx, self.Config.Api.RequestTimeout)
	return ctx, func() {
		cancelTimeout()
		cancelMerged()
	}
}

func (self *Server) allow(c *gin.Context) bool {
	if self.Config.Api.RateLimit <= 0 {
		return true
	}

	key := c.ClientIP()
	limiter, ok := self.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(self.Config.Api.RateLimit), self.Config.Api.RateLimitBurst)
		// Another request could have added it in the meantime
		if err := self.limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
			limiter, _ = self.limiters.Get(key)
		}
	}
	return limiter.(*rate.Limiter).Allow()
}

func parseAddress(c *gin.Context) (key runtime.Pubkey, err error) {
	key, err = runtime.ParsePubkey(c.Param("address"))
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	return
}

func (self *Server) onSendTransaction(c *gin.Context) {
	if !self.allow(c) {
		self.report(func(m monitoring.Monitor) { m.GetReport().Api.Errors.RateLimited.Inc() })
		self.abort(c, ErrRateLimited)
		return
	}

	var in request.SendTransaction
	err := c.ShouldBindJSON(&in)
	if err != nil {
		self.report(func(m monitoring.Monitor) { m.GetReport().Api.Errors.BadRequest.Inc() })
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Error{Code: "bad_request", Error: err.Error()})
		LOG(c).WithError(err).Debug("Failed to parse transaction")
		return
	}

	self.report(func(m monitoring.Monitor) { m.GetReport().Api.State.TransactionsReceived.Inc() })

	ctx, cancel := self.requestContext(c)
	defer cancel()

	receipt, err := self.bank.Execute(ctx, &in.Transaction)
	if receipt == nil {
		// Transaction wasn't executed
		self.report(func(m monitoring.Monitor) { m.GetReport().Api.Errors.Rejected.Inc() })
		self.abort(c, err)
		return
	}

	if err != nil {
		status, name := Code(err)
		LOG(c).WithError(err).WithField("id", receipt.Id).Debug("Transaction failed")
		c.JSON(status, &response.SendTransaction{Receipt: receipt, Code: name})
		return
	}

	c.JSON(http.StatusOK, &response.SendTransaction{Receipt: receipt})
}

func (self *Server) onGetProject(c *gin.Context) {
	key, err := parseAddress(c)
	if err != nil {
		self.abort(c, err)
		return
	}

	if cached, ok := self.projects.Get(key.String()); ok {
		self.report(func(m monitoring.Monitor) { m.GetReport().Api.State.CacheHits.Inc() })
		c.JSON(http.StatusOK, cached)
		return
	}
	self.report(func(m monitoring.Monitor) { m.GetReport().Api.State.CacheMisses.Inc() })

	generation := self.currentGeneration()
	account, err := self.bank.Account(key)
	if err != nil {
		self.abort(c, err)
		return
	}
	if account.Owner != self.programId {
		self.abort(c, fmt.Errorf("%w: %s is not a project", ErrNotFound, key))
		return
	}

	project, err := program.DecodeProject(account.Data)
	if err != nil {
		self.abort(c, err)
		return
	}

	out := &response.GetProject{
		Address:  key,
		Lamports: account.Lamports,
		Project:  project,
	}
	if !self.cacheProject(key, out, generation) {
		LOG(c).WithField("address", key).Debug("State changed while reading, not cached")
	}

	c.JSON(http.StatusOK, out)
}

func (self *Server) onGetAccount(c *gin.Context) {
	key, err := parseAddress(c)
	if err != nil {
		self.abort(c, err)
		return
	}

	account, err := self.bank.Account(key)
	if err != nil {
		self.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, &response.GetAccount{Address: key, Account: account})
}

func (self *Server) onGetCreatorProjects(c *gin.Context) {
	if self.index == nil {
		self.abort(c, ErrIndexerDisabled)
		return
	}

	key, err := parseAddress(c)
	if err != nil {
		self.abort(c, err)
		return
	}

	ctx, cancel := self.requestContext(c)
	defer cancel()

	projects, err := self.index.ProjectsByCreator(ctx, key.String())
	if err != nil {
		self.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.ProjectsToResponse(projects))
}

func (self *Server) onGetContributions(c *gin.Context) {
	if self.index == nil {
		self.abort(c, ErrIndexerDisabled)
		return
	}

	key, err := parseAddress(c)
	if err != nil {
		self.abort(c, err)
		return
	}

	ctx, cancel := self.requestContext(c)
	defer cancel()

	contributions, err := self.index.ContributionsByContributor(ctx, key.String())
	if err != nil {
		self.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.ContributionsToResponse(contributions))
}

// Development only, mints lamports out of thin air
func (self *Server) onAirdrop(c *gin.Context) {
	var in request.Airdrop
	err := c.ShouldBindJSON(&in)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Error{Code: "bad_request", Error: err.Error()})
		return
	}

	key, err := runtime.ParsePubkey(in.Address)
	if err != nil {
		self.abort(c, err)
		return
	}

	ctx, cancel := self.requestContext(c)
	defer cancel()

	lamports, err := self.bank.Airdrop(ctx, key, in.Lamports)
	if err != nil {
		self.abort(c, err)
		return
	}

	self.invalidate(key)
	LOG(c).WithField("address", key).WithField("lamports", in.Lamports).Info("Airdrop")

	c.JSON(http.StatusOK, &response.Airdrop{Lamports: lamports})
}

func (self *Server) onGetHealth(c *gin.Context) {
	if self.monitor == nil {
		c.Status(http.StatusOK)
		return
	}
	self.monitor.OnGetHealth(c)
}

func (self *Server) onGetState(c *gin.Context) {
	if self.monitor == nil {
		self.abort(c, ErrMonitoringDisabled)
		return
	}
	self.monitor.OnGetState(c)
}

var _ Bank = (*ledger.Bank)(nil)
