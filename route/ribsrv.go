package route

import (
	"git.thinkinpower.net/ribdb/mod"
	"git.thinkinpower.net/ribdb/rib"
	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"
)

//compute the clé for bank, branch and account
func (h *handler) ribKey(ctx *gin.Context) {
	var req mod.RibRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.Warn(err)
		failure(ctx, mod.ResponseCodeFailure, "Impossible de lire la requête")
		return
	}
	var (
		id  rib.Identifier
		err error
	)
	if id, err = rib.Complete(req.BankCode, req.BranchCode, req.AccountNumber); err != nil {
		fail(ctx, err)
		return
	}
	success(ctx, h.registry.Describe(id))
}

func (h *handler) ribValidate(ctx *gin.Context) {
	var req mod.RibRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.Warn(err)
		failure(ctx, mod.ResponseCodeFailure, "Impossible de lire la requête")
		return
	}
	var (
		id  rib.Identifier
		err error
	)
	if id, err = rib.ValidateRib(req.BankCode, req.BranchCode, req.AccountNumber, req.CheckDigits); err != nil {
		fail(ctx, err)
		return
	}
	success(ctx, h.registry.Describe(id))
}

func (h *handler) ribParse(ctx *gin.Context) {
	var (
		id  rib.Identifier
		err error
	)
	if id, err = rib.Parse(ctx.Param("value")); err != nil {
		fail(ctx, err)
		return
	}
	success(ctx, h.registry.Describe(id))
}
