package route

import (
	"git.thinkinpower.net/ribdb/mod"
	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"
)

//bank directory feedback, code=name appended to bank_code.csv
func (h *handler) addBank(ctx *gin.Context) {
	if err := h.registry.Banks().CreateBankMapping(ctx.Param("code"), ctx.Param("name")); err != nil {
		logger.Warn(err)
		failure(ctx, mod.ResponseCodeInvalidParams, err.Error())
		return
	}
	success(ctx, nil)
}
