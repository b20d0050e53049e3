package route

import (
	"git.thinkinpower.net/ribdb/bdata"
	"git.thinkinpower.net/ribdb/data"
	"git.thinkinpower.net/ribdb/otp"
	"github.com/gin-gonic/gin"
	"net/http"
	"time"
)

type handler struct {
	registry *bdata.Registry
	otps     *otp.Store
}

func Register(r *gin.Engine, registry *bdata.Registry, otps *otp.Store) {
	h := &handler{registry: registry, otps: otps}
	g := r.Group("/ribdb")
	{
		g.GET("/index", func(context *gin.Context) {
			context.String(http.StatusOK, "Hello ribdb, date: %s", time.Now().Format(data.DateTimePattern))
		})

		g.POST("/rib/key", h.ribKey)
		g.POST("/rib/validate", h.ribValidate)
		g.GET("/rib/parse/:value", h.ribParse)

		g.POST("/bank/:code/:name", h.addBank)

		g.POST("/beneficiary", h.createBeneficiary)
		g.GET("/beneficiary", h.listBeneficiaries)
		g.GET("/beneficiary/:id", h.getBeneficiary)
		g.POST("/beneficiary/:id/otp", h.issueOtp)
		g.POST("/beneficiary/:id/verify", h.verifyBeneficiary)
		g.POST("/beneficiary/:id/status/:status", h.changeStatus)
	}
}
