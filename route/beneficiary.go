package route

import (
	"git.thinkinpower.net/ribdb/bdata"
	"git.thinkinpower.net/ribdb/mod"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	logger "github.com/sirupsen/logrus"
)

type verifyRequest struct {
	Code string `json:"code"`
}

// otpKey binds a code to one beneficiary and the phone it was sent to.
func otpKey(b mod.Beneficiary) string {
	return b.Id + "/" + b.Phone
}

func (h *handler) createBeneficiary(ctx *gin.Context) {
	var req mod.BeneficiaryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.Warn(err)
		failure(ctx, mod.ResponseCodeFailure, "Impossible de lire la requête")
		return
	}
	var (
		b   mod.Beneficiary
		err error
	)
	if b, err = h.registry.CreateBeneficiary(req); err != nil {
		fail(ctx, err)
		return
	}
	logger.WithField("id", b.Id).Infof("beneficiary created, status: %s", b.Status)
	success(ctx, b)
}

func (h *handler) listBeneficiaries(ctx *gin.Context) {
	success(ctx, h.registry.Beneficiaries())
}

func (h *handler) getBeneficiary(ctx *gin.Context) {
	b, err := h.registry.Beneficiary(ctx.Param("id"))
	if err != nil {
		fail(ctx, err)
		return
	}
	success(ctx, b)
}

//send a verification code to the beneficiary phone
func (h *handler) issueOtp(ctx *gin.Context) {
	b, err := h.registry.Beneficiary(ctx.Param("id"))
	if err != nil {
		fail(ctx, err)
		return
	}
	if !b.Status.CanTransition(mod.BeneficiaryStatusVerified) {
		failure(ctx, mod.ResponseCodeTransitionRefused, "Bénéficiaire déjà vérifié")
		return
	}
	if err = h.otps.Issue(otpKey(b), b.Phone); err != nil {
		fail(ctx, err)
		return
	}
	success(ctx, nil)
}

func (h *handler) verifyBeneficiary(ctx *gin.Context) {
	var req verifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Code == "" {
		failure(ctx, mod.ResponseCodeMissingParams, "Code de vérification manquant")
		return
	}
	b, err := h.registry.Beneficiary(ctx.Param("id"))
	if err != nil {
		fail(ctx, err)
		return
	}
	if !b.Status.CanTransition(mod.BeneficiaryStatusVerified) {
		failure(ctx, mod.ResponseCodeTransitionRefused, "Bénéficiaire déjà vérifié")
		return
	}
	if err = h.otps.Verify(otpKey(b), req.Code); err != nil {
		fail(ctx, err)
		return
	}
	if b, err = h.registry.Transition(b.Id, mod.BeneficiaryStatusVerified); err != nil {
		fail(ctx, err)
		return
	}
	success(ctx, b)
}

//back office moves: validated, available, suspended
func (h *handler) changeStatus(ctx *gin.Context) {
	status, err := mod.ParseBeneficiaryStatus(ctx.Param("status"))
	if err != nil {
		failure(ctx, mod.ResponseCodeInvalidParams, err.Error())
		return
	}
	if status == mod.BeneficiaryStatusVerified {
		fail(ctx, errors.Wrap(bdata.ErrTransition, "verification requires an otp"))
		return
	}
	var b mod.Beneficiary
	if b, err = h.registry.Transition(ctx.Param("id"), status); err != nil {
		fail(ctx, err)
		return
	}
	success(ctx, b)
}
