package route

import (
	"git.thinkinpower.net/ribdb/bdata"
	"git.thinkinpower.net/ribdb/middleware"
	"git.thinkinpower.net/ribdb/mod"
	"git.thinkinpower.net/ribdb/otp"
	"git.thinkinpower.net/ribdb/rib"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	logger "github.com/sirupsen/logrus"
	"net/http"
)

func success(ctx *gin.Context, data interface{}) {
	ctx.Set(middleware.ResponseCodeKey, mod.ResponseCodeSuccess)
	ctx.JSON(http.StatusOK, mod.ResponseData{ResponseValue: mod.ResponseValue{Code: mod.ResponseCodeSuccess, Msg: "Succès"}, Data: data})
}

func failure(ctx *gin.Context, code int, msg string) {
	ctx.Set(middleware.ResponseCodeKey, code)
	ctx.JSON(http.StatusOK, mod.ResponseValue{Code: code, Msg: msg})
}

// fail maps err to a response code. RIB errors carry their kind and the
// expected clé so the form can point at the faulty field.
func fail(ctx *gin.Context, err error) {
	cause := errors.Cause(err)
	if ribErr, ok := cause.(*rib.Error); ok {
		code := mod.ResponseCodeInvalidParams
		switch ribErr.Kind {
		case rib.KindMissingField:
			code = mod.ResponseCodeMissingParams
		case rib.KindCheckDigitMismatch:
			code = mod.ResponseCodeCheckDigitMismatch
		}
		ctx.Set(middleware.ResponseCodeKey, code)
		ctx.JSON(http.StatusOK, mod.ResponseData{
			ResponseValue: mod.ResponseValue{Code: code, Msg: ribErr.Error()},
			Data: mod.RibError{
				Kind:     string(ribErr.Kind),
				Message:  ribErr.Error(),
				Fields:   ribErr.Fields,
				Expected: ribErr.Expected,
				Declared: ribErr.Declared,
			},
		})
		return
	}

	switch cause {
	case bdata.ErrNotFound:
		failure(ctx, mod.ResponseCodeNotFound, "Bénéficiaire introuvable")
	case bdata.ErrInvalidBeneficiary:
		failure(ctx, mod.ResponseCodeMissingParams, err.Error())
	case bdata.ErrDuplicate:
		failure(ctx, mod.ResponseCodeFailure, "Bénéficiaire déjà enregistré")
	case bdata.ErrTransition:
		failure(ctx, mod.ResponseCodeTransitionRefused, err.Error())
	case otp.ErrNotFound, otp.ErrExpired:
		failure(ctx, mod.ResponseCodeInvalidParams, "Code expiré, veuillez en demander un nouveau")
	case otp.ErrMismatch:
		failure(ctx, mod.ResponseCodeInvalidParams, "Code incorrect")
	case otp.ErrTooManyAttempts:
		failure(ctx, mod.ResponseCodeInvalidParams, "Nombre de tentatives dépassé, veuillez demander un nouveau code")
	default:
		logger.Error(err)
		failure(ctx, mod.ResponseCodeFailure, "Échec")
	}
}
