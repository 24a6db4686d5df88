package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inscription-c/ordinals/index"
	"github.com/inscription-c/ordinals/index/model"
	"github.com/inscription-c/ordinals/internal/log"
	"github.com/inscription-c/ordinals/ordinal"
	"github.com/inscription-c/ordinals/server/handle/api"
)

var errInvalidHeight = errors.New("invalid block height")

func isNotFound(err error) bool {
	return errors.Is(err, index.ErrIndexEmpty) ||
		errors.Is(err, index.ErrOutputNotFound) ||
		errors.Is(err, index.ErrBlockNotFound)
}

func isBadRequest(err error) bool {
	return errors.Is(err, errInvalidHeight) ||
		errors.Is(err, model.ErrInvalidOutpoint) ||
		errors.Is(err, model.ErrInvalidSatPoint) ||
		errors.Is(err, model.ErrOffsetOutOfBounds) ||
		errors.Is(err, ordinal.ErrInvalidSat) ||
		errors.Is(err, ordinal.ErrInvalidIndex) ||
		errors.Is(err, ordinal.ErrInvalidNotation)
}

// respErr writes err in the response envelope with a status matching its cause.
func respErr(ctx *gin.Context, err error) {
	switch {
	case isBadRequest(err):
		ctx.JSON(http.StatusBadRequest, api.RespErr(api.CodeParamsInvalid, err.Error()))
	case isNotFound(err):
		ctx.JSON(http.StatusNotFound, api.RespErr(api.CodeNotFound, err.Error()))
	default:
		log.Api.Errorf("%s: %v", ctx.Request.URL.Path, err)
		ctx.JSON(http.StatusInternalServerError, api.RespErr(api.CodeError500, err.Error()))
	}
}
