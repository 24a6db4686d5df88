package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inscription-c/ordinals/ordinal"
	"github.com/inscription-c/ordinals/server/handle/api"
)

// Sat describes a sat given in any notation: number, decimal, degree or name.
func (h *Handler) Sat(ctx *gin.Context) {
	info, err := h.doSat(ctx.Param("sat"))
	if err != nil {
		respErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, api.RespOK(info))
}

func (h *Handler) doSat(query string) (*ordinal.Info, error) {
	sat, err := h.Index().Schedule().Parse(query)
	if err != nil {
		return nil, err
	}
	return h.Index().SatInfo(sat)
}

// SatAt describes the sat minted at an index of a block's subsidy.
func (h *Handler) SatAt(ctx *gin.Context) {
	info, err := h.doSatAt(ctx.Param("height"), ctx.Param("index"))
	if err != nil {
		respErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, api.RespOK(info))
}

func (h *Handler) doSatAt(heightStr, indexStr string) (*ordinal.Info, error) {
	height, err := parseHeight(heightStr)
	if err != nil {
		return nil, err
	}
	index, err := strconv.ParseUint(indexStr, 10, 64)
	if err != nil {
		return nil, ordinal.ErrInvalidIndex
	}
	sat, err := h.Index().SatAt(height, index)
	if err != nil {
		return nil, err
	}
	return h.Index().SatInfo(sat)
}
