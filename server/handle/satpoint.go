package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inscription-c/ordinals/index/model"
	"github.com/inscription-c/ordinals/ordinal"
	"github.com/inscription-c/ordinals/server/handle/api"
)

type SatPointResp struct {
	SatPoint string        `json:"satpoint"`
	Sat      *ordinal.Info `json:"sat"`
}

// SatPoint resolves txid:vout:offset to the sat it points at.
func (h *Handler) SatPoint(ctx *gin.Context) {
	resp, err := h.doSatPoint(ctx.Param("satpoint"))
	if err != nil {
		respErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, api.RespOK(resp))
}

func (h *Handler) doSatPoint(query string) (*SatPointResp, error) {
	satPoint, err := model.NewSatPointFromString(query)
	if err != nil {
		return nil, err
	}
	sat, err := h.Index().Resolve(satPoint.Outpoint, satPoint.Offset)
	if err != nil {
		return nil, err
	}
	info, err := h.Index().SatInfo(sat)
	if err != nil {
		return nil, err
	}
	return &SatPointResp{
		SatPoint: satPoint.String(),
		Sat:      info,
	}, nil
}
