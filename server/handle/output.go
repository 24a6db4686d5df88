package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inscription-c/ordinals/index/model"
	"github.com/inscription-c/ordinals/ordinal"
	"github.com/inscription-c/ordinals/server/handle/api"
	"github.com/shopspring/decimal"
)

type OutputResp struct {
	*model.Output
	ValueBtc string `json:"value_btc"`
}

// Output returns the sat ranges held by an outpoint.
func (h *Handler) Output(ctx *gin.Context) {
	resp, err := h.doOutput(ctx.Param("outpoint"))
	if err != nil {
		respErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, api.RespOK(resp))
}

func (h *Handler) doOutput(outpointStr string) (*OutputResp, error) {
	outpoint, err := model.StringToOutpoint(outpointStr)
	if err != nil {
		return nil, err
	}
	output, err := h.Index().Output(*outpoint)
	if err != nil {
		return nil, err
	}
	return &OutputResp{
		Output:   output,
		ValueBtc: btcString(output.Value),
	}, nil
}

func btcString(sats uint64) string {
	return decimal.NewFromInt(int64(sats)).
		Div(decimal.NewFromInt(int64(ordinal.OneBtc))).
		StringFixed(8)
}
