package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inscription-c/ordinals/index"
	"github.com/inscription-c/ordinals/index/tables"
	"github.com/inscription-c/ordinals/server/handle/api"
)

type StatusResp struct {
	Network    string                          `json:"network"`
	State      string                          `json:"state"`
	Height     *uint32                         `json:"height"`
	Hash       string                          `json:"hash,omitempty"`
	Halted     string                          `json:"halted,omitempty"`
	Statistics map[tables.StatisticType]uint64 `json:"statistics"`
}

// Status returns the watermark, engine state and statistics.
func (h *Handler) Status(ctx *gin.Context) {
	resp, err := h.doStatus()
	if err != nil {
		respErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, api.RespOK(resp))
}

func (h *Handler) doStatus() (*StatusResp, error) {
	resp := &StatusResp{
		Network: h.Index().Schedule().Network(),
		State:   h.Index().State().String(),
	}
	if err := h.options.halted(); err != nil {
		resp.Halted = err.Error()
	}

	height, hash, err := h.Index().CurrentHeightAndHash()
	switch {
	case err == nil:
		resp.Height = &height
		resp.Hash = hash.String()
	case !errors.Is(err, index.ErrIndexEmpty):
		return nil, err
	}

	if resp.Statistics, err = h.Index().Statistics(); err != nil {
		return nil, err
	}
	return resp, nil
}
