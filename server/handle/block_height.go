package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gogf/gf/v2/util/gconv"
)

// BlockHeight returns the indexed height as text.
func (h *Handler) BlockHeight(ctx *gin.Context) {
	height, _, err := h.Index().CurrentHeightAndHash()
	if err != nil {
		respErr(ctx, err)
		return
	}
	ctx.String(http.StatusOK, gconv.String(height))
}
