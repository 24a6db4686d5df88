package handle

import (
	"net/http"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gin-gonic/gin"
)

// BlockHash returns the indexed head hash, or the hash at the height parameter, as text.
func (h *Handler) BlockHash(ctx *gin.Context) {
	hash, err := h.doBlockHash(ctx.Param("height"))
	if err != nil {
		respErr(ctx, err)
		return
	}
	ctx.String(http.StatusOK, hash.String())
}

func (h *Handler) doBlockHash(height string) (*chainhash.Hash, error) {
	if height == "" {
		_, hash, err := h.Index().CurrentHeightAndHash()
		return hash, err
	}
	n, err := parseHeight(height)
	if err != nil {
		return nil, err
	}
	return h.Index().BlockHash(n)
}

func parseHeight(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errInvalidHeight
	}
	return uint32(n), nil
}
