package handle

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) InitRouter() {
	if h.options.enablePProf {
		pprof.Register(h.Engine())
	}
	h.Engine().GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.Engine().GET("/status", h.Status)
	h.Engine().GET("/blockheight", h.BlockHeight)
	h.Engine().GET("/blockhash", h.BlockHash)
	h.Engine().GET("/blockhash/:height", h.BlockHash)
	h.Engine().GET("/block/:height/sat/:index", h.SatAt)
	h.Engine().GET("/output/:outpoint", h.Output)
	h.Engine().GET("/sat/:sat", h.Sat)
	h.Engine().GET("/satpoint/:satpoint", h.SatPoint)
}
